/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bcc

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/mikeb26/clubtd/internal"
)

const (
	DefaultAPIBaseURL = "https://beta.boylstonchess.org/api"
	DefaultWebBaseURL = "https://boylstonchess.org"
)

// Client reads event registrations from the club's event API and website.
type Client struct {
	httpClient *http.Client
	apiBaseURL string
	webBaseURL string
	logger     *log.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithBaseURLs(api, web string) Option {
	return func(c *Client) {
		c.apiBaseURL = strings.TrimRight(api, "/")
		c.webBaseURL = strings.TrimRight(web, "/")
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a client whose responses are cached for an hour in
// cacheBucket (or in memory when cacheBucket is empty).
func NewClient(ctx context.Context, cacheBucket string, opts ...Option) *Client {
	c := &Client{
		apiBaseURL: DefaultAPIBaseURL,
		webBaseURL: DefaultWebBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = internal.DiscardLogger()
	}
	c.logger = c.logger.WithPrefix("bcc")
	if c.httpClient == nil {
		c.httpClient = internal.NewCachedHttpClient(ctx, cacheBucket,
			time.Hour, c.logger)
	}

	return c
}

// fetchDoc gets the HTML document at the given URL using the configured User-Agent.
func (c *Client) fetchDoc(ctx context.Context,
	url string) (*goquery.Document, error) {

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}
