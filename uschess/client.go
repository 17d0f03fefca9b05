/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mikeb26/clubtd/internal"
)

const DefaultBaseURL = "https://ratings-api.uschess.org/api/v1"

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the cached client built by NewClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a ratings API client whose responses are cached for a
// day in cacheBucket (or in memory when cacheBucket is empty).
func NewClient(ctx context.Context, cacheBucket string, opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = internal.DiscardLogger()
	}
	c.logger = c.logger.WithPrefix("uschess")
	if c.httpClient == nil {
		c.httpClient = internal.NewCachedHttpClient(ctx, cacheBucket,
			24*time.Hour, c.logger)
	}

	return c
}
