/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gregjones/httpcache"
	"github.com/mikeb26/clubtd/s3store"
)

// NewCachedHttpClient returns an http.Client that caches responses in the
// named S3 bucket. If bucket is empty or the bucket cannot be used it falls
// back to an in-memory cache. It also enforces a client-side TTL by
// rewriting origin cache headers.
func NewCachedHttpClient(ctx context.Context, bucket string,
	maxAge time.Duration, logger *log.Logger) *http.Client {

	var cache httpcache.Cache
	if bucket != "" {
		b := s3store.New(bucket, s3store.WithLogger(logger))
		if err := b.Init(ctx); err != nil {
			logger.Warn("Failed to init S3 cache; using memory cache",
				"bucket", bucket, "error", err)
		} else {
			cache = s3store.NewCache(ctx, b, WebCachePrefix)
		}
	}
	if cache == nil {
		cache = httpcache.NewMemoryCache()
	}

	return NewCachedHttpClientWithCache(cache, maxAge)
}

func NewCachedHttpClientWithCache(cache httpcache.Cache,
	maxAge time.Duration) *http.Client {

	hc := httpcache.NewTransport(cache)
	// we have to inject our own header overrides here in order to override
	// server responses that might indicate caching shouldn't be done
	hc.Transport = &HeaderOverrideTransport{
		wrappedRT: http.DefaultTransport,
		Request: func(req *http.Request) {
			if req.Header.Get("User-Agent") == "" {
				req.Header.Set("User-Agent", UserAgent)
			}
		},
		Response: func(resp *http.Response) error {
			resp.Header.Del("Pragma")
			resp.Header.Del("Expires")
			resp.Header.Del("Cache-Control")
			resp.Header.Set("Cache-Control",
				fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second)))
			return nil
		},
	}

	return &http.Client{Transport: hc}
}

type HeaderOverrideTransport struct {
	Request  func(req *http.Request)
	Response func(resp *http.Response) error

	// Underlying RoundTripper (e.g. default transport or another decorator)
	wrappedRT http.RoundTripper
}

// RoundTrip applies Request and Response hooks around the underlying transport.
func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so we don't stomp on the caller's original
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}

	resp, err := t.wrappedRT.RoundTrip(req2)
	if err != nil {
		return nil, err
	}

	if t.Response != nil {
		if err := t.Response(resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
