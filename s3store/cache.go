/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package s3store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Cache adapts a Bucket to httpcache.Cache. Entries live under a fixed
// prefix keyed by the md5 of the cache key.
type Cache struct {
	bucket *Bucket
	prefix string

	// The context to specify when initiating s3 requests
	ctx context.Context
}

func NewCache(ctx context.Context, bucket *Bucket, prefix string) *Cache {
	if prefix == "" {
		prefix = "s3cache"
	}
	return &Cache{bucket: bucket, prefix: prefix, ctx: ctx}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	data, err := c.bucket.Get(c.ctx, c.cacheKeyToObjectKey(key))
	if err != nil {
		// not found just indicates a cache miss
		if !errors.Is(err, ErrNotFound) {
			c.bucket.logger.Warn("Cache get failed", "error", err)
		}
		return []byte{}, false
	}

	return data, true
}

// Set stores the provided data in the cache under the given key.
func (c *Cache) Set(key string, data []byte) {
	if err := c.bucket.Put(c.ctx, c.cacheKeyToObjectKey(key), data); err != nil {
		c.bucket.logger.Warn("Cache set failed", "error", err)
	}
}

func (c *Cache) Delete(key string) {
	if err := c.bucket.Delete(c.ctx, c.cacheKeyToObjectKey(key)); err != nil {
		c.bucket.logger.Warn("Cache delete failed", "error", err)
	}
}

func (c *Cache) cacheKeyToObjectKey(key string) string {
	h := md5.New()
	io.WriteString(h, key)
	return fmt.Sprintf("%v/%v", c.prefix, hex.EncodeToString(h.Sum(nil)))
}
