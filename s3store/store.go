/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package s3store keeps small documents (rosters, tournament snapshots, http
 * cache entries) as objects in a single Amazon S3 bucket. The cache portion is
 * based on the original github.com/sourcegraph/s3cache but updated to use the
 * more modern aws-sdk-go-v2.
 */
package s3store

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/charmbracelet/log"
)

var ErrNotFound = errors.New("s3store: object not found")

// API is the subset of *s3.Client used by Bucket.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput,
		optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput,
		optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput,
		optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput,
		optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Bucket reads and writes objects in one S3 bucket.
type Bucket struct {
	// Client is the s3 client used for every request. By default this is
	// initialized in Init() with the default AWS config, but callers can
	// override it before or instead of calling Init().
	Client API

	name string

	// gzip indicates whether objects should be gzipped on put and gunzipped
	// on get. If true, object keys get the suffix ".gz".
	gzip bool

	logger *log.Logger
}

type Option func(*Bucket)

func WithGzip() Option {
	return func(b *Bucket) {
		b.gzip = true
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(b *Bucket) {
		b.logger = logger
	}
}

func WithClient(client API) Option {
	return func(b *Bucket) {
		b.Client = client
	}
}

// New returns a Bucket for the named S3 bucket. Callers should invoke Init()
// before use unless a client was supplied with WithClient.
func New(name string, opts ...Option) *Bucket {
	b := &Bucket{name: name}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	b.logger = b.logger.WithPrefix("s3store")
	return b
}

func (b *Bucket) Name() string {
	return b.name
}

// Init loads the default AWS configuration, which reads from:
// * Environment Variables (e.g. AWS_ACCESS_KEY_ID and AWS_SECRET_KEY)
// * Shared Configuration and Shared Credentials files.
// It then verifies the bucket exists and can be listed.
func (b *Bucket) Init(ctx context.Context) error {
	if b.Client == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("s3store.init: failed to load AWS config: %w", err)
		}
		b.Client = s3.NewFromConfig(cfg)
	}

	if _, err := b.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.name),
	}); err != nil {
		return fmt.Errorf("s3store.init: head bucket failed for %s: %w",
			b.name, err)
	}

	if _, err := b.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.name),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3store.init: list objects failed for %s: %w",
			b.name, err)
	}

	return nil
}

func (b *Bucket) objectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if b.gzip {
		key += ".gz"
	}
	return key
}

// Get returns the object stored under key, or ErrNotFound.
func (b *Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.objectKey(key)),
	}

	resp, err := b.Client.GetObject(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %v/%v", ErrNotFound, b.name,
				*input.Key)
		}
		return nil, fmt.Errorf("s3store.get: failed to get object %v/%v: %w",
			b.name, *input.Key, err)
	}
	defer resp.Body.Close()

	rdr := resp.Body
	if b.gzip {
		rdr, err = gzip.NewReader(rdr)
		if err != nil {
			return nil, fmt.Errorf("s3store.get: failed to open compressed object %v/%v: %w",
				b.name, *input.Key, err)
		}
		defer rdr.Close()
	}

	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("s3store.get: failed to read object %v/%v: %w",
			b.name, *input.Key, err)
	}

	return data, nil
}

// Put stores data under key, replacing any existing object.
func (b *Bucket) Put(ctx context.Context, key string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.objectKey(key)),
		Body:   bytes.NewReader(data),
	}

	if b.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return fmt.Errorf("s3store.put: failed to gzip data for %v/%v: %w",
				b.name, *input.Key, err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("s3store.put: failed to close gzip writer for %v/%v: %w",
				b.name, *input.Key, err)
		}
		input.Body = bytes.NewReader(buf.Bytes())
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := b.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3store.put: put failed for %v/%v: %w", b.name,
			*input.Key, err)
	}

	return nil
}

// Delete removes the object under key. Deleting a missing key is not an
// error.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.objectKey(key)),
	}

	if _, err := b.Client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("s3store.delete: delete failed for %v/%v: %w",
			b.name, *input.Key, err)
	}

	return nil
}
