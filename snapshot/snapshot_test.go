/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package snapshot

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/mikeb26/clubtd/s3store"
	"github.com/mikeb26/clubtd/tourney"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedController(t *testing.T) *tourney.Controller {
	t.Helper()
	c := tourney.NewController(tourney.Config{TieBreak: tourney.Progress})
	_, err := c.Start([]tourney.Player{
		tourney.NewPlayer("a", "Alice", 1500),
		tourney.NewPlayer("b", "Bob", 1400),
		tourney.NewPlayer("c", "Carol", 1300),
	})
	require.NoError(t, err)
	require.NoError(t, c.Report(1, 1, 0))
	return c
}

func testRoundTrip(t *testing.T, store Store) {
	ctx := context.Background()

	c, err := Resume(ctx, store, tourney.Config{System: tourney.Knockout})
	require.NoError(t, err)
	assert.Equal(t, tourney.PhaseRegistering, c.Phase())
	assert.Equal(t, tourney.Knockout, c.Config().System)

	c = startedController(t)
	require.NoError(t, store.Save(ctx, c.Snapshot()))

	restored, err := Resume(ctx, store, tourney.Config{})
	require.NoError(t, err)
	want, got := c.Snapshot(), restored.Snapshot()
	assert.Equal(t, want.Config, got.Config)
	assert.Equal(t, want.Phase, got.Phase)
	assert.Equal(t, want.Round, got.Round)
	assert.Equal(t, want.TotalRounds, got.TotalRounds)
	assert.Equal(t, want.Players, got.Players)
	assert.Equal(t, want.Plan.Pairings, got.Plan.Pairings)
	assert.Equal(t, want.Plan.ByeResults, got.Plan.ByeResults)
	assert.Equal(t, want.Sheet, got.Sheet)
	assert.Equal(t, want.Played, got.Played)
	require.Len(t, got.Timings, 1)
	assert.True(t, want.Timings[0].PairedAt.Equal(got.Timings[0].PairedAt))

	// the restored controller carries on where the original left off
	_, err = restored.SubmitSheet()
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Round())

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNone)
}

func TestFileStore(t *testing.T) {
	testRoundTrip(t, NewFileStore(filepath.Join(t.TempDir(), "state.json")))
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	bucket := s3store.New("test-bucket", s3store.WithClient(fake),
		s3store.WithGzip())
	testRoundTrip(t, NewS3Store(bucket, "tournament/state.json"))
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput,
	optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput,
	optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput,
	optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput,
	optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {

	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {

	return &s3.ListObjectsV2Output{}, nil
}
