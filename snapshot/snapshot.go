/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikeb26/clubtd/s3store"
	"github.com/mikeb26/clubtd/tourney"
)

// ErrNone is returned by Load when no tournament has been saved.
var ErrNone = errors.New("no saved tournament")

// Store persists the state of the one running tournament.
type Store interface {
	Load(ctx context.Context) (tourney.State, error)
	Save(ctx context.Context, state tourney.State) error
	Clear(ctx context.Context) error
}

func decode(data []byte) (tourney.State, error) {
	var state tourney.State
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("parsing tournament snapshot: %w", err)
	}
	return state, nil
}

// FileStore keeps the snapshot in a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (tourney.State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return tourney.State{}, ErrNone
	}
	if err != nil {
		return tourney.State{}, fmt.Errorf("reading tournament snapshot: %w",
			err)
	}
	return decode(data)
}

func (s *FileStore) Save(ctx context.Context, state tourney.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tournament snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing tournament snapshot: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// S3Store keeps the snapshot as a gzipped object when the bucket was created
// with gzip enabled.
type S3Store struct {
	bucket *s3store.Bucket
	key    string
}

func NewS3Store(bucket *s3store.Bucket, key string) *S3Store {
	return &S3Store{bucket: bucket, key: key}
}

func (s *S3Store) Load(ctx context.Context) (tourney.State, error) {
	data, err := s.bucket.Get(ctx, s.key)
	if errors.Is(err, s3store.ErrNotFound) {
		return tourney.State{}, ErrNone
	}
	if err != nil {
		return tourney.State{}, err
	}
	return decode(data)
}

func (s *S3Store) Save(ctx context.Context, state tourney.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding tournament snapshot: %w", err)
	}
	return s.bucket.Put(ctx, s.key, data)
}

func (s *S3Store) Clear(ctx context.Context) error {
	return s.bucket.Delete(ctx, s.key)
}

// Resume returns the controller for the saved tournament, or a fresh one in
// registration with cfg when nothing is saved.
func Resume(ctx context.Context, store Store, cfg tourney.Config,
	opts ...tourney.Option) (*tourney.Controller, error) {

	state, err := store.Load(ctx)
	if errors.Is(err, ErrNone) {
		return tourney.NewController(cfg, opts...), nil
	}
	if err != nil {
		return nil, err
	}
	return tourney.Restore(state, opts...)
}
