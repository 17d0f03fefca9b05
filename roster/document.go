/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mikeb26/clubtd/s3store"
	"github.com/mikeb26/clubtd/tourney"
)

// blob loads and saves a single JSON document. Load returns nil data when
// the document does not exist yet.
type blob interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// docStore keeps the whole roster in one JSON document that is read before
// and written after every change.
type docStore struct {
	mu   sync.Mutex
	blob blob
}

func (s *docStore) load(ctx context.Context) ([]tourney.Player, error) {
	data, err := s.blob.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var players []tourney.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	return players, nil
}

func (s *docStore) save(ctx context.Context, players []tourney.Player) error {
	if players == nil {
		players = []tourney.Player{}
	}
	data, err := json.MarshalIndent(players, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	if err := s.blob.Save(ctx, data); err != nil {
		return fmt.Errorf("saving roster: %w", err)
	}
	return nil
}

func (s *docStore) Create(ctx context.Context,
	p tourney.Player) (tourney.Player, error) {

	s.mu.Lock()
	defer s.mu.Unlock()
	players, err := s.load(ctx)
	if err != nil {
		return p, err
	}
	p, err = createIn(&players, p)
	if err != nil {
		return p, err
	}
	return p, s.save(ctx, players)
}

func (s *docStore) Get(ctx context.Context, id string) (tourney.Player,
	error) {

	s.mu.Lock()
	defer s.mu.Unlock()
	players, err := s.load(ctx)
	if err != nil {
		return tourney.Player{}, err
	}
	return getIn(players, id)
}

func (s *docStore) List(ctx context.Context) ([]tourney.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *docStore) Update(ctx context.Context, p tourney.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	players, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := updateIn(players, p); err != nil {
		return err
	}
	return s.save(ctx, players)
}

func (s *docStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	players, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := deleteIn(&players, id); err != nil {
		return err
	}
	return s.save(ctx, players)
}

// FileStore keeps the roster in a JSON file.
type FileStore struct {
	docStore
}

func NewFileStore(path string) *FileStore {
	return &FileStore{docStore{blob: fileBlob(path)}}
}

type fileBlob string

func (f fileBlob) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(string(f))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Save writes to a temporary file and renames it over the old roster.
func (f fileBlob) Save(ctx context.Context, data []byte) error {
	path := string(f)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// S3Store keeps the roster as one object in an S3 bucket.
type S3Store struct {
	docStore
}

func NewS3Store(bucket *s3store.Bucket, key string) *S3Store {
	return &S3Store{docStore{blob: &s3Blob{bucket: bucket, key: key}}}
}

type s3Blob struct {
	bucket *s3store.Bucket
	key    string
}

func (b *s3Blob) Load(ctx context.Context) ([]byte, error) {
	data, err := b.bucket.Get(ctx, b.key)
	if errors.Is(err, s3store.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

func (b *s3Blob) Save(ctx context.Context, data []byte) error {
	return b.bucket.Put(ctx, b.key, data)
}
