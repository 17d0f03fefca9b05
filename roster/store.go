/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mikeb26/clubtd/tourney"
)

var (
	ErrNotFound  = errors.New("player not found")
	ErrDuplicate = errors.New("player already registered")
	ErrInvalid   = errors.New("invalid player")

	ErrUnknownSection = errors.New("unknown section")
)

// Store is the club's player registry. List returns players in the order
// they were registered.
type Store interface {
	Create(ctx context.Context, p tourney.Player) (tourney.Player, error)
	Get(ctx context.Context, id string) (tourney.Player, error)
	List(ctx context.Context) ([]tourney.Player, error)
	Update(ctx context.Context, p tourney.Player) error
	Delete(ctx context.Context, id string) error
}

// validate trims the name and checks the fields every stored player needs.
func validate(p tourney.Player) (tourney.Player, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return p, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if p.IsBye || p.ID == tourney.ByeID {
		return p, fmt.Errorf("%w: %q is reserved", ErrInvalid, tourney.ByeID)
	}
	if p.Rating != nil && *p.Rating < 0 {
		return p, fmt.Errorf("%w: negative rating", ErrInvalid)
	}
	return p, nil
}

// prepare validates a new player and assigns an ID when it has none.
func prepare(p tourney.Player) (tourney.Player, error) {
	p, err := validate(p)
	if err != nil {
		return p, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return p, nil
}

// MemoryStore keeps the roster in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	players []tourney.Player
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(ctx context.Context,
	p tourney.Player) (tourney.Player, error) {

	s.mu.Lock()
	defer s.mu.Unlock()
	return createIn(&s.players, p)
}

func (s *MemoryStore) Get(ctx context.Context, id string) (tourney.Player,
	error) {

	s.mu.Lock()
	defer s.mu.Unlock()
	return getIn(s.players, id)
}

func (s *MemoryStore) List(ctx context.Context) ([]tourney.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tourney.Player(nil), s.players...), nil
}

func (s *MemoryStore) Update(ctx context.Context, p tourney.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateIn(s.players, p)
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteIn(&s.players, id)
}

func createIn(players *[]tourney.Player, p tourney.Player) (tourney.Player,
	error) {

	p, err := prepare(p)
	if err != nil {
		return p, err
	}
	for _, existing := range *players {
		if existing.ID == p.ID {
			return p, fmt.Errorf("%w: %v", ErrDuplicate, p.ID)
		}
		if p.UscfID != 0 && existing.UscfID == p.UscfID {
			return p, fmt.Errorf("%w: USCF ID %v", ErrDuplicate, p.UscfID)
		}
	}
	*players = append(*players, p)
	return p, nil
}

func getIn(players []tourney.Player, id string) (tourney.Player, error) {
	for _, p := range players {
		if p.ID == id {
			return p, nil
		}
	}
	return tourney.Player{}, fmt.Errorf("%w: %v", ErrNotFound, id)
}

func updateIn(players []tourney.Player, p tourney.Player) error {
	p, err := validate(p)
	if err != nil {
		return err
	}
	for i := range players {
		if players[i].ID == p.ID {
			players[i] = p
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrNotFound, p.ID)
}

func deleteIn(players *[]tourney.Player, id string) error {
	for i, p := range *players {
		if p.ID == id {
			*players = append((*players)[:i], (*players)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrNotFound, id)
}
