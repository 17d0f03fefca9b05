/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mikeb26/clubtd/tourney"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	seq        BIGSERIAL,
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	rating     INTEGER,
	uscf_id    INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS players_uscf_id_key
	ON players (uscf_id) WHERE uscf_id <> 0;
`

// Connect opens a postgres handle and verifies it within timeout.
func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database within %v: %w",
			timeout, err)
	}

	return db, nil
}

// PostgresStore keeps the roster in a players table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create players table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context,
	p tourney.Player) (tourney.Player, error) {

	p, err := prepare(p)
	if err != nil {
		return p, err
	}

	query := `
		INSERT INTO players (id, name, rating, uscf_id)
		VALUES ($1, $2, $3, $4)`
	_, err = s.db.ExecContext(ctx, query, p.ID, p.Name, nullRating(p.Rating),
		p.UscfID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return p, fmt.Errorf("%w: %v", ErrDuplicate, p.Name)
		}
		return p, fmt.Errorf("failed to create player: %w", err)
	}

	return p, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (tourney.Player,
	error) {

	query := `SELECT id, name, rating, uscf_id FROM players WHERE id = $1`
	p, err := scanPlayer(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	if err != nil {
		return p, fmt.Errorf("failed to get player %v: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]tourney.Player, error) {
	query := `SELECT id, name, rating, uscf_id FROM players ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []tourney.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return players, nil
}

func (s *PostgresStore) Update(ctx context.Context, p tourney.Player) error {
	p, err := validate(p)
	if err != nil {
		return err
	}
	query := `UPDATE players SET name = $2, rating = $3, uscf_id = $4
		WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, p.ID, p.Name,
		nullRating(p.Rating), p.UscfID)
	if err != nil {
		return fmt.Errorf("failed to update player %v: %w", p.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: %v", ErrNotFound, p.ID))
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("failed to delete player %v: %w", id, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: %v", ErrNotFound, id))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (tourney.Player, error) {
	var p tourney.Player
	var rating sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &rating, &p.UscfID); err != nil {
		return p, err
	}
	if rating.Valid {
		r := int(rating.Int64)
		p.Rating = &r
	}
	return p, nil
}

func nullRating(r *int) sql.NullInt64 {
	if r == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*r), Valid: true}
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
