/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mikeb26/clubtd/bcc"
	"github.com/mikeb26/clubtd/tourney"
	"github.com/mikeb26/clubtd/uschess"
	"golang.org/x/sync/errgroup"
)

// ImportEntries registers club entries as players. Only entries in section
// are imported unless section is empty; a section no entry belongs to is an
// ErrUnknownSection. Entries already registered (same USCF ID, or same name
// when there is no USCF ID) are skipped.
func ImportEntries(ctx context.Context, store Store, entries []bcc.Entry,
	section string) ([]tourney.Player, error) {

	if section != "" {
		sections := bcc.Sections(entries)
		if !slices.Contains(sections, section) {
			return nil, fmt.Errorf("%w: %q; event has %v", ErrUnknownSection,
				section, strings.Join(sections, ", "))
		}
	}

	existing, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(existing))
	for _, p := range existing {
		names[strings.ToLower(p.Name)] = true
	}

	var added []tourney.Player
	for _, e := range entries {
		if section != "" && e.SectionName != section {
			continue
		}
		if e.UscfID == 0 && names[strings.ToLower(e.DisplayName())] {
			continue
		}
		p := tourney.Player{Name: e.DisplayName(), UscfID: e.UscfID}
		if r := e.Rating(); r > 0 {
			p.Rating = &r
		}
		p, err = store.Create(ctx, p)
		if errors.Is(err, ErrDuplicate) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("importing %v: %w", e.DisplayName(), err)
		}
		names[strings.ToLower(p.Name)] = true
		added = append(added, p)
	}

	return added, nil
}

// Rater looks up a member's regular rating.
type Rater interface {
	RegularRating(ctx context.Context, memberID uschess.MemID) (int, error)
}

// RefreshRatings replaces stored ratings with official regular ratings for
// every player with a USCF ID, looking members up concurrently. Unrated or
// unknown members keep their current rating. It returns the number of
// players updated.
func RefreshRatings(ctx context.Context, store Store, rater Rater,
	logger *log.Logger) (int, error) {

	players, err := store.List(ctx)
	if err != nil {
		return 0, err
	}

	ratings := make([]int, len(players))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range players {
		if p.UscfID == 0 {
			continue
		}
		g.Go(func() error {
			r, err := rater.RegularRating(gctx, uschess.MemID(p.UscfID))
			if errors.Is(err, uschess.ErrUnrated) ||
				errors.Is(err, uschess.ErrNotFound) {
				logger.Debug("No regular rating", "player", p.Name,
					"uscf_id", p.UscfID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("rating lookup for %v: %w", p.Name, err)
			}
			ratings[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	updated := 0
	for i, p := range players {
		r := ratings[i]
		if r == 0 || (p.Rating != nil && *p.Rating == r) {
			continue
		}
		p.Rating = &r
		if err := store.Update(ctx, p); err != nil {
			return updated, err
		}
		updated++
		logger.Info("Rating refreshed", "player", p.Name, "rating", r)
	}

	return updated, nil
}
