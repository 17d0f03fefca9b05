/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MatchResult is the recorded outcome of one pairing.
type MatchResult struct {
	Round       int     `json:"round"`
	Pairing     Pairing `json:"pairing"`
	FirstScore  float64 `json:"firstScore"`
	SecondScore float64 `json:"secondScore"`
	Bye         bool    `json:"bye,omitempty"`
}

// ScoreOf returns the points the given player earned from this result.
func (r MatchResult) ScoreOf(playerID string) (float64, bool) {
	switch playerID {
	case r.Pairing.First.ID:
		return r.FirstScore, true
	case r.Pairing.Second.ID:
		return r.SecondScore, true
	}
	return 0, false
}

// Winner returns the player with the strictly higher score. Draws have no
// winner.
func (r MatchResult) Winner() (Player, bool) {
	switch {
	case r.FirstScore > r.SecondScore:
		return r.Pairing.First, true
	case r.SecondScore > r.FirstScore:
		return r.Pairing.Second, true
	}
	return Player{}, false
}

// oriented returns the result with scores aligned to the given pairing's
// order. ok is false if the result is for a different pair.
func (r MatchResult) oriented(p Pairing) (MatchResult, bool) {
	if r.Pairing.Key() != p.Key() {
		return r, false
	}
	out := r
	if r.Pairing.First.ID != p.First.ID {
		out.FirstScore, out.SecondScore = r.SecondScore, r.FirstScore
	}
	out.Pairing = p
	return out, true
}

func byeResult(round int, p Pairing) MatchResult {
	r := MatchResult{Round: round, Pairing: p, Bye: true}
	if p.First.IsBye {
		r.SecondScore = 1
	} else {
		r.FirstScore = 1
	}
	return r
}

// Scoring selects how match outcomes are validated.
type Scoring int

const (
	// ScoringStandard allows 1-0, 0-1 and ½-½.
	ScoringStandard Scoring = iota
	// ScoringGames records non-negative integer game counts, e.g. 2-1.
	ScoringGames
)

func (s Scoring) String() string {
	switch s {
	case ScoringStandard:
		return "standard"
	case ScoringGames:
		return "games"
	}
	return "?"
}

func ParseScoring(s string) (Scoring, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return ScoringStandard, nil
	case "games", "gamecount", "game-count":
		return ScoringGames, nil
	}
	return ScoringStandard, fmt.Errorf("%w: scoring %q", ErrInvalidResult, s)
}

func (s Scoring) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scoring) UnmarshalText(b []byte) error {
	v, err := ParseScoring(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Validate checks a pair of outcome values under this scoring mode.
func (s Scoring) Validate(first, second float64) error {
	if first < 0 || second < 0 || math.IsNaN(first) || math.IsNaN(second) {
		return fmt.Errorf("%w: negative score %v-%v", ErrInvalidResult,
			first, second)
	}
	switch s {
	case ScoringStandard:
		if !isStandardOutcome(first) || !isStandardOutcome(second) ||
			first+second != 1 {
			return fmt.Errorf("%w: %v-%v is not 1-0, 0-1 or ½-½",
				ErrInvalidResult, first, second)
		}
	case ScoringGames:
		if first != math.Trunc(first) || second != math.Trunc(second) {
			return fmt.Errorf("%w: game counts must be whole numbers: %v-%v",
				ErrInvalidResult, first, second)
		}
	}
	return nil
}

func isStandardOutcome(v float64) bool {
	return v == 0 || v == 0.5 || v == 1
}

// ParseResultCode parses codes such as "1-0", "0-1", "½-½", "1/2-1/2",
// "0.5-0.5", "=" or, in game-count mode, "2-1".
func ParseResultCode(code string, scoring Scoring) (float64, float64, error) {
	c := strings.TrimSpace(code)
	switch strings.ToLower(c) {
	case "=", "draw", "d":
		c = "0.5-0.5"
	}
	c = strings.ReplaceAll(c, "½", "0.5")
	c = strings.ReplaceAll(c, "1/2", "0.5")
	c = strings.ReplaceAll(c, ":", "-")
	parts := strings.Split(c, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: unrecognized result %q", ErrInvalidResult,
			code)
	}
	first, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: unrecognized result %q", ErrInvalidResult,
			code)
	}
	second, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: unrecognized result %q", ErrInvalidResult,
			code)
	}
	if err := scoring.Validate(first, second); err != nil {
		return 0, 0, err
	}
	return first, second, nil
}
