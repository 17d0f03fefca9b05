/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"fmt"
	"sort"
	"strings"
)

// Method selects the formula used to rank final standings.
type Method int

const (
	PlainSum Method = iota
	// Buchholz is the label the club has always used for the plain sum.
	Buchholz
	Progress
)

func (m Method) String() string {
	switch m {
	case PlainSum:
		return "plainsum"
	case Buchholz:
		return "buchholz"
	case Progress:
		return "progress"
	}
	return "?"
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plainsum", "plain", "sum":
		return PlainSum, nil
	case "buchholz":
		return Buchholz, nil
	case "progress", "progressive", "cumulative":
		return Progress, nil
	}
	return PlainSum, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Standing is one row of a ranked table.
type Standing struct {
	Place  int     `json:"place"`
	Player Player  `json:"player"`
	Points float64 `json:"points"`
	// Score is the ranking value under the selected method.
	Score float64 `json:"score"`
}

// Rank orders every player in history by method, highest first. Ties keep
// the order in which players first appear in history. The bye is excluded.
func Rank(history []MatchResult, method Method) ([]Standing, error) {
	var scores *ScoreTable
	switch method {
	case PlainSum, Buchholz:
		scores = NewScoreTable()
		scores.fold(history)
	case Progress:
		scores = progressScores(history)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, int(method))
	}

	points := NewScoreTable()
	points.fold(history)
	players := playersSeen(history)

	out := make([]Standing, 0, len(players))
	for _, id := range scores.IDs() {
		p, ok := players[id]
		if !ok || p.IsBye {
			continue
		}
		out = append(out, Standing{
			Player: p,
			Points: points.Get(id),
			Score:  scores.Get(id),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Place = i + 1
	}

	return out, nil
}

// Winner returns the top of a ranked table.
func Winner(standings []Standing) (Player, bool) {
	if len(standings) == 0 {
		return Player{}, false
	}
	return standings[0].Player, true
}

// progressScores adds each player's cumulative score into a second
// accumulator after every round, in the order rounds appear in history.
func progressScores(history []MatchResult) *ScoreTable {
	running := NewScoreTable()
	progress := NewScoreTable()

	flush := func() {
		for _, id := range running.IDs() {
			progress.Add(id, running.Get(id))
		}
	}

	for i, r := range history {
		if i > 0 && r.Round != history[i-1].Round {
			flush()
		}
		running.fold([]MatchResult{r})
	}
	if len(history) > 0 {
		flush()
	}

	return progress
}

func playersSeen(history []MatchResult) map[string]Player {
	out := make(map[string]Player)
	for _, r := range history {
		for _, p := range []Player{r.Pairing.First, r.Pairing.Second} {
			if _, ok := out[p.ID]; !ok {
				out[p.ID] = p
			}
		}
	}
	return out
}
