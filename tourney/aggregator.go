/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"encoding/json"
	"fmt"
)

// ScoreTable maps player IDs to accumulated points and remembers the order
// in which players were first seen.
type ScoreTable struct {
	scores map[string]float64
	order  []string
}

func NewScoreTable() *ScoreTable {
	return &ScoreTable{scores: make(map[string]float64)}
}

// Add credits points to a player, creating the entry at 0 on first sight.
func (st *ScoreTable) Add(playerID string, points float64) {
	if _, ok := st.scores[playerID]; !ok {
		st.order = append(st.order, playerID)
	}
	st.scores[playerID] += points
}

func (st *ScoreTable) Get(playerID string) float64 {
	return st.scores[playerID]
}

func (st *ScoreTable) Has(playerID string) bool {
	_, ok := st.scores[playerID]
	return ok
}

// IDs returns player IDs in first-seen order.
func (st *ScoreTable) IDs() []string {
	return append([]string(nil), st.order...)
}

func (st *ScoreTable) Len() int {
	return len(st.order)
}

func (st *ScoreTable) Clone() *ScoreTable {
	out := NewScoreTable()
	for _, id := range st.order {
		out.Add(id, st.scores[id])
	}
	return out
}

func (st *ScoreTable) fold(results []MatchResult) {
	for _, r := range results {
		st.Add(r.Pairing.First.ID, r.FirstScore)
		st.Add(r.Pairing.Second.ID, r.SecondScore)
	}
}

// Aggregator folds judged rounds into a running score table.
type Aggregator struct {
	scoring Scoring
	scores  *ScoreTable
}

func NewAggregator(scoring Scoring) *Aggregator {
	return &Aggregator{scoring: scoring, scores: NewScoreTable()}
}

// Rebuild resets the table to the totals of history.
func (a *Aggregator) Rebuild(history []MatchResult) {
	a.scores = NewScoreTable()
	a.scores.fold(history)
}

func (a *Aggregator) Scores() *ScoreTable {
	return a.scores.Clone()
}

// CheckRound validates results against the plan's judged pairings and
// returns the full set of results for the round (bye results included) in
// board order. Results given with the players swapped are re-oriented.
func (a *Aggregator) CheckRound(plan *RoundPlan,
	results []MatchResult) ([]MatchResult, error) {

	judged := plan.Judged()
	byKey := make(map[PairKey]int, len(judged))
	for i, p := range judged {
		byKey[p.Key()] = i
	}

	slots := make([]*MatchResult, len(judged))
	for _, r := range results {
		idx, ok := byKey[r.Pairing.Key()]
		if !ok {
			return nil, fmt.Errorf("%w: %v vs %v", ErrUnknownPairing,
				r.Pairing.First.ID, r.Pairing.Second.ID)
		}
		if slots[idx] != nil {
			return nil, fmt.Errorf("%w: %v vs %v", ErrDuplicateResult,
				r.Pairing.First.ID, r.Pairing.Second.ID)
		}
		o, _ := r.oriented(judged[idx])
		if err := a.scoring.Validate(o.FirstScore, o.SecondScore); err != nil {
			return nil, err
		}
		o.Round = plan.Round
		o.Bye = false
		slots[idx] = &o
	}

	var missing int
	for _, s := range slots {
		if s == nil {
			missing++
		}
	}
	if missing > 0 {
		return nil, fmt.Errorf("%w: %v of %v boards unreported",
			ErrIncompleteResultSet, missing, len(judged))
	}

	out := make([]MatchResult, 0, len(plan.Pairings))
	next := 0
	for _, p := range plan.Pairings {
		if p.IsBye() {
			out = append(out, byeResult(plan.Round, p))
			continue
		}
		out = append(out, *slots[next])
		next++
	}

	return out, nil
}

// RecordRound validates and folds one round. Nothing is folded unless the
// whole set is valid.
func (a *Aggregator) RecordRound(plan *RoundPlan,
	results []MatchResult) (*ScoreTable, error) {

	full, err := a.CheckRound(plan, results)
	if err != nil {
		return nil, err
	}
	a.Fold(full)

	return a.Scores(), nil
}

// Fold adds already checked results to the table.
func (a *Aggregator) Fold(results []MatchResult) {
	a.scores.fold(results)
}

// IsComplete reports whether the tournament should stop after round.
// survivors is the number of real players still eligible to advance and
// only matters for a knockout.
func IsComplete(system System, round, totalRounds, survivors int) bool {
	if system == Knockout && survivors <= 1 {
		return true
	}
	return round >= totalRounds
}

// Survivors counts the real players who won outright in results.
func Survivors(results []MatchResult) int {
	n := 0
	for _, r := range results {
		if w, ok := r.Winner(); ok && !w.IsBye {
			n++
		}
	}
	return n
}

// ScoreEntry is one row of a ScoreTable.
type ScoreEntry struct {
	PlayerID string  `json:"playerId"`
	Score    float64 `json:"score"`
}

// Entries returns the table in first-seen order.
func (st *ScoreTable) Entries() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, ScoreEntry{PlayerID: id, Score: st.scores[id]})
	}
	return out
}

func (st *ScoreTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(st.Entries())
}

func (st *ScoreTable) UnmarshalJSON(data []byte) error {
	var entries []ScoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*st = *NewScoreTable()
	for _, e := range entries {
		st.Add(e.PlayerID, e.Score)
	}
	return nil
}
