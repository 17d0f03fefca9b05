/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRound(t *testing.T) {
	players := fourPlayers()[:3]
	plan, err := NextRound(players, PlayedSet{}, Swiss, nil)
	require.NoError(t, err)

	agg := NewAggregator(ScoringStandard)
	board, _ := plan.Board(1)
	scores, err := agg.RecordRound(plan, []MatchResult{
		{Round: 1, Pairing: board, FirstScore: 0, SecondScore: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, scores.Get("A"))
	assert.Equal(t, 0.0, scores.Get("B"))
	assert.Equal(t, 1.0, scores.Get("C"))
	assert.Equal(t, 0.0, scores.Get(ByeID))
	assert.Equal(t, []string{ByeID, "C", "B", "A"}, scores.IDs())

	// the returned table is a copy
	scores.Add("A", 10)
	assert.Equal(t, 1.0, agg.Scores().Get("A"))
}

func TestCheckRoundOrientsAndOrders(t *testing.T) {
	plan, err := NextRound(fourPlayers(), PlayedSet{}, Swiss, nil)
	require.NoError(t, err)

	agg := NewAggregator(ScoringStandard)
	full, err := agg.CheckRound(plan, []MatchResult{
		{Pairing: Pairing{First: plan.Pairings[1].Second,
			Second: plan.Pairings[1].First}, FirstScore: 1},
		{Pairing: plan.Pairings[0], FirstScore: 0.5, SecondScore: 0.5},
	})
	require.NoError(t, err)
	require.Len(t, full, 2)

	assert.Equal(t, plan.Pairings[0], full[0].Pairing)
	assert.Equal(t, plan.Pairings[1], full[1].Pairing)
	assert.Equal(t, 0.0, full[1].FirstScore)
	assert.Equal(t, 1.0, full[1].SecondScore)
	for _, r := range full {
		assert.Equal(t, 1, r.Round)
	}

	// checking never folds
	assert.Equal(t, 0, agg.Scores().Len())
}

func TestRecordRoundErrors(t *testing.T) {
	plan, err := NextRound(fourPlayers(), PlayedSet{}, Swiss, nil)
	require.NoError(t, err)
	b1, b2 := plan.Pairings[0], plan.Pairings[1]

	tests := []struct {
		name    string
		results []MatchResult
		want    error
	}{
		{
			name:    "missing board",
			results: []MatchResult{{Pairing: b1, FirstScore: 1}},
			want:    ErrIncompleteResultSet,
		},
		{
			name: "duplicate board",
			results: []MatchResult{
				{Pairing: b1, FirstScore: 1},
				{Pairing: b1, SecondScore: 1},
				{Pairing: b2, FirstScore: 1},
			},
			want: ErrDuplicateResult,
		},
		{
			name: "unknown pairing",
			results: []MatchResult{
				{Pairing: Pairing{First: b1.First, Second: b2.First},
					FirstScore: 1},
				{Pairing: b2, FirstScore: 1},
			},
			want: ErrUnknownPairing,
		},
		{
			name: "bad score",
			results: []MatchResult{
				{Pairing: b1, FirstScore: 1, SecondScore: 1},
				{Pairing: b2, FirstScore: 1},
			},
			want: ErrInvalidResult,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(ScoringStandard)
			_, err := agg.RecordRound(plan, tt.results)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, agg.Scores().Len())
		})
	}
}

func TestScoreConservation(t *testing.T) {
	players := field(7)
	agg := NewAggregator(ScoringStandard)
	played := PlayedSet{}
	var history []MatchResult

	for round := 1; round <= TotalRounds(len(players)); round++ {
		plan, err := NextRound(players, played, Swiss, history)
		require.NoError(t, err)

		var results []MatchResult
		for i, p := range plan.Judged() {
			r := MatchResult{Round: round, Pairing: p}
			switch i % 3 {
			case 0:
				r.FirstScore = 1
			case 1:
				r.SecondScore = 1
			default:
				r.FirstScore, r.SecondScore = 0.5, 0.5
			}
			results = append(results, r)
		}
		full, err := agg.CheckRound(plan, results)
		require.NoError(t, err)
		agg.Fold(full)

		for _, r := range full {
			assert.Equal(t, 1.0, r.FirstScore+r.SecondScore)
			if r.Bye {
				got, ok := r.ScoreOf(r.Pairing.RealPlayer().ID)
				assert.True(t, ok)
				assert.Equal(t, 1.0, got)
			}
		}
		played = plan.Played
		history = append(history, full...)
	}

	total := 0.0
	for _, e := range agg.Scores().Entries() {
		total += e.Score
	}
	assert.Equal(t, float64(len(history)), total)
	assert.Equal(t, 0.0, agg.Scores().Get(ByeID))
}

func TestRebuild(t *testing.T) {
	plan, err := NextRound(fourPlayers(), PlayedSet{}, Swiss, nil)
	require.NoError(t, err)
	history := firstWins(plan)

	agg := NewAggregator(ScoringStandard)
	agg.Rebuild(history)
	assert.Equal(t, 1.0, agg.Scores().Get("D"))
	assert.Equal(t, 1.0, agg.Scores().Get("B"))
	assert.Equal(t, 0.0, agg.Scores().Get("A"))
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name      string
		system    System
		round     int
		total     int
		survivors int
		want      bool
	}{
		{"swiss midway", Swiss, 1, 3, 0, false},
		{"swiss last round", Swiss, 3, 3, 0, true},
		{"swiss ignores survivors", Swiss, 1, 3, 1, false},
		{"knockout champion", Knockout, 1, 3, 1, true},
		{"knockout all drawn", Knockout, 1, 3, 0, true},
		{"knockout continues", Knockout, 1, 3, 2, false},
		{"knockout depth reached", Knockout, 3, 3, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComplete(tt.system, tt.round, tt.total,
				tt.survivors))
		})
	}
}

func TestSurvivors(t *testing.T) {
	plan, err := NextRound(fourPlayers()[:3], PlayedSet{}, Knockout, nil)
	require.NoError(t, err)
	board, _ := plan.Board(1)

	results := append([]MatchResult(nil), plan.ByeResults...)
	results = append(results, MatchResult{Pairing: board, FirstScore: 0.5,
		SecondScore: 0.5})
	assert.Equal(t, 1, Survivors(results))
}

func TestScoreTableJSON(t *testing.T) {
	st := NewScoreTable()
	st.Add("b", 1.5)
	st.Add("a", 0)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"playerId":"b","score":1.5},{"playerId":"a","score":0}]`,
		string(data))

	var out ScoreTable
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, []string{"b", "a"}, out.IDs())
	assert.Equal(t, 1.5, out.Get("b"))
}
