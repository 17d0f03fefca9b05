/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourPlayers() []Player {
	return []Player{
		NewPlayer("A", "Alice", 1500),
		NewPlayer("B", "Bob", 1400),
		NewPlayer("C", "Carol", 1300),
		NewPlayer("D", "Dave", 1200),
	}
}

func field(n int) []Player {
	players := make([]Player, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, NewPlayer(fmt.Sprintf("p%02d", i),
			fmt.Sprintf("Player %v", i), 1000+10*i))
	}
	return players
}

func pairIDs(pairings []Pairing) [][2]string {
	out := make([][2]string, 0, len(pairings))
	for _, p := range pairings {
		out = append(out, [2]string{p.First.ID, p.Second.ID})
	}
	return out
}

// firstWins resolves every judged pairing as a win for the first player.
func firstWins(plan *RoundPlan) []MatchResult {
	var out []MatchResult
	for _, p := range plan.Judged() {
		out = append(out, MatchResult{Round: plan.Round, Pairing: p,
			FirstScore: 1})
	}
	return out
}

func TestTotalRounds(t *testing.T) {
	tests := []struct {
		players int
		want    int
	}{
		{0, 1}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4},
		{16, 4}, {17, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalRounds(tt.players), "players=%v",
			tt.players)
	}
}

func TestParseSystem(t *testing.T) {
	s, err := ParseSystem("Knockout")
	require.NoError(t, err)
	assert.Equal(t, Knockout, s)

	s, err = ParseSystem("")
	require.NoError(t, err)
	assert.Equal(t, Swiss, s)

	_, err = ParseSystem("round-robin")
	assert.ErrorIs(t, err, ErrUnknownSystem)
}

func TestFirstRoundSeedsByRating(t *testing.T) {
	plan, err := NextRound(fourPlayers(), PlayedSet{}, Swiss, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Round)
	assert.Equal(t, [][2]string{{"D", "C"}, {"B", "A"}},
		pairIDs(plan.Pairings))
	assert.Empty(t, plan.ByeResults)
	assert.Empty(t, plan.ForcedRepeats)
	assert.True(t, plan.Played.Has(NewPairKey("C", "D")))
	assert.True(t, plan.Played.Has(NewPairKey("A", "B")))
}

func TestNextRoundDoesNotModifyInputs(t *testing.T) {
	players := fourPlayers()
	played := PlayedSet{NewPairKey("A", "B"): 1}

	_, err := NextRound(players, played, Swiss, nil)
	require.NoError(t, err)

	assert.Equal(t, fourPlayers(), players)
	assert.Len(t, played, 1)
}

func TestFourPlayerSwiss(t *testing.T) {
	players := fourPlayers()

	r1, err := NextRound(players, PlayedSet{}, Swiss, nil)
	require.NoError(t, err)
	history := []MatchResult{
		{Round: 1, Pairing: r1.Pairings[0], FirstScore: 1},
		{Round: 1, Pairing: r1.Pairings[1], SecondScore: 1},
	}

	r2, err := NextRound(players, r1.Played, Swiss, history)
	require.NoError(t, err)
	assert.Equal(t, 2, r2.Round)
	assert.Equal(t, [][2]string{{"A", "D"}, {"B", "C"}},
		pairIDs(r2.Pairings))
	assert.Empty(t, r2.ForcedRepeats)
}

func TestOddFieldGetsBye(t *testing.T) {
	players := fourPlayers()[:3]

	plan, err := NextRound(players, PlayedSet{}, Swiss, nil)
	require.NoError(t, err)

	// the bye seeds lowest and meets the lowest rated player
	require.Len(t, plan.Pairings, 2)
	assert.Equal(t, [][2]string{{ByeID, "C"}, {"B", "A"}},
		pairIDs(plan.Pairings))
	require.Len(t, plan.ByeResults, 1)
	bye := plan.ByeResults[0]
	assert.True(t, bye.Bye)
	assert.Equal(t, 1, bye.Round)
	c, _ := bye.ScoreOf("C")
	b, _ := bye.ScoreOf(ByeID)
	assert.Equal(t, 1.0, c)
	assert.Equal(t, 0.0, b)

	judged := plan.Judged()
	require.Len(t, judged, 1)
	assert.Equal(t, "B", judged[0].First.ID)
}

func TestByeNeverAddedTwice(t *testing.T) {
	players := append(fourPlayers()[:3], ByePlayer)
	assert.Len(t, WithBye(players), 4)
	assert.Len(t, WithBye(append(fourPlayers(), ByePlayer)), 4)
}

func TestInsufficientPlayers(t *testing.T) {
	_, err := NextRound(nil, PlayedSet{}, Swiss, nil)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)

	_, err = NextRound([]Player{NewPlayer("A", "Alice", 0), ByePlayer},
		PlayedSet{}, Swiss, nil)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestDuplicatePlayersRejected(t *testing.T) {
	players := append(fourPlayers(), NewPlayer("A", "Again", 100))
	_, err := NextRound(players, PlayedSet{}, Swiss, nil)
	assert.ErrorIs(t, err, ErrDuplicatePlayer)
}

// Only pairs reported as forced repeats may have met before. With every
// game won by the higher placed player the greedy pass only gets stuck for
// some field sizes.
func TestSwissNoRematches(t *testing.T) {
	for _, n := range []int{4, 5, 6, 7, 8, 9, 12, 16} {
		t.Run(fmt.Sprintf("players=%v", n), func(t *testing.T) {
			players := field(n)
			played := PlayedSet{}
			var history []MatchResult

			for round := 1; round <= TotalRounds(n); round++ {
				plan, err := NextRound(players, played, Swiss, history)
				require.NoError(t, err)
				require.Equal(t, round, plan.Round)

				forced := make(map[PairKey]bool)
				for _, p := range plan.ForcedRepeats {
					forced[p.Key()] = true
				}
				seen := make(map[string]bool)
				for _, p := range plan.Pairings {
					require.Equal(t, forced[p.Key()], played.Has(p.Key()),
						"pair %v in round %v", p.Key(), round)
					for _, id := range []string{p.First.ID, p.Second.ID} {
						require.False(t, seen[id], "%v paired twice", id)
						seen[id] = true
					}
				}
				assert.Len(t, seen, n+n%2)

				played = plan.Played
				history = append(history, plan.ByeResults...)
				history = append(history, firstWins(plan)...)
			}
		})
	}
}

func TestSwissForcedRepeat(t *testing.T) {
	players := []Player{NewPlayer("A", "Alice", 1500),
		NewPlayer("B", "Bob", 1400)}
	played := PlayedSet{NewPairKey("A", "B"): 1}
	history := []MatchResult{{Round: 1,
		Pairing: Pairing{First: players[1], Second: players[0]}, FirstScore: 1}}

	plan, err := NextRound(players, played, Swiss, history)
	require.NoError(t, err)
	require.Len(t, plan.Pairings, 1)
	require.Len(t, plan.ForcedRepeats, 1)
	assert.Equal(t, plan.Pairings[0].Key(), plan.ForcedRepeats[0].Key())
	assert.Equal(t, 2, plan.Played[NewPairKey("A", "B")])
	assert.Equal(t, []PairKey{NewPairKey("A", "B")}, plan.Played.Repeats())
}

func TestSwissTerminatesWhenEverythingPlayed(t *testing.T) {
	players := field(6)
	played := PlayedSet{}
	for i := range players {
		for j := i + 1; j < len(players); j++ {
			played[NewPairKey(players[i].ID, players[j].ID)] = 1
		}
	}
	history := []MatchResult{{Round: 1,
		Pairing: Pairing{First: players[0], Second: players[1]}, FirstScore: 1}}

	plan, err := NextRound(players, played, Swiss, history)
	require.NoError(t, err)
	assert.Len(t, plan.Pairings, 3)
	assert.Len(t, plan.ForcedRepeats, 3)
}

func TestKnockout(t *testing.T) {
	players := field(6)

	r1, err := NextRound(players, PlayedSet{}, Knockout, nil)
	require.NoError(t, err)
	require.Len(t, r1.Pairings, 3)

	// one win each way and a draw that knocks out both players
	history := []MatchResult{
		{Round: 1, Pairing: r1.Pairings[0], FirstScore: 1},
		{Round: 1, Pairing: r1.Pairings[1], SecondScore: 1},
		{Round: 1, Pairing: r1.Pairings[2], FirstScore: 0.5, SecondScore: 0.5},
	}
	r2, err := NextRound(players, r1.Played, Knockout, history)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{r1.Pairings[0].First.ID, r1.Pairings[1].Second.ID},
	}, pairIDs(r2.Pairings))

	history = append(history, MatchResult{Round: 2, Pairing: r2.Pairings[0],
		FirstScore: 1})
	_, err = NextRound(players, r2.Played, Knockout, history)
	assert.ErrorIs(t, err, ErrTournamentDecided)
}

func TestKnockoutOddAdvancersGetBye(t *testing.T) {
	players := field(6)
	r1, err := NextRound(players, PlayedSet{}, Knockout, nil)
	require.NoError(t, err)

	history := firstWins(r1)
	r2, err := NextRound(players, r1.Played, Knockout, history)
	require.NoError(t, err)
	require.Len(t, r2.Pairings, 2)
	require.Len(t, r2.ByeResults, 1)
	assert.Equal(t, r1.Pairings[2].First.ID, r2.ByeResults[0].Pairing.First.ID)
}

func TestUnknownSystem(t *testing.T) {
	_, err := NextRound(fourPlayers(), PlayedSet{}, System(7), nil)
	assert.ErrorIs(t, err, ErrUnknownSystem)
}
