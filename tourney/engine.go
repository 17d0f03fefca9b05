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

// System is the pairing system of a tournament.
type System int

const (
	Swiss System = iota
	Knockout
)

func (s System) String() string {
	switch s {
	case Swiss:
		return "swiss"
	case Knockout:
		return "knockout"
	}
	return "?"
}

func ParseSystem(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "swiss":
		return Swiss, nil
	case "knockout", "elimination", "single-elimination", "ko":
		return Knockout, nil
	}
	return Swiss, fmt.Errorf("%w: %q", ErrUnknownSystem, s)
}

func (s System) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *System) UnmarshalText(b []byte) error {
	v, err := ParseSystem(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// TotalRounds returns ceil(log2(playerCount)) with a minimum of 1. For a
// knockout this is the bracket depth.
func TotalRounds(playerCount int) int {
	rounds := 0
	for capacity := 1; capacity < playerCount; capacity *= 2 {
		rounds++
	}
	if rounds < 1 {
		rounds = 1
	}
	return rounds
}

// RoundPlan is the engine's output for one round.
type RoundPlan struct {
	Round    int       `json:"round"`
	Pairings []Pairing `json:"pairings"`
	// ByeResults are resolved at pairing time and never need judging.
	ByeResults []MatchResult `json:"byeResults,omitempty"`
	// Played is the played set including this round's pairs.
	Played        PlayedSet `json:"played"`
	ForcedRepeats []Pairing `json:"forcedRepeats,omitempty"`
}

// Judged returns the pairings that need a result, in board order.
func (rp *RoundPlan) Judged() []Pairing {
	out := make([]Pairing, 0, len(rp.Pairings))
	for _, p := range rp.Pairings {
		if !p.IsBye() {
			out = append(out, p)
		}
	}
	return out
}

// Board returns the judged pairing on the given 1-based board number.
func (rp *RoundPlan) Board(n int) (Pairing, bool) {
	judged := rp.Judged()
	if n < 1 || n > len(judged) {
		return Pairing{}, false
	}
	return judged[n-1], true
}

func (rp *RoundPlan) clone() *RoundPlan {
	out := *rp
	out.Pairings = append([]Pairing(nil), rp.Pairings...)
	out.ByeResults = append([]MatchResult(nil), rp.ByeResults...)
	out.ForcedRepeats = append([]Pairing(nil), rp.ForcedRepeats...)
	out.Played = rp.Played.Clone()
	return &out
}

// NextRound pairs the next round. history is every result recorded so far in
// chronological order; an empty history means round 1. Neither players nor
// played are modified.
func NextRound(players []Player, played PlayedSet, system System,
	history []MatchResult) (*RoundPlan, error) {

	if err := checkDistinct(players); err != nil {
		return nil, err
	}
	if system != Swiss && system != Knockout {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSystem, int(system))
	}

	round := lastRound(history) + 1
	var pairings, forced []Pairing

	switch {
	case round == 1:
		if n := len(realPlayers(players)); n < 2 {
			return nil, fmt.Errorf("%w: have %v", ErrInsufficientPlayers, n)
		}
		pairings = pairConsecutive(seedByRating(WithBye(players)))
	case system == Swiss:
		if n := len(realPlayers(players)); n < 2 {
			return nil, fmt.Errorf("%w: have %v", ErrInsufficientPlayers, n)
		}
		pairings, forced = pairSwiss(standingOrder(WithBye(players), history),
			played)
	default:
		adv := advancing(players, history, round-1)
		if len(adv) < 2 {
			return nil, fmt.Errorf("%w: %v advanced from round %v",
				ErrTournamentDecided, len(adv), round-1)
		}
		pairings = pairConsecutive(WithBye(adv))
	}

	plan := &RoundPlan{
		Round:         round,
		Pairings:      pairings,
		Played:        played.Clone(),
		ForcedRepeats: forced,
	}
	for _, p := range pairings {
		plan.Played[p.Key()]++
		if p.IsBye() {
			plan.ByeResults = append(plan.ByeResults, byeResult(round, p))
		}
	}

	return plan, nil
}

// seedByRating orders players ascending by rating, keeping roster order for
// equal ratings.
func seedByRating(players []Player) []Player {
	out := append([]Player(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SeedRating() < out[j].SeedRating()
	})
	return out
}

// standingOrder orders players by cumulative score, highest first. Equal
// scores keep their relative order in players.
func standingOrder(players []Player, history []MatchResult) []Player {
	scores := NewScoreTable()
	scores.fold(history)
	out := append([]Player(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		return scores.Get(out[i].ID) > scores.Get(out[j].ID)
	})
	return out
}

func pairConsecutive(players []Player) []Pairing {
	pairings := make([]Pairing, 0, len(players)/2)
	for i := 0; i+1 < len(players); i += 2 {
		pairings = append(pairings, Pairing{First: players[i],
			Second: players[i+1]})
	}
	return pairings
}

// pairSwiss greedily pairs players in order, avoiding pairs already in
// played. A player with no legal opponent left is requeued behind everyone
// else; since the remaining pool only shrinks it can never become legal
// again, so requeued players are finally paired with each other as forced
// repeats. Every iteration removes at least one player from the pool.
func pairSwiss(order []Player, played PlayedSet) ([]Pairing, []Pairing) {
	var pairings, forced []Pairing
	var requeued []Player

	remaining := append([]Player(nil), order...)
	for len(remaining) > 0 {
		top := remaining[0]
		rest := remaining[1:]
		opp := -1
		for j, cand := range rest {
			if !played.HasPair(top, cand) {
				opp = j
				break
			}
		}
		if opp < 0 {
			requeued = append(requeued, top)
			remaining = rest
			continue
		}
		pairings = append(pairings, Pairing{First: top, Second: rest[opp]})
		remaining = removeIndex(rest, opp)
	}

	for i := 0; i+1 < len(requeued); i += 2 {
		p := Pairing{First: requeued[i], Second: requeued[i+1]}
		pairings = append(pairings, p)
		forced = append(forced, p)
	}

	return pairings, forced
}

// advancing returns the players who strictly beat their opponent in the
// given round, in bracket order. Draws eliminate both players.
func advancing(players []Player, history []MatchResult, round int) []Player {
	eligible := make(map[string]Player, len(players))
	for _, p := range players {
		eligible[p.ID] = p
	}
	var out []Player
	for _, r := range history {
		if r.Round != round {
			continue
		}
		w, ok := r.Winner()
		if !ok || w.IsBye {
			continue
		}
		if p, ok := eligible[w.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func lastRound(history []MatchResult) int {
	last := 0
	for _, r := range history {
		if r.Round > last {
			last = r.Round
		}
	}
	return last
}

func checkDistinct(players []Player) error {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if p.IsBye {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: %v", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func removeIndex(s []Player, i int) []Player {
	return append(s[:i], s[i+1:]...)
}
