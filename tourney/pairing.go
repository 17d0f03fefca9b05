/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"encoding/json"
	"sort"
)

// Pairing is one board of a round. First is listed (and plays white) first;
// equality for rematch purposes ignores the order, see Key.
type Pairing struct {
	First  Player `json:"first"`
	Second Player `json:"second"`
}

// PairKey is the order-independent identity of a pairing.
type PairKey struct {
	Lo string `json:"lo"`
	Hi string `json:"hi"`
}

func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

func (p Pairing) Key() PairKey {
	return NewPairKey(p.First.ID, p.Second.ID)
}

// IsBye reports whether one side of the pairing is the bye placeholder.
func (p Pairing) IsBye() bool {
	return p.First.IsBye || p.Second.IsBye
}

// RealPlayer returns the non-bye side of a bye pairing.
func (p Pairing) RealPlayer() Player {
	if p.First.IsBye {
		return p.Second
	}
	return p.First
}

// PlayedSet counts how often each unordered pair has been produced. A count
// above one only happens after a forced repeat.
type PlayedSet map[PairKey]int

func (s PlayedSet) Has(k PairKey) bool {
	return s[k] > 0
}

func (s PlayedSet) HasPair(a, b Player) bool {
	return s.Has(NewPairKey(a.ID, b.ID))
}

// Clone returns an independent copy; a nil set clones to an empty one.
func (s PlayedSet) Clone() PlayedSet {
	out := make(PlayedSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Repeats returns the pairs produced more than once, sorted.
func (s PlayedSet) Repeats() []PairKey {
	var out []PairKey
	for k, v := range s {
		if v > 1 {
			out = append(out, k)
		}
	}
	sortKeys(out)
	return out
}

type playedEntry struct {
	PairKey
	Count int `json:"count"`
}

// MarshalJSON encodes the set as a sorted list so snapshots are stable.
func (s PlayedSet) MarshalJSON() ([]byte, error) {
	keys := make([]PairKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sortKeys(keys)
	entries := make([]playedEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, playedEntry{PairKey: k, Count: s[k]})
	}
	return json.Marshal(entries)
}

func (s *PlayedSet) UnmarshalJSON(data []byte) error {
	var entries []playedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	out := make(PlayedSet, len(entries))
	for _, e := range entries {
		out[NewPairKey(e.Lo, e.Hi)] += e.Count
	}
	*s = out
	return nil
}

func sortKeys(keys []PairKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Lo != keys[j].Lo {
			return keys[i].Lo < keys[j].Lo
		}
		return keys[i].Hi < keys[j].Hi
	})
}
