/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

// ByeID is the stable identity of the bye placeholder.
const ByeID = "bye"

// Player is a tournament participant as supplied by the roster. The engine
// never mutates players.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating *int   `json:"rating,omitempty"`
	UscfID int    `json:"uscfId,omitempty"`
	IsBye  bool   `json:"isBye,omitempty"`
}

// ByePlayer is the sentinel opponent for the odd player out in a round.
var ByePlayer = Player{ID: ByeID, Name: "BYE", IsBye: true}

// NewPlayer is a convenience constructor; a rating of 0 means unrated.
func NewPlayer(id, name string, rating int) Player {
	p := Player{ID: id, Name: name}
	if rating != 0 {
		p.Rating = &rating
	}
	return p
}

// SeedRating returns the rating used for seeding; unrated players seed as 0.
func (p Player) SeedRating() int {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// WithBye returns players padded with the bye placeholder when the count of
// real players is odd. A bye already present is never added twice, and a
// stray bye in an even field is dropped.
func WithBye(players []Player) []Player {
	entrants := realPlayers(players)
	out := make([]Player, 0, len(entrants)+1)
	out = append(out, entrants...)
	if len(entrants)%2 == 1 {
		out = append(out, ByePlayer)
	}
	return out
}

func realPlayers(players []Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if p.IsBye {
			continue
		}
		out = append(out, p)
	}
	return out
}
