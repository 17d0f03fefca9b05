/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"fmt"
	"strings"

	"github.com/mikeb26/clubtd/internal"
)

func playerLabel(p Player, scores *ScoreTable) string {
	if scores == nil {
		return fmt.Sprintf("%s(%d)", p.Name, p.SeedRating())
	}
	return fmt.Sprintf("%s(%d %v)", p.Name, p.SeedRating(),
		internal.ScoreToString(scores.Get(p.ID)))
}

// BuildPairingsOutput formats a round plan into an aligned table. scores,
// when non-nil, are the totals going into the round.
func BuildPairingsOutput(plan *RoundPlan, scores *ScoreTable) string {
	var sb strings.Builder
	if plan == nil || len(plan.Pairings) == 0 {
		sb.WriteString("No pairings posted")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Round %v Pairings:\n\n", plan.Round))

	type row struct{ board, white, black string }
	var rows []row
	board := 0
	for _, p := range plan.Pairings {
		if p.IsBye() {
			continue
		}
		board++
		rows = append(rows, row{
			board: fmt.Sprintf("%d.", board),
			white: playerLabel(p.First, scores),
			black: playerLabel(p.Second, scores),
		})
	}
	for _, p := range plan.Pairings {
		if !p.IsBye() {
			continue
		}
		rows = append(rows, row{
			board: "n/a",
			white: playerLabel(p.RealPlayer(), scores),
			black: "BYE(1)",
		})
	}

	maxB, maxW, maxBl := len("Board"), len("White"), len("Black")
	for _, r := range rows {
		if l := len(r.board); l > maxB {
			maxB = l
		}
		if l := len(r.white); l > maxW {
			maxW = l
		}
		if l := len(r.black); l > maxBl {
			maxBl = l
		}
	}

	sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxB, "Board", maxW,
		"White", maxBl, "Black"))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxB, r.board,
			maxW, r.white, maxBl, r.black))
	}
	for _, p := range plan.ForcedRepeats {
		sb.WriteString(fmt.Sprintf("* %v and %v have met before\n",
			p.First.Name, p.Second.Name))
	}

	return sb.String()
}

// BuildStandingsOutput formats ranked standings. Players tied on the ranking
// score share the place shown on the first of them.
func BuildStandingsOutput(standings []Standing, method Method,
	heading string) string {

	var sb strings.Builder
	if len(standings) == 0 {
		sb.WriteString("No results recorded yet")
		return sb.String()
	}
	if heading != "" {
		sb.WriteString(heading)
		sb.WriteString("\n\n")
	}

	showTieBreak := method == Progress
	type row struct{ place, name, points, tb string }
	var rows []row
	priorScore := -1.0
	for idx, s := range standings {
		place := ""
		if idx == 0 || s.Score != priorScore {
			place = fmt.Sprintf("%v.", s.Place)
			priorScore = s.Score
		}
		rows = append(rows, row{
			place:  place,
			name:   s.Player.Name,
			points: internal.ScoreToString(s.Points),
			tb:     internal.ScoreToString(s.Score),
		})
	}

	maxP, maxN, maxS, maxT := len("Place"), len("Name"), len("Score"),
		len(method.String())
	for _, r := range rows {
		if l := len(r.place); l > maxP {
			maxP = l
		}
		if l := len(r.name); l > maxN {
			maxN = l
		}
		if l := len(r.points); l > maxS {
			maxS = l
		}
		if l := len(r.tb); l > maxT {
			maxT = l
		}
	}

	if showTieBreak {
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s  %-*s\n", maxP, "Place",
			maxN, "Name", maxS, "Score", maxT, method.String()))
	} else {
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxP, "Place", maxN,
			"Name", maxS, "Score"))
	}
	for _, r := range rows {
		if showTieBreak {
			sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s  %-*s\n", maxP,
				r.place, maxN, r.name, maxS, r.points, maxT, r.tb))
		} else {
			sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxP, r.place,
				maxN, r.name, maxS, r.points))
		}
	}

	return sb.String()
}

// BuildCrossTableOutput renders one row per ranked player with a cell per
// round: W3(w) is a win as white against player 3, D/L likewise, BYE(1) a
// bye and a blank cell a round the player did not play.
func BuildCrossTableOutput(standings []Standing, history []MatchResult) string {
	var sb strings.Builder
	if len(standings) == 0 {
		sb.WriteString("No results recorded yet")
		return sb.String()
	}

	numbers := make(map[string]int, len(standings))
	for i, s := range standings {
		numbers[s.Player.ID] = i + 1
	}
	numRounds := lastRound(history)

	headers := []string{"No", "Name", "Rating", "Pts"}
	for i := 1; i <= numRounds; i++ {
		headers = append(headers, fmt.Sprintf("R%d", i))
	}

	var rows [][]string
	for i, s := range standings {
		row := []string{
			fmt.Sprintf("%d.", i+1),
			s.Player.Name,
			fmt.Sprintf("%v", s.Player.SeedRating()),
			internal.ScoreToString(s.Points),
		}
		cells := make([]string, numRounds)
		for _, r := range history {
			if r.Round < 1 || r.Round > numRounds {
				continue
			}
			cell, ok := crossTableCell(r, s.Player.ID, numbers)
			if ok {
				cells[r.Round-1] = cell
			}
		}
		rows = append(rows, append(row, cells...))
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	var fmtStrBuilder strings.Builder
	for _, w := range colWidths {
		fmtStrBuilder.WriteString(fmt.Sprintf("%%-%ds  ", w))
	}
	fmtStr := strings.TrimRight(fmtStrBuilder.String(), " ") + "\n"

	sb.WriteString(strings.TrimRight(fmt.Sprintf(fmtStr,
		internal.ToAnySlice(headers)...), " \n") + "\n")
	for _, row := range rows {
		sb.WriteString(strings.TrimRight(fmt.Sprintf(fmtStr,
			internal.ToAnySlice(row)...), " \n") + "\n")
	}

	return sb.String()
}

func crossTableCell(r MatchResult, playerID string,
	numbers map[string]int) (string, bool) {

	mine, ok := r.ScoreOf(playerID)
	if !ok {
		return "", false
	}
	if r.Bye {
		return fmt.Sprintf("BYE(%v)", internal.ScoreToString(mine)), true
	}

	opp, color := r.Pairing.Second, 'w'
	theirs := r.SecondScore
	if r.Pairing.Second.ID == playerID {
		opp, color = r.Pairing.First, 'b'
		theirs = r.FirstScore
	}

	var outcome string
	switch {
	case mine > theirs:
		outcome = "W"
	case mine < theirs:
		outcome = "L"
	default:
		outcome = "D"
	}
	return fmt.Sprintf("%v%d(%c)", outcome, numbers[opp.ID], color), true
}
