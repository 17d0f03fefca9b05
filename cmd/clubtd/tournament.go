/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"fmt"

	"github.com/mikeb26/clubtd/config"
	"github.com/mikeb26/clubtd/tourney"
)

type StartCmd struct {
	File     string   `arg:"" optional:"" type:"existingfile" help:"HCL tournament file; the roster is used when omitted"`
	System   string   `default:"swiss" help:"Pairing system (swiss, knockout)"`
	TieBreak string   `name:"tiebreak" default:"plainsum" help:"Tie-break (plainsum, buchholz, progress)"`
	Scoring  string   `default:"standard" help:"Result scoring (standard, games)"`
	Rounds   int      `help:"Number of rounds; computed from the field when 0"`
	Players  []string `help:"Roster IDs to enter; everyone when empty"`
}

func (c *StartCmd) Run(g *Globals) error {
	cfg, players, err := c.field(g)
	if err != nil {
		return err
	}

	ctl, snaps, err := g.load()
	if err != nil {
		return err
	}
	switch ctl.Phase() {
	case tourney.PhaseRegistering, tourney.PhaseFinished:
	default:
		return fmt.Errorf("%w: a tournament is in round %v; run 'clubtd reset' first",
			tourney.ErrWrongPhase, ctl.Round())
	}

	ctl = tourney.NewController(cfg, g.controllerOpts()...)
	plan, err := ctl.Start(players)
	if err != nil {
		return err
	}
	if err := snaps.Save(g.ctx, ctl.Snapshot()); err != nil {
		return err
	}

	g.printf("%v players, %v rounds (%v, %v)\n\n", len(ctl.Players()),
		ctl.TotalRounds(), cfg.System, cfg.TieBreak)
	g.printf("%v", tourney.BuildPairingsOutput(plan, nil))
	return nil
}

// field returns the configuration and players from the tournament file, or
// from the flags and the roster.
func (c *StartCmd) field(g *Globals) (tourney.Config, []tourney.Player,
	error) {

	if c.File != "" {
		t, err := config.LoadTournamentFile(c.File)
		if err != nil {
			return tourney.Config{}, nil, err
		}
		return t.Config, t.Players, nil
	}

	var cfg tourney.Config
	var err error
	if cfg.System, err = tourney.ParseSystem(c.System); err != nil {
		return cfg, nil, err
	}
	if cfg.TieBreak, err = tourney.ParseMethod(c.TieBreak); err != nil {
		return cfg, nil, err
	}
	if cfg.Scoring, err = tourney.ParseScoring(c.Scoring); err != nil {
		return cfg, nil, err
	}
	cfg.Rounds = c.Rounds

	store, err := g.roster()
	if err != nil {
		return cfg, nil, err
	}
	if len(c.Players) == 0 {
		players, err := store.List(g.ctx)
		return cfg, players, err
	}
	players := make([]tourney.Player, 0, len(c.Players))
	for _, id := range c.Players {
		p, err := store.Get(g.ctx, id)
		if err != nil {
			return cfg, nil, fmt.Errorf("player %v: %w", id, err)
		}
		players = append(players, p)
	}
	return cfg, players, nil
}

type PairingsCmd struct{}

func (c *PairingsCmd) Run(g *Globals) error {
	ctl, _, err := g.load()
	if err != nil {
		return err
	}
	plan, err := ctl.Pairings()
	if err != nil {
		return errNoTournament
	}
	g.printf("%v", tourney.BuildPairingsOutput(plan, ctl.Scores()))
	if missing := ctl.Outstanding(); len(missing) > 0 {
		g.printf("\nAwaiting results for boards %v\n", missing)
	}
	return nil
}

type ReportCmd struct {
	Board  int    `arg:"" help:"Board number"`
	Result string `arg:"" help:"Result such as 1-0, 0-1, 1/2-1/2 or 2-1 for game counts"`
}

func (c *ReportCmd) Run(g *Globals) error {
	ctl, snaps, err := g.load()
	if err != nil {
		return err
	}
	first, second, err := tourney.ParseResultCode(c.Result,
		ctl.Config().Scoring)
	if err != nil {
		return err
	}
	if err := ctl.Report(c.Board, first, second); err != nil {
		return err
	}
	if err := snaps.Save(g.ctx, ctl.Snapshot()); err != nil {
		return err
	}

	if missing := ctl.Outstanding(); len(missing) > 0 {
		g.printf("Board %v recorded; awaiting boards %v\n", c.Board, missing)
	} else {
		g.printf("Board %v recorded; all boards in, run 'clubtd submit'\n",
			c.Board)
	}
	return nil
}

type SubmitCmd struct{}

func (c *SubmitCmd) Run(g *Globals) error {
	ctl, snaps, err := g.load()
	if err != nil {
		return err
	}
	round := ctl.Round()
	if _, err := ctl.SubmitSheet(); err != nil {
		return err
	}
	if err := snaps.Save(g.ctx, ctl.Snapshot()); err != nil {
		return err
	}

	if ctl.Phase() == tourney.PhaseFinished {
		standings, err := ctl.FinalStandings()
		if err != nil {
			return err
		}
		g.printf("%v", tourney.BuildStandingsOutput(standings,
			ctl.Config().TieBreak, "Final standings:"))
		return nil
	}

	plan, err := ctl.Pairings()
	if err != nil {
		return err
	}
	g.printf("Round %v recorded.\n\n", round)
	g.printf("%v", tourney.BuildPairingsOutput(plan, ctl.Scores()))
	return nil
}

type StandingsCmd struct{}

func (c *StandingsCmd) Run(g *Globals) error {
	ctl, _, err := g.load()
	if err != nil {
		return err
	}
	standings, err := ctl.Standings()
	if err != nil {
		return err
	}
	heading := fmt.Sprintf("Standings after round %v:", ctl.RoundsRecorded())
	if ctl.Phase() == tourney.PhaseFinished {
		heading = "Final standings:"
	}
	g.printf("%v", tourney.BuildStandingsOutput(standings,
		ctl.Config().TieBreak, heading))
	return nil
}

type CrosstableCmd struct{}

func (c *CrosstableCmd) Run(g *Globals) error {
	ctl, _, err := g.load()
	if err != nil {
		return err
	}
	standings, err := ctl.Standings()
	if err != nil {
		return err
	}
	g.printf("%v", tourney.BuildCrossTableOutput(standings, ctl.History()))
	return nil
}

type ResetCmd struct {
	Force bool `help:"Discard a tournament that is still in progress"`
}

func (c *ResetCmd) Run(g *Globals) error {
	ctl, snaps, err := g.load()
	if err != nil {
		return err
	}
	if ctl.Phase() == tourney.PhaseAwaitingResults && !c.Force {
		return fmt.Errorf("tournament is in round %v; use --force to discard it",
			ctl.Round())
	}
	if err := snaps.Clear(g.ctx); err != nil {
		return err
	}
	g.printf("Tournament discarded\n")
	return nil
}
