/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

type Phase int

const (
	PhaseRegistering Phase = iota
	PhasePairing
	PhaseAwaitingResults
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseRegistering:
		return "registering"
	case PhasePairing:
		return "pairing"
	case PhaseAwaitingResults:
		return "awaiting-results"
	case PhaseFinished:
		return "finished"
	}
	return "?"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "registering":
		*p = PhaseRegistering
	case "pairing":
		*p = PhasePairing
	case "awaiting-results":
		*p = PhaseAwaitingResults
	case "finished":
		*p = PhaseFinished
	default:
		return fmt.Errorf("unknown phase %q", string(b))
	}
	return nil
}

// Config is fixed when a tournament is created.
type Config struct {
	System   System  `json:"system"`
	TieBreak Method  `json:"tiebreak"`
	Scoring  Scoring `json:"scoring"`
	// Rounds overrides the computed round count when > 0.
	Rounds int `json:"rounds,omitempty"`
}

// BoardResult is one entry on the result sheet of the current round.
type BoardResult struct {
	Board       int     `json:"board"`
	FirstScore  float64 `json:"firstScore"`
	SecondScore float64 `json:"secondScore"`
}

type RoundTiming struct {
	Round    int       `json:"round"`
	PairedAt time.Time `json:"pairedAt"`
	JudgedAt time.Time `json:"judgedAt,omitempty"`
}

// State is everything needed to resume a tournament.
type State struct {
	Config      Config        `json:"config"`
	Phase       Phase         `json:"phase"`
	Round       int           `json:"round"`
	TotalRounds int           `json:"totalRounds"`
	Players     []Player      `json:"players"`
	Plan        *RoundPlan    `json:"plan,omitempty"`
	Sheet       []BoardResult `json:"sheet,omitempty"`
	History     []MatchResult `json:"history"`
	Played      PlayedSet     `json:"played"`
	Timings     []RoundTiming `json:"timings,omitempty"`
	Final       []Standing    `json:"final,omitempty"`
}

// Controller runs one tournament through its phases. It is not safe for
// concurrent use.
type Controller struct {
	state  State
	agg    *Aggregator
	logger *log.Logger
	clock  quartz.Clock
}

type Option func(*Controller)

func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithClock(clock quartz.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

func NewController(cfg Config, opts ...Option) *Controller {
	c := &Controller{
		state: State{
			Config: cfg,
			Phase:  PhaseRegistering,
			Played: make(PlayedSet),
		},
		agg: NewAggregator(cfg.Scoring),
	}
	c.apply(opts)
	return c
}

// Restore resumes a tournament from a snapshot.
func Restore(state State, opts ...Option) (*Controller, error) {
	if state.Phase < PhaseRegistering || state.Phase > PhaseFinished {
		return nil, fmt.Errorf("%w: bad phase %v", ErrWrongPhase, int(state.Phase))
	}
	if state.Phase == PhaseAwaitingResults && state.Plan == nil {
		return nil, fmt.Errorf("%w: awaiting results without a round plan",
			ErrWrongPhase)
	}
	if state.Played == nil {
		state.Played = make(PlayedSet)
	}
	c := &Controller{
		state: state,
		agg:   NewAggregator(state.Config.Scoring),
	}
	c.agg.Rebuild(state.History)
	c.apply(opts)
	return c, nil
}

func (c *Controller) apply(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	c.logger = c.logger.WithPrefix("tourney")
	if c.clock == nil {
		c.clock = quartz.NewReal()
	}
}

func (c *Controller) Phase() Phase {
	return c.state.Phase
}

func (c *Controller) Round() int {
	return c.state.Round
}

func (c *Controller) TotalRounds() int {
	return c.state.TotalRounds
}

func (c *Controller) Config() Config {
	return c.state.Config
}

func (c *Controller) Players() []Player {
	return append([]Player(nil), c.state.Players...)
}

func (c *Controller) History() []MatchResult {
	return append([]MatchResult(nil), c.state.History...)
}

// RoundsRecorded returns the number of rounds whose results are in.
func (c *Controller) RoundsRecorded() int {
	return lastRound(c.state.History)
}

// Start registers the roster and pairs round 1.
func (c *Controller) Start(players []Player) (*RoundPlan, error) {
	if c.state.Phase != PhaseRegistering {
		return nil, fmt.Errorf("%w: cannot start while %v", ErrWrongPhase,
			c.state.Phase)
	}
	if err := checkDistinct(players); err != nil {
		return nil, err
	}
	roster := realPlayers(players)
	if len(roster) < 2 {
		return nil, fmt.Errorf("%w: have %v", ErrInsufficientPlayers,
			len(roster))
	}

	c.state.Players = roster
	c.state.TotalRounds = TotalRounds(len(roster))
	if c.state.Config.Rounds > 0 {
		c.state.TotalRounds = c.state.Config.Rounds
	}
	c.state.Phase = PhasePairing
	c.logger.Info("Tournament started", "players", len(roster),
		"system", c.state.Config.System, "rounds", c.state.TotalRounds)

	return c.pair()
}

func (c *Controller) pair() (*RoundPlan, error) {
	plan, err := NextRound(c.state.Players, c.state.Played,
		c.state.Config.System, c.state.History)
	if errors.Is(err, ErrTournamentDecided) {
		c.logger.Info("No players left to pair", "round", c.state.Round+1)
		if ferr := c.finish(); ferr != nil {
			return nil, ferr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	for _, p := range plan.ForcedRepeats {
		c.logger.Warn("Forced repeat pairing", "round", plan.Round,
			"first", p.First.ID, "second", p.Second.ID)
	}

	c.state.Plan = plan
	c.state.Played = plan.Played
	c.state.Round = plan.Round
	c.state.Sheet = nil
	c.state.Phase = PhaseAwaitingResults
	c.state.Timings = append(c.state.Timings,
		RoundTiming{Round: plan.Round, PairedAt: c.clock.Now()})
	c.logger.Debug("Round paired", "round", plan.Round,
		"boards", len(plan.Judged()), "byes", len(plan.ByeResults))

	return plan.clone(), nil
}

// Pairings returns the plan of the round awaiting results.
func (c *Controller) Pairings() (*RoundPlan, error) {
	if c.state.Phase != PhaseAwaitingResults {
		return nil, fmt.Errorf("%w: no round in progress while %v",
			ErrWrongPhase, c.state.Phase)
	}
	return c.state.Plan.clone(), nil
}

// Report records one board on the result sheet. Reporting a board again
// replaces the earlier entry.
func (c *Controller) Report(board int, first, second float64) error {
	if c.state.Phase != PhaseAwaitingResults {
		return fmt.Errorf("%w: no round in progress while %v", ErrWrongPhase,
			c.state.Phase)
	}
	if _, ok := c.state.Plan.Board(board); !ok {
		return fmt.Errorf("%w: %v", ErrUnknownBoard, board)
	}
	if err := c.state.Config.Scoring.Validate(first, second); err != nil {
		return err
	}

	entry := BoardResult{Board: board, FirstScore: first, SecondScore: second}
	for i := range c.state.Sheet {
		if c.state.Sheet[i].Board == board {
			c.state.Sheet[i] = entry
			return nil
		}
	}
	c.state.Sheet = append(c.state.Sheet, entry)
	sort.Slice(c.state.Sheet, func(i, j int) bool {
		return c.state.Sheet[i].Board < c.state.Sheet[j].Board
	})
	return nil
}

// Sheet returns the boards reported so far this round.
func (c *Controller) Sheet() []BoardResult {
	return append([]BoardResult(nil), c.state.Sheet...)
}

// Outstanding returns the board numbers still missing a result.
func (c *Controller) Outstanding() []int {
	if c.state.Phase != PhaseAwaitingResults {
		return nil
	}
	reported := make(map[int]bool, len(c.state.Sheet))
	for _, e := range c.state.Sheet {
		reported[e.Board] = true
	}
	var out []int
	for i := range c.state.Plan.Judged() {
		if !reported[i+1] {
			out = append(out, i+1)
		}
	}
	return out
}

// SubmitSheet submits the result sheet once every board is reported.
func (c *Controller) SubmitSheet() (*ScoreTable, error) {
	if c.state.Phase != PhaseAwaitingResults {
		return nil, fmt.Errorf("%w: no round in progress while %v",
			ErrWrongPhase, c.state.Phase)
	}
	if missing := c.Outstanding(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: boards %v unreported",
			ErrIncompleteResultSet, missing)
	}

	results := make([]MatchResult, 0, len(c.state.Sheet))
	for _, e := range c.state.Sheet {
		p, _ := c.state.Plan.Board(e.Board)
		results = append(results, MatchResult{
			Round:       c.state.Round,
			Pairing:     p,
			FirstScore:  e.FirstScore,
			SecondScore: e.SecondScore,
		})
	}

	return c.SubmitResults(results)
}

// SubmitResults records the results of the current round, then either pairs
// the next round or finishes the tournament.
func (c *Controller) SubmitResults(results []MatchResult) (*ScoreTable,
	error) {

	if c.state.Phase != PhaseAwaitingResults {
		return nil, fmt.Errorf("%w: no round in progress while %v",
			ErrWrongPhase, c.state.Phase)
	}

	plan := c.state.Plan
	full, err := c.agg.CheckRound(plan, results)
	if err != nil {
		return nil, fmt.Errorf("round %v: %w", plan.Round, err)
	}
	c.agg.Fold(full)
	c.state.History = append(c.state.History, full...)
	c.state.Sheet = nil
	if n := len(c.state.Timings); n > 0 {
		c.state.Timings[n-1].JudgedAt = c.clock.Now()
	}
	c.logger.Info("Round recorded", "round", plan.Round, "results", len(full))

	if IsComplete(c.state.Config.System, plan.Round, c.state.TotalRounds,
		Survivors(full)) {
		if err := c.finish(); err != nil {
			return nil, err
		}
		return c.agg.Scores(), nil
	}

	c.state.Phase = PhasePairing
	if _, err := c.pair(); err != nil && !errors.Is(err, ErrTournamentDecided) {
		return nil, err
	}

	return c.agg.Scores(), nil
}

func (c *Controller) finish() error {
	standings, err := Rank(c.state.History, c.state.Config.TieBreak)
	if err != nil {
		return err
	}
	c.state.Final = standings
	c.state.Plan = nil
	c.state.Sheet = nil
	c.state.Phase = PhaseFinished
	if w, ok := Winner(standings); ok {
		c.logger.Info("Tournament finished", "rounds", c.state.Round,
			"winner", w.Name)
	}
	return nil
}

// Scores returns the cumulative points so far.
func (c *Controller) Scores() *ScoreTable {
	return c.agg.Scores()
}

// Standings ranks the results recorded so far under the configured method.
func (c *Controller) Standings() ([]Standing, error) {
	if c.state.Phase == PhaseFinished {
		return append([]Standing(nil), c.state.Final...), nil
	}
	return Rank(c.state.History, c.state.Config.TieBreak)
}

func (c *Controller) FinalStandings() ([]Standing, error) {
	if c.state.Phase != PhaseFinished {
		return nil, fmt.Errorf("%w: tournament is %v", ErrWrongPhase,
			c.state.Phase)
	}
	return append([]Standing(nil), c.state.Final...), nil
}

func (c *Controller) Winner() (Player, error) {
	standings, err := c.FinalStandings()
	if err != nil {
		return Player{}, err
	}
	w, ok := Winner(standings)
	if !ok {
		return Player{}, fmt.Errorf("%w: no standings", ErrWrongPhase)
	}
	return w, nil
}

// Snapshot returns a copy of the state that shares nothing with the
// controller.
func (c *Controller) Snapshot() State {
	s := c.state
	s.Players = append([]Player(nil), s.Players...)
	s.Sheet = append([]BoardResult(nil), s.Sheet...)
	s.History = append([]MatchResult(nil), s.History...)
	s.Played = s.Played.Clone()
	s.Timings = append([]RoundTiming(nil), s.Timings...)
	s.Final = append([]Standing(nil), s.Final...)
	if s.Plan != nil {
		s.Plan = s.Plan.clone()
	}
	return s
}
