/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mikeb26/clubtd/roster"
	"github.com/mikeb26/clubtd/tourney"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, text)
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, roster.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrDuplicate),
		errors.Is(err, tourney.ErrWrongPhase),
		errors.Is(err, tourney.ErrTournamentDecided):
		return http.StatusConflict
	case errors.Is(err, roster.ErrInvalid),
		errors.Is(err, tourney.ErrInsufficientPlayers),
		errors.Is(err, tourney.ErrIncompleteResultSet),
		errors.Is(err, tourney.ErrInvalidResult),
		errors.Is(err, tourney.ErrUnknownPairing),
		errors.Is(err, tourney.ErrDuplicateResult),
		errors.Is(err, tourney.ErrUnknownBoard),
		errors.Is(err, tourney.ErrUnknownSystem),
		errors.Is(err, tourney.ErrUnknownMethod),
		errors.Is(err, tourney.ErrDuplicatePlayer):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: bad request body: %v", roster.ErrInvalid, err)
	}
	return nil
}

func wantsText(r *http.Request) bool {
	return r.URL.Query().Get("format") == "text"
}

type playerRequest struct {
	Name   string `json:"name"`
	Rating *int   `json:"rating"`
	UscfID int    `json:"uscfId"`
}

func (s *Server) listPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.roster.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if players == nil {
		players = []tourney.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) createPlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.roster.Create(r.Context(), tourney.Player{Name: req.Name,
		Rating: req.Rating, UscfID: req.UscfID})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) deletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tournamentView is the JSON summary of the running tournament.
type tournamentView struct {
	Phase       tourney.Phase         `json:"phase"`
	Config      tourney.Config        `json:"config"`
	Round       int                   `json:"round"`
	TotalRounds int                   `json:"totalRounds"`
	Players     []tourney.Player      `json:"players"`
	Outstanding []int                 `json:"outstanding,omitempty"`
	Sheet       []tourney.BoardResult `json:"sheet,omitempty"`
	Scores      *tourney.ScoreTable   `json:"scores"`
}

func (s *Server) view() tournamentView {
	players := s.ctl.Players()
	if players == nil {
		players = []tourney.Player{}
	}
	return tournamentView{
		Phase:       s.ctl.Phase(),
		Config:      s.ctl.Config(),
		Round:       s.ctl.Round(),
		TotalRounds: s.ctl.TotalRounds(),
		Players:     players,
		Outstanding: s.ctl.Outstanding(),
		Sheet:       s.ctl.Sheet(),
		Scores:      s.ctl.Scores(),
	}
}

func (s *Server) getTournament(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.view())
}

type startRequest struct {
	System    tourney.System  `json:"system"`
	TieBreak  tourney.Method  `json:"tiebreak"`
	Scoring   tourney.Scoring `json:"scoring"`
	Rounds    int             `json:"rounds"`
	PlayerIDs []string        `json:"playerIds"`
}

// startTournament starts a new tournament with the whole roster or the
// listed players. A finished tournament is replaced; one in progress must be
// reset first.
func (s *Server) startTournament(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if phase := s.ctl.Phase(); phase != tourney.PhaseRegistering &&
		phase != tourney.PhaseFinished {
		s.writeError(w, fmt.Errorf("%w: tournament is %v; reset it first",
			tourney.ErrWrongPhase, phase))
		return
	}

	players, err := s.selectPlayers(r, req.PlayerIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctl := tourney.NewController(tourney.Config{
		System:   req.System,
		TieBreak: req.TieBreak,
		Scoring:  req.Scoring,
		Rounds:   req.Rounds,
	}, s.controllerOpts()...)
	plan, err := ctl.Start(players)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.commit(r.Context(), ctl); err != nil {
		s.writeError(w, err)
		return
	}

	s.hub.Broadcast(Event{Type: EventRoundPaired, Round: plan.Round,
		Payload: plan})
	writeJSON(w, http.StatusCreated, s.view())
}

func (s *Server) selectPlayers(r *http.Request,
	ids []string) ([]tourney.Player, error) {

	if len(ids) == 0 {
		return s.roster.List(r.Context())
	}
	players := make([]tourney.Player, 0, len(ids))
	for _, id := range ids {
		p, err := s.roster.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *Server) resetTournament(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.snaps.Clear(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.ctl = tourney.NewController(tourney.Config{}, s.controllerOpts()...)
	s.hub.Broadcast(Event{Type: EventTournamentReset})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getPairings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.ctl.Pairings()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if wantsText(r) {
		writeText(w, tourney.BuildPairingsOutput(plan, s.ctl.Scores()))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// boardRequest carries either a result code such as "1-0" or the two
// scores.
type boardRequest struct {
	Board  int      `json:"board"`
	Result string   `json:"result"`
	First  *float64 `json:"first"`
	Second *float64 `json:"second"`
}

func (b boardRequest) scores(scoring tourney.Scoring) (float64, float64,
	error) {

	if b.Result != "" {
		return tourney.ParseResultCode(b.Result, scoring)
	}
	if b.First == nil || b.Second == nil {
		return 0, 0, fmt.Errorf("%w: board %v needs a result or both scores",
			tourney.ErrInvalidResult, b.Board)
	}
	return *b.First, *b.Second, nil
}

func (s *Server) reportBoard(w http.ResponseWriter, r *http.Request) {
	board, err := strconv.Atoi(chi.URLParam(r, "board"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %q", tourney.ErrUnknownBoard,
			chi.URLParam(r, "board")))
		return
	}
	var req boardRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	first, second, err := req.scores(s.ctl.Config().Scoring)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ctl, err := s.draft()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := ctl.Report(board, first, second); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.commit(r.Context(), ctl); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

type resultsRequest struct {
	Results []boardRequest `json:"results"`
}

// submitResults records a whole round. With no results in the body the
// boards reported so far are submitted.
func (s *Server) submitResults(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, fmt.Errorf("%w: bad request body: %v",
			tourney.ErrInvalidResult, err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.ctl.Pairings()
	if err != nil {
		s.writeError(w, err)
		return
	}
	ctl, err := s.draft()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Results) == 0 {
		_, err = ctl.SubmitSheet()
	} else {
		var results []tourney.MatchResult
		results, err = s.toResults(plan, req.Results)
		if err == nil {
			_, err = ctl.SubmitResults(results)
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.commit(r.Context(), ctl); err != nil {
		s.writeError(w, err)
		return
	}

	s.announce(plan.Round)
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) toResults(plan *tourney.RoundPlan,
	boards []boardRequest) ([]tourney.MatchResult, error) {

	results := make([]tourney.MatchResult, 0, len(boards))
	for _, b := range boards {
		p, ok := plan.Board(b.Board)
		if !ok {
			return nil, fmt.Errorf("%w: %v", tourney.ErrUnknownBoard, b.Board)
		}
		first, second, err := b.scores(s.ctl.Config().Scoring)
		if err != nil {
			return nil, err
		}
		results = append(results, tourney.MatchResult{Round: plan.Round,
			Pairing: p, FirstScore: first, SecondScore: second})
	}
	return results, nil
}

// announce broadcasts what happened after the given round was recorded.
func (s *Server) announce(round int) {
	s.hub.Broadcast(Event{Type: EventResultsRecorded, Round: round,
		Payload: s.ctl.Scores()})

	switch s.ctl.Phase() {
	case tourney.PhaseAwaitingResults:
		plan, _ := s.ctl.Pairings()
		s.hub.Broadcast(Event{Type: EventRoundPaired, Round: plan.Round,
			Payload: plan})
	case tourney.PhaseFinished:
		standings, _ := s.ctl.FinalStandings()
		s.hub.Broadcast(Event{Type: EventTournamentFinished, Round: round,
			Payload: standings})
	}
}

func (s *Server) getStandings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	standings, err := s.ctl.Standings()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if wantsText(r) {
		heading := fmt.Sprintf("Standings after round %v:",
			s.ctl.RoundsRecorded())
		if s.ctl.Phase() == tourney.PhaseFinished {
			heading = "Final standings:"
		}
		writeText(w, tourney.BuildStandingsOutput(standings,
			s.ctl.Config().TieBreak, heading))
		return
	}
	if standings == nil {
		standings = []tourney.Standing{}
	}
	writeJSON(w, http.StatusOK, standings)
}

func (s *Server) getCrossTable(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	standings, err := s.ctl.Standings()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeText(w, tourney.BuildCrossTableOutput(standings, s.ctl.History()))
}
