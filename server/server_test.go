/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mikeb26/clubtd/roster"
	"github.com/mikeb26/clubtd/snapshot"
	"github.com/mikeb26/clubtd/tourney"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv   *Server
	http  *httptest.Server
	snaps snapshot.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t,
		snapshot.NewFileStore(filepath.Join(t.TempDir(), "state.json")))
}

func newTestEnvWith(t *testing.T, snaps snapshot.Store) *testEnv {
	t.Helper()

	srv, err := New(context.Background(), roster.NewMemoryStore(), snaps)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return &testEnv{srv: srv, http: ts, snaps: snaps}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.http.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) addPlayers(t *testing.T) map[string]tourney.Player {
	t.Helper()

	byName := make(map[string]tourney.Player)
	for name, rating := range map[string]int{"A": 1800, "B": 1600,
		"C": 1400, "D": 1200} {
		r := rating
		resp := e.do(t, http.MethodPost, "/players",
			playerRequest{Name: name, Rating: &r})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		p := decode[tourney.Player](t, resp)
		byName[name] = p
	}
	return byName
}

// failingStore wraps a snapshot store and fails every Save while failing is
// set.
type failingStore struct {
	snapshot.Store
	failing bool
}

var errSaveFailed = errors.New("save failed")

func (f *failingStore) Save(ctx context.Context, state tourney.State) error {
	if f.failing {
		return errSaveFailed
	}
	return f.Store.Save(ctx, state)
}

func TestFailedSaveKeepsState(t *testing.T) {
	snaps := &failingStore{Store: snapshot.NewFileStore(
		filepath.Join(t.TempDir(), "state.json"))}
	env := newTestEnvWith(t, snaps)
	env.addPlayers(t)

	snaps.failing = true
	resp := env.do(t, http.MethodPost, "/tournament", map[string]any{})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/tournament", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tourney.PhaseRegistering,
		decode[tournamentView](t, resp).Phase)

	snaps.failing = false
	resp = env.do(t, http.MethodPost, "/tournament", map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	snaps.failing = true
	resp = env.do(t, http.MethodPost, "/tournament/boards/1",
		boardRequest{Result: "1-0"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	results := resultsRequest{Results: []boardRequest{
		{Board: 1, Result: "1-0"},
		{Board: 2, Result: "0-1"},
	}}
	resp = env.do(t, http.MethodPost, "/tournament/results", results)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/tournament", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[tournamentView](t, resp)
	assert.Equal(t, 1, view.Round)
	assert.Empty(t, view.Sheet)
	assert.Equal(t, []int{1, 2}, view.Outstanding)

	// the same results go through once saving works again
	snaps.failing = false
	resp = env.do(t, http.MethodPost, "/tournament/results", results)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[tournamentView](t, resp).Round)

	state, err := snaps.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, state.Round)
}

func TestPlayers(t *testing.T) {
	env := newTestEnv(t)
	players := env.addPlayers(t)

	resp := env.do(t, http.MethodGet, "/players", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]tourney.Player](t, resp), 4)

	resp = env.do(t, http.MethodPost, "/players", playerRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/players/"+players["C"].ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodDelete, "/players/"+players["C"].ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTournamentFlow(t *testing.T) {
	env := newTestEnv(t)
	players := env.addPlayers(t)

	resp := env.do(t, http.MethodGet, "/tournament/pairings", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/tournament",
		map[string]any{"system": "swiss", "tiebreak": "plainsum"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	view := decode[tournamentView](t, resp)
	assert.Equal(t, tourney.PhaseAwaitingResults, view.Phase)
	assert.Equal(t, 1, view.Round)
	assert.Equal(t, 2, view.TotalRounds)
	assert.Equal(t, []int{1, 2}, view.Outstanding)

	resp = env.do(t, http.MethodPost, "/tournament", map[string]any{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/tournament/pairings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := decode[tourney.RoundPlan](t, resp)
	require.Len(t, plan.Pairings, 2)
	assert.Equal(t, players["D"].ID, plan.Pairings[0].First.ID)
	assert.Equal(t, players["C"].ID, plan.Pairings[0].Second.ID)
	assert.Equal(t, players["B"].ID, plan.Pairings[1].First.ID)
	assert.Equal(t, players["A"].ID, plan.Pairings[1].Second.ID)

	resp = env.do(t, http.MethodGet, "/tournament/pairings?format=text", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// an incomplete sheet cannot be submitted
	resp = env.do(t, http.MethodPost, "/tournament/boards/1",
		boardRequest{Result: "1-0"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/tournament/results", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/tournament/boards/3",
		boardRequest{Result: "1-0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/tournament/boards/2",
		boardRequest{Result: "2-0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	first, second := 0.5, 0.5
	resp = env.do(t, http.MethodPost, "/tournament/boards/2",
		boardRequest{First: &first, Second: &second})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/tournament/results", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[tournamentView](t, resp)
	assert.Equal(t, tourney.PhaseAwaitingResults, view.Phase)
	assert.Equal(t, 2, view.Round)
	assert.Equal(t, 1.0, view.Scores.Get(players["D"].ID))
	assert.Equal(t, 0.5, view.Scores.Get(players["A"].ID))

	// the saved snapshot tracks every transition
	state, err := env.snaps.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, state.Round)
	assert.Len(t, state.History, 2)

	resp = env.do(t, http.MethodPost, "/tournament/results",
		resultsRequest{Results: []boardRequest{
			{Board: 1, Result: "1-0"},
			{Board: 2, Result: "0-1"},
		}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[tournamentView](t, resp)
	assert.Equal(t, tourney.PhaseFinished, view.Phase)

	resp = env.do(t, http.MethodGet, "/tournament/standings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	standings := decode[[]tourney.Standing](t, resp)
	require.Len(t, standings, 4)
	assert.Equal(t, 1, standings[0].Place)
	total := 0.0
	for _, s := range standings {
		total += s.Points
	}
	assert.Equal(t, 4.0, total)

	resp = env.do(t, http.MethodGet, "/tournament/standings?format=text", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/tournament/crosstable", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/tournament", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err = env.snaps.Load(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrNone)

	resp = env.do(t, http.MethodGet, "/tournament", nil)
	view = decode[tournamentView](t, resp)
	assert.Equal(t, tourney.PhaseRegistering, view.Phase)
}

func TestStartErrors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/tournament", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/tournament",
		map[string]any{"system": "roundrobin"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/tournament",
		map[string]any{"playerIds": []string{"nobody"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResumeFromSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.addPlayers(t)

	resp := env.do(t, http.MethodPost, "/tournament",
		map[string]any{"system": "knockout"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	srv, err := New(context.Background(), roster.NewMemoryStore(), env.snaps)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err = ts.Client().Get(ts.URL + "/tournament")
	require.NoError(t, err)
	defer resp.Body.Close()
	view := decode[tournamentView](t, resp)
	assert.Equal(t, tourney.PhaseAwaitingResults, view.Phase)
	assert.Equal(t, tourney.Knockout, view.Config.System)
	assert.Equal(t, 1, view.Round)
}

func TestWebsocketEvents(t *testing.T) {
	env := newTestEnv(t)
	env.addPlayers(t)

	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return env.srv.Hub().Clients() == 1
	}, time.Second, 10*time.Millisecond)

	resp := env.do(t, http.MethodPost, "/tournament", map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev struct {
		Type  string            `json:"type"`
		Round int               `json:"round"`
		Plan  tourney.RoundPlan `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventRoundPaired, ev.Type)
	assert.Equal(t, 1, ev.Round)
	assert.Len(t, ev.Plan.Pairings, 2)
}
