/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mikeb26/clubtd/internal"
	"github.com/mikeb26/clubtd/roster"
	"github.com/mikeb26/clubtd/snapshot"
	"github.com/mikeb26/clubtd/tourney"
)

// Server exposes the roster and the one running tournament over HTTP. Every
// request that touches the tournament holds mu for its whole duration.
type Server struct {
	mu      sync.Mutex
	ctl     *tourney.Controller
	roster  roster.Store
	snaps   snapshot.Store
	hub     *Hub
	logger  *log.Logger
	clock   quartz.Clock
	origins []string
}

type Option func(*Server)

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithAllowedOrigins sets the CORS origins; the default allows any.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// New resumes the saved tournament, if any, and returns a server ready to
// route requests.
func New(ctx context.Context, players roster.Store, snaps snapshot.Store,
	opts ...Option) (*Server, error) {

	s := &Server{
		roster:  players,
		snaps:   snaps,
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = internal.DiscardLogger()
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	s.hub = NewHub(s.logger)
	s.logger = s.logger.WithPrefix("server")

	ctl, err := snapshot.Resume(ctx, snaps, tourney.Config{},
		s.controllerOpts()...)
	if err != nil {
		return nil, err
	}
	s.ctl = ctl
	s.logger.Info("Tournament loaded", "phase", ctl.Phase(),
		"round", ctl.Round())

	return s, nil
}

func (s *Server) controllerOpts() []tourney.Option {
	return []tourney.Option{tourney.WithLogger(s.logger),
		tourney.WithClock(s.clock)}
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/players", func(r chi.Router) {
		r.Get("/", s.listPlayers)
		r.Post("/", s.createPlayer)
		r.Delete("/{id}", s.deletePlayer)
	})

	r.Route("/tournament", func(r chi.Router) {
		r.Get("/", s.getTournament)
		r.Post("/", s.startTournament)
		r.Delete("/", s.resetTournament)
		r.Get("/pairings", s.getPairings)
		r.Post("/results", s.submitResults)
		r.Post("/boards/{board}", s.reportBoard)
		r.Get("/standings", s.getStandings)
		r.Get("/crosstable", s.getCrossTable)
	})

	r.Get("/ws", s.hub.ServeWs)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.clock.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "took", s.clock.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// draft returns a copy of the current controller. Handlers change the copy
// and hand it to commit, so a failed save leaves s.ctl untouched.
func (s *Server) draft() (*tourney.Controller, error) {
	return tourney.Restore(s.ctl.Snapshot(), s.controllerOpts()...)
}

// commit saves ctl and makes it current once the save succeeds. It is called
// with mu held after every transition.
func (s *Server) commit(ctx context.Context, ctl *tourney.Controller) error {
	if err := s.snaps.Save(ctx, ctl.Snapshot()); err != nil {
		s.logger.Error("Failed to save tournament", "error", err)
		return err
	}
	s.ctl = ctl
	return nil
}
