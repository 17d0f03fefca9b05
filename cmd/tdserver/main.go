/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mikeb26/clubtd/config"
	"github.com/mikeb26/clubtd/internal"
	"github.com/mikeb26/clubtd/roster"
	"github.com/mikeb26/clubtd/s3store"
	"github.com/mikeb26/clubtd/server"
	"github.com/mikeb26/clubtd/snapshot"
)

func main() {
	cfg, err := config.ServerFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdserver: %v\n", err)
		os.Exit(1)
	}
	logger, err := internal.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdserver: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", "error", err)
	}
}

// stores picks the roster and snapshot backends: Postgres for the roster
// when DATABASE_URL is set, S3 when TD_STATE_BUCKET is set, files otherwise.
func stores(ctx context.Context, cfg *config.Server,
	logger *log.Logger) (roster.Store, snapshot.Store, func(), error) {

	cleanup := func() {}
	var bucket *s3store.Bucket
	if cfg.StateBucket != "" {
		bucket = s3store.New(cfg.StateBucket, s3store.WithGzip(),
			s3store.WithLogger(logger))
		if err := bucket.Init(ctx); err != nil {
			return nil, nil, cleanup, err
		}
	}

	var snaps snapshot.Store
	if bucket != nil {
		snaps = snapshot.NewS3Store(bucket, "tournament.json")
	} else {
		snaps = snapshot.NewFileStore(filepath.Join(cfg.DataDir,
			"tournament.json"))
	}

	switch {
	case cfg.DatabaseURL != "":
		db, err := roster.Connect(cfg.DatabaseURL, 10*time.Second)
		if err != nil {
			return nil, nil, cleanup, err
		}
		cleanup = func() { db.Close() }
		pg := roster.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, nil, cleanup, err
		}
		logger.Info("Roster in Postgres")
		return pg, snaps, cleanup, nil
	case bucket != nil:
		logger.Info("Roster in S3", "bucket", bucket.Name())
		return roster.NewS3Store(bucket, "roster.json"), snaps, cleanup, nil
	}
	logger.Info("Roster on disk", "dir", cfg.DataDir)
	return roster.NewFileStore(filepath.Join(cfg.DataDir, "roster.json")),
		snaps, cleanup, nil
}

func run(ctx context.Context, cfg *config.Server, logger *log.Logger) error {
	players, snaps, cleanup, err := stores(ctx, cfg, logger)
	defer cleanup()
	if err != nil {
		return err
	}

	srv, err := server.New(ctx, players, snaps, server.WithLogger(logger))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
