/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/mikeb26/clubtd/internal"
	"github.com/mikeb26/clubtd/roster"
	"github.com/mikeb26/clubtd/s3store"
	"github.com/mikeb26/clubtd/snapshot"
	"github.com/mikeb26/clubtd/tourney"
)

const (
	rosterKey   = "roster.json"
	snapshotKey = "tournament.json"
)

// Globals are the flags shared by every command.
type Globals struct {
	DataDir  string `default:"." env:"TD_DATA_DIR" type:"path" help:"Directory holding roster and tournament files"`
	Bucket   string `env:"TD_STATE_BUCKET" help:"Keep roster and tournament in this S3 bucket instead of --data-dir"`
	LogLevel string `default:"warn" enum:"debug,info,warn,error" help:"Log level"`

	ctx    context.Context `kong:"-"`
	out    io.Writer       `kong:"-"`
	logger *log.Logger     `kong:"-"`
	bucket *s3store.Bucket `kong:"-"`
}

type CLI struct {
	Globals

	Player     PlayerCmd     `cmd:"" help:"Manage the club roster"`
	Start      StartCmd      `cmd:"" help:"Start a tournament and pair round 1"`
	Pairings   PairingsCmd   `cmd:"" help:"Show the current round's pairings"`
	Report     ReportCmd     `cmd:"" help:"Report the result of one board"`
	Submit     SubmitCmd     `cmd:"" help:"Submit the round once every board is reported"`
	Standings  StandingsCmd  `cmd:"" help:"Show standings"`
	Crosstable CrosstableCmd `cmd:"" help:"Show the cross table"`
	Reset      ResetCmd      `cmd:"" help:"Discard the current tournament"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("clubtd"),
		kong.Description("Club tournament director: pairings, results and standings"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := run(kctx, &cli.Globals, os.Stdout)
	kctx.FatalIfErrorf(err)
}

func run(kctx *kong.Context, g *Globals, out io.Writer) error {
	logger, err := internal.NewLogger(os.Stderr, g.LogLevel)
	if err != nil {
		return err
	}
	g.ctx = context.Background()
	g.out = out
	g.logger = logger
	return kctx.Run(g)
}

func (g *Globals) s3Bucket() (*s3store.Bucket, error) {
	if g.bucket != nil {
		return g.bucket, nil
	}
	b := s3store.New(g.Bucket, s3store.WithGzip(),
		s3store.WithLogger(g.logger))
	if err := b.Init(g.ctx); err != nil {
		return nil, err
	}
	g.bucket = b
	return b, nil
}

func (g *Globals) roster() (roster.Store, error) {
	if g.Bucket == "" {
		return roster.NewFileStore(filepath.Join(g.DataDir, rosterKey)), nil
	}
	b, err := g.s3Bucket()
	if err != nil {
		return nil, err
	}
	return roster.NewS3Store(b, rosterKey), nil
}

func (g *Globals) snapshots() (snapshot.Store, error) {
	if g.Bucket == "" {
		return snapshot.NewFileStore(filepath.Join(g.DataDir, snapshotKey)),
			nil
	}
	b, err := g.s3Bucket()
	if err != nil {
		return nil, err
	}
	return snapshot.NewS3Store(b, snapshotKey), nil
}

func (g *Globals) controllerOpts() []tourney.Option {
	return []tourney.Option{tourney.WithLogger(g.logger)}
}

// load resumes the saved tournament.
func (g *Globals) load() (*tourney.Controller, snapshot.Store, error) {
	snaps, err := g.snapshots()
	if err != nil {
		return nil, nil, err
	}
	ctl, err := snapshot.Resume(g.ctx, snaps, tourney.Config{},
		g.controllerOpts()...)
	if err != nil {
		return nil, nil, err
	}
	return ctl, snaps, nil
}

// errNoTournament is returned by commands that need a tournament in progress.
var errNoTournament = errors.New("no tournament in progress; run 'clubtd start'")

func (g *Globals) printf(format string, args ...any) {
	fmt.Fprintf(g.out, format, args...)
}
