/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"strconv"

	"github.com/mikeb26/clubtd/bcc"
	"github.com/mikeb26/clubtd/roster"
	"github.com/mikeb26/clubtd/tourney"
	"github.com/mikeb26/clubtd/uschess"
)

type PlayerCmd struct {
	Add     PlayerAddCmd     `cmd:"" help:"Register a player"`
	List    PlayerListCmd    `cmd:"" help:"List registered players"`
	Rm      PlayerRmCmd      `cmd:"" help:"Remove a player"`
	Import  PlayerImportCmd  `cmd:"" help:"Register the entries of a club event"`
	Refresh PlayerRefreshCmd `cmd:"" help:"Refresh ratings from US Chess"`
}

type PlayerAddCmd struct {
	Name   string `arg:"" help:"Display name"`
	Rating int    `help:"Rating; 0 for unrated"`
	UscfID int    `name:"uscf-id" help:"US Chess member ID"`
	ID     string `help:"Player ID; generated when empty"`
}

func (c *PlayerAddCmd) Run(g *Globals) error {
	store, err := g.roster()
	if err != nil {
		return err
	}
	p := tourney.NewPlayer(c.ID, c.Name, c.Rating)
	p.UscfID = c.UscfID
	p, err = store.Create(g.ctx, p)
	if err != nil {
		return err
	}
	g.printf("Registered %v (%v)\n", p.Name, p.ID)
	return nil
}

type PlayerListCmd struct{}

func (c *PlayerListCmd) Run(g *Globals) error {
	store, err := g.roster()
	if err != nil {
		return err
	}
	players, err := store.List(g.ctx)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		g.printf("No players registered\n")
		return nil
	}
	for _, p := range players {
		rating := "unrated"
		if p.Rating != nil {
			rating = strconv.Itoa(*p.Rating)
		}
		g.printf("%-36s  %-24s  %v\n", p.ID, p.Name, rating)
	}
	return nil
}

type PlayerRmCmd struct {
	ID string `arg:"" help:"Player ID"`
}

func (c *PlayerRmCmd) Run(g *Globals) error {
	store, err := g.roster()
	if err != nil {
		return err
	}
	if err := store.Delete(g.ctx, c.ID); err != nil {
		return err
	}
	g.printf("Removed %v\n", c.ID)
	return nil
}

type PlayerImportCmd struct {
	EventID int64  `arg:"" name:"event-id" help:"Club event ID"`
	Section string `help:"Only import entries in this section"`
}

func (c *PlayerImportCmd) Run(g *Globals) error {
	store, err := g.roster()
	if err != nil {
		return err
	}
	client := bcc.NewClient(g.ctx, g.Bucket, bcc.WithLogger(g.logger))
	entries, source, err := client.GetEntries(g.ctx, c.EventID)
	if err != nil {
		return err
	}
	added, err := roster.ImportEntries(g.ctx, store, entries, c.Section)
	if err != nil {
		return err
	}
	g.printf("Imported %v of %v entries (source: %v)\n", len(added),
		len(entries), source)
	return nil
}

type PlayerRefreshCmd struct{}

func (c *PlayerRefreshCmd) Run(g *Globals) error {
	store, err := g.roster()
	if err != nil {
		return err
	}
	client := uschess.NewClient(g.ctx, g.Bucket, uschess.WithLogger(g.logger))
	n, err := roster.RefreshRatings(g.ctx, store, client, g.logger)
	if err != nil {
		return err
	}
	g.printf("Updated %v ratings\n", n)
	return nil
}
