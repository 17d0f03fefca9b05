/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mikeb26/clubtd/tourney"
)

// TournamentFile is the HCL layout of a tournament definition:
//
//	tournament {
//	  system   = "swiss"
//	  tiebreak = "progress"
//	}
//	player "Alice Smith" {
//	  rating  = 1500
//	  uscf_id = 12345678
//	}
type TournamentFile struct {
	Tournament *TournamentSettings `hcl:"tournament,block"`
	Players    []PlayerConfig      `hcl:"player,block"`
}

type TournamentSettings struct {
	System   string `hcl:"system,optional"`
	TieBreak string `hcl:"tiebreak,optional"`
	Scoring  string `hcl:"scoring,optional"`
	Rounds   int    `hcl:"rounds,optional"`
}

type PlayerConfig struct {
	Name   string `hcl:"name,label"`
	ID     string `hcl:"id,optional"`
	Rating int    `hcl:"rating,optional"`
	UscfID int    `hcl:"uscf_id,optional"`
}

// Tournament is a decoded and validated tournament file.
type Tournament struct {
	Config  tourney.Config
	Players []tourney.Player
}

// LoadTournamentFile loads a tournament definition from an HCL file.
func LoadTournamentFile(filename string) (*Tournament, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tournament file: %w", err)
	}
	return ParseTournament(src, filename)
}

func ParseTournament(src []byte, filename string) (*Tournament, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var tf TournamentFile
	diags = gohcl.DecodeBody(file.Body, nil, &tf)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	return tf.Resolve()
}

// Resolve validates settings and turns player blocks into players. Missing
// settings default to a Swiss tournament ranked by plain sum.
func (tf *TournamentFile) Resolve() (*Tournament, error) {
	settings := TournamentSettings{}
	if tf.Tournament != nil {
		settings = *tf.Tournament
	}

	var t Tournament
	var err error
	if t.Config.System, err = tourney.ParseSystem(settings.System); err != nil {
		return nil, err
	}
	if t.Config.TieBreak, err = tourney.ParseMethod(settings.TieBreak); err != nil {
		return nil, err
	}
	if t.Config.Scoring, err = tourney.ParseScoring(settings.Scoring); err != nil {
		return nil, err
	}
	if settings.Rounds < 0 {
		return nil, fmt.Errorf("rounds must not be negative, got %d",
			settings.Rounds)
	}
	t.Config.Rounds = settings.Rounds

	seen := make(map[string]bool)
	for _, pc := range tf.Players {
		name := strings.TrimSpace(pc.Name)
		if name == "" {
			return nil, fmt.Errorf("player with empty name")
		}
		id := pc.ID
		if id == "" {
			id = Slug(name)
		}
		if seen[id] || id == tourney.ByeID {
			return nil, fmt.Errorf("%w: %v", tourney.ErrDuplicatePlayer, id)
		}
		seen[id] = true

		p := tourney.NewPlayer(id, name, pc.Rating)
		p.UscfID = pc.UscfID
		t.Players = append(t.Players, p)
	}

	return &t, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a display name into a stable player ID: "Alice  Smith" becomes
// "alice-smith".
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"),
		"-")
}
