/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/clubtd/tourney"
)

type TdSubCommand string

const (
	TdAboutCmd      TdSubCommand = "about"
	TdHelpCmd       TdSubCommand = "help"
	TdStartCmd      TdSubCommand = "start"
	TdPairingsCmd   TdSubCommand = "pairings"
	TdReportCmd     TdSubCommand = "report"
	TdStandingsCmd  TdSubCommand = "standings"
	TdCrosstableCmd TdSubCommand = "crosstable"
)

func broadcastOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}
}

func tdCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        string(TdCmd),
		Description: "Tournament director commands; try /td help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdHelpCmd),
				Description: "Show usage for td",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdAboutCmd),
				Description: "Show information about clubtd",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdStartCmd),
				Description: "Start a tournament with the club roster (directors only)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "system",
						Description: "Pairing system",
						Required:    false,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Swiss", Value: "swiss"},
							{Name: "Knockout", Value: "knockout"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "tiebreak",
						Description: "Tie-break method",
						Required:    false,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Plain sum", Value: "plainsum"},
							{Name: "Buchholz", Value: "buchholz"},
							{Name: "Progress", Value: "progress"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "rounds",
						Description: "Number of rounds (default is computed from the field)",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdPairingsCmd),
				Description: "Show the current round's pairings",
				Options:     []*discordgo.ApplicationCommandOption{broadcastOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdReportCmd),
				Description: "Report a board result (directors only)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "board",
						Description: "Board number",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "result",
						Description: "Result such as 1-0, 0-1 or 1/2-1/2",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdStandingsCmd),
				Description: "Show current standings",
				Options:     []*discordgo.ApplicationCommandOption{broadcastOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdCrosstableCmd),
				Description: "Show the cross table",
				Options:     []*discordgo.ApplicationCommandOption{broadcastOption()},
			},
		},
	}
}

func (b *bot) subCmdHandler(name TdSubCommand) CmdHandler {
	switch name {
	case TdAboutCmd:
		return b.tdAboutCmdHandler
	case TdStartCmd:
		return b.tdStartCmdHandler
	case TdPairingsCmd:
		return b.tdPairingsCmdHandler
	case TdReportCmd:
		return b.tdReportCmdHandler
	case TdStandingsCmd:
		return b.tdStandingsCmdHandler
	case TdCrosstableCmd:
		return b.tdCrosstableCmdHandler
	}
	return b.tdHelpCmdHandler
}

func (b *bot) tdCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := b.tdHelpCmdHandler
	if len(data.Options) > 0 {
		hdlr = b.subCmdHandler(TdSubCommand(data.Options[0].Name))
	}
	return hdlr(ctx, inter)
}

// subOptions holds the options given to a /td subcommand.
type subOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsOf(inter *discordgo.Interaction) subOptions {
	opts := make(subOptions)
	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		return opts
	}
	for _, opt := range data.Options[0].Options {
		opts[opt.Name] = opt
	}
	return opts
}

func (o subOptions) str(name, def string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return def
}

func (o subOptions) integer(name string) (int64, bool) {
	if opt, ok := o[name]; ok {
		return opt.IntValue(), true
	}
	return 0, false
}

func (o subOptions) broadcast() bool {
	if opt, ok := o["broadcast"]; ok {
		return opt.BoolValue()
	}
	return false
}

func newResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

// codeBlock wraps output for monospace formatting in Discord.
func codeBlock(s string) string {
	return fmt.Sprintf("```\n%s```", truncateContent(s))
}

// isDirector reports whether the member invoking the command may change the
// tournament.
func isDirector(inter *discordgo.Interaction) bool {
	return inter.Member != nil &&
		inter.Member.Permissions&discordgo.PermissionManageServer != 0
}

//go:embed about.txt
var aboutText string

func (b *bot) tdAboutCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(aboutText)
	return resp
}

//go:embed help.md
var helpText string

func (b *bot) tdHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(helpText)
	return resp
}

func (b *bot) tdStartCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	if !isDirector(inter) {
		resp.Data.Content = "Only tournament directors can start a tournament."
		return resp
	}

	opts := optionsOf(inter)
	var cfg tourney.Config
	var err error
	if cfg.System, err = tourney.ParseSystem(opts.str("system", "")); err != nil {
		resp.Data.Content = err.Error()
		return resp
	}
	if cfg.TieBreak, err = tourney.ParseMethod(opts.str("tiebreak", "")); err != nil {
		resp.Data.Content = err.Error()
		return resp
	}
	if rounds, ok := opts.integer("rounds"); ok && rounds > 0 {
		cfg.Rounds = int(rounds)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ctl, err := b.controller(ctx)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error loading tournament: %v", err)
		b.logger.Error("Failed to load tournament", "error", err)
		return resp
	}
	if ctl.Phase() == tourney.PhaseAwaitingResults {
		resp.Data.Content = fmt.Sprintf("A tournament is already in round %v.",
			ctl.Round())
		return resp
	}

	players, err := b.roster.List(ctx)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error loading roster: %v", err)
		b.logger.Error("Failed to load roster", "error", err)
		return resp
	}
	ctl = tourney.NewController(cfg, tourney.WithLogger(b.logger))
	plan, err := ctl.Start(players)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Cannot start: %v", err)
		return resp
	}
	if err := b.snaps.Save(ctx, ctl.Snapshot()); err != nil {
		resp.Data.Content = fmt.Sprintf("Error saving tournament: %v", err)
		b.logger.Error("Failed to save tournament", "error", err)
		return resp
	}

	resp.Data.Content = codeBlock(fmt.Sprintf("%v players, %v rounds\n\n%v",
		len(ctl.Players()), ctl.TotalRounds(),
		tourney.BuildPairingsOutput(plan, nil)))
	resp.Data.Flags = 0
	return resp
}

func (b *bot) tdPairingsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	b.mu.Lock()
	defer b.mu.Unlock()

	ctl, err := b.controller(ctx)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error loading tournament: %v", err)
		return resp
	}
	plan, err := ctl.Pairings()
	if err != nil {
		resp.Data.Content = "No pairings posted."
		return resp
	}
	resp.Data.Content = codeBlock(tourney.BuildPairingsOutput(plan,
		ctl.Scores()))
	if optionsOf(inter).broadcast() {
		resp.Data.Flags = 0
	}
	return resp
}

// tdReportCmdHandler records a board and, once every board is in, submits
// the round.
func (b *bot) tdReportCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	if !isDirector(inter) {
		resp.Data.Content = "Only tournament directors can report results."
		return resp
	}
	opts := optionsOf(inter)
	board, ok := opts.integer("board")
	if !ok {
		resp.Data.Content = "Please provide a board number."
		return resp
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ctl, err := b.controller(ctx)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error loading tournament: %v", err)
		return resp
	}
	first, second, err := tourney.ParseResultCode(opts.str("result", ""),
		ctl.Config().Scoring)
	if err == nil {
		err = ctl.Report(int(board), first, second)
	}
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Cannot record board %v: %v", board, err)
		return resp
	}

	round := ctl.Round()
	missing := ctl.Outstanding()
	if len(missing) == 0 {
		if _, err := ctl.SubmitSheet(); err != nil {
			resp.Data.Content = fmt.Sprintf("Cannot submit round %v: %v", round,
				err)
			return resp
		}
	}
	if err := b.snaps.Save(ctx, ctl.Snapshot()); err != nil {
		resp.Data.Content = fmt.Sprintf("Error saving tournament: %v", err)
		b.logger.Error("Failed to save tournament", "error", err)
		return resp
	}

	switch {
	case len(missing) > 0:
		resp.Data.Content = fmt.Sprintf("Board %v recorded; awaiting boards %v.",
			board, missing)
	case ctl.Phase() == tourney.PhaseFinished:
		standings, err := ctl.FinalStandings()
		if err != nil {
			resp.Data.Content = err.Error()
			return resp
		}
		resp.Data.Content = codeBlock(tourney.BuildStandingsOutput(standings,
			ctl.Config().TieBreak, "Final standings:"))
		resp.Data.Flags = 0
	default:
		plan, err := ctl.Pairings()
		if err != nil {
			resp.Data.Content = err.Error()
			return resp
		}
		resp.Data.Content = codeBlock(fmt.Sprintf("Round %v recorded.\n\n%v",
			round, tourney.BuildPairingsOutput(plan, ctl.Scores())))
		resp.Data.Flags = 0
	}
	return resp
}

func (b *bot) tdStandingsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	b.mu.Lock()
	defer b.mu.Unlock()

	ctl, err := b.controller(ctx)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error loading tournament: %v", err)
		return resp
	}
	standings, err := ctl.Standings()
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error ranking players: %v", err)
		return resp
	}
	heading := fmt.Sprintf("Standings after round %v:", ctl.RoundsRecorded())
	if ctl.Phase() == tourney.PhaseFinished {
		heading = "Final standings:"
	}
	resp.Data.Content = codeBlock(tourney.BuildStandingsOutput(standings,
		ctl.Config().TieBreak, heading))
	if optionsOf(inter).broadcast() {
		resp.Data.Flags = 0
	}
	return resp
}

func (b *bot) tdCrosstableCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	b.mu.Lock()
	defer b.mu.Unlock()

	ctl, err := b.controller(ctx)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error loading tournament: %v", err)
		return resp
	}
	standings, err := ctl.Standings()
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error ranking players: %v", err)
		return resp
	}
	resp.Data.Content = codeBlock(tourney.BuildCrossTableOutput(standings,
		ctl.History()))
	if optionsOf(inter).broadcast() {
		resp.Data.Flags = 0
	}
	return resp
}

// https://discord.com/developers/docs/resources/channel#start-thread-in-forum-or-media-channel-forum-and-media-thread-message-params-object
// limits messages to 2k characters
func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
