/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikeb26/clubtd/config"
	"github.com/mikeb26/clubtd/internal"
	"github.com/mikeb26/clubtd/roster"
	"github.com/mikeb26/clubtd/s3store"
	"github.com/mikeb26/clubtd/snapshot"
	"github.com/mikeb26/clubtd/tourney"

	_ "embed"
)

type TopLevelCommand string

const TdCmd TopLevelCommand = "td"

type CmdHandler func(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse

// bot answers slash command interactions for one club tournament. All
// commands share one controller guarded by mu.
type bot struct {
	mu      sync.Mutex
	session *discordgo.Session
	pubKey  ed25519.PublicKey
	appID   string
	roster  roster.Store
	snaps   snapshot.Store
	logger  *log.Logger
}

func (b *bot) interactionHandler(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, b.pubKey) {
		b.logger.Warn("Failed to verify interaction")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		b.logger.Error("Failed to read request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		b.logger.Error("Failed to unmarshal interaction", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp, ok := b.dispatch(r.Context(), &inter)
	if !ok {
		b.logger.Warn("Unimplemented interaction type", "type", inter.Type)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		b.logger.Error("Failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(rawResp); err != nil {
		b.logger.Error("Failed to write response", "error", err)
	}
}

func (b *bot) dispatch(ctx context.Context,
	inter *discordgo.Interaction) (*discordgo.InteractionResponse, bool) {

	switch inter.Type {
	case discordgo.InteractionPing:
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponsePong,
		}, true
	case discordgo.InteractionApplicationCommand:
	default:
		return nil, false
	}

	name := inter.ApplicationCommandData().Name
	if TopLevelCommand(name) != TdCmd {
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'", name),
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, true
	}
	return b.tdCmdHandler(ctx, inter), true
}

//go:embed lastupdate.hash
var lastCmdUpdateHash string

func (b *bot) shouldUpdateCmdRegistration(cmd *discordgo.ApplicationCommand) bool {
	cmdJson, err := json.Marshal(cmd)
	if err != nil {
		b.logger.Error("Failed to marshal command", "error", err)
		return false
	}
	hasher := sha256.New()
	hasher.Write(cmdJson)
	hexString := hex.EncodeToString(hasher.Sum(nil))

	shouldUpdate := (hexString != lastCmdUpdateHash)
	if shouldUpdate {
		b.logger.Info("Updating command registration; please update lastupdate.hash",
			"hash", hexString)
	}

	return shouldUpdate
}

// registerSlashCommands creates or overwrites the /td command when its
// definition changed since lastupdate.hash was written.
func (b *bot) registerSlashCommands() {
	tdCmd := tdCommand()
	if !b.shouldUpdateCmdRegistration(tdCmd) {
		return
	}
	cmd, err := b.session.ApplicationCommandCreate(b.appID, "", tdCmd)
	if err != nil {
		b.logger.Error("Failed to register command", "command", tdCmd.Name,
			"error", err)
		return
	}
	b.logger.Info("Registered command", "command", cmd.Name, "id", cmd.ID)
}

func (b *bot) controller(ctx context.Context) (*tourney.Controller, error) {
	return snapshot.Resume(ctx, b.snaps, tourney.Config{},
		tourney.WithLogger(b.logger))
}

func newBot(ctx context.Context, cfg *config.Server,
	logger *log.Logger) (*bot, error) {

	pubKeyBytes, err := hex.DecodeString(cfg.DiscordPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DISCORD_PUBLIC_KEY: %w", err)
	}
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize discord client: %w", err)
	}

	b := &bot{
		session: session,
		pubKey:  ed25519.PublicKey(pubKeyBytes),
		appID:   cfg.DiscordAppID,
		logger:  logger.WithPrefix("discordbot"),
	}
	if cfg.StateBucket == "" {
		b.roster = roster.NewFileStore(filepath.Join(cfg.DataDir, "roster.json"))
		b.snaps = snapshot.NewFileStore(filepath.Join(cfg.DataDir,
			"tournament.json"))
		return b, nil
	}

	bucket := s3store.New(cfg.StateBucket, s3store.WithGzip(),
		s3store.WithLogger(logger))
	if err := bucket.Init(ctx); err != nil {
		return nil, err
	}
	b.roster = roster.NewS3Store(bucket, "roster.json")
	b.snaps = snapshot.NewS3Store(bucket, "tournament.json")
	return b, nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.ServerFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "discordbot: %v\n", err)
		os.Exit(1)
	}
	logger, err := internal.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "discordbot: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.RequireDiscord(); err != nil {
		logger.Fatal("Missing configuration", "error", err)
	}

	b, err := newBot(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to start", "error", err)
	}
	go b.registerSlashCommands()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/DiscordBot/Interaction", b.interactionHandler)

	b.logger.Info("Starting server", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		b.logger.Fatal("Serve failed", "error", err)
	}
}
