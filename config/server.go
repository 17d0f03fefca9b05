/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Server holds settings for the long-running surfaces (HTTP server and
// Discord bot).
type Server struct {
	ListenAddr  string
	LogLevel    string
	StateBucket string
	DatabaseURL string
	DataDir     string

	DiscordToken     string
	DiscordPublicKey string
	DiscordAppID     string
}

// ServerFromEnv reads settings from the environment after loading any .env
// files given (or ./.env when none are). Missing .env files are not an
// error.
func ServerFromEnv(envFiles ...string) (*Server, error) {
	_ = godotenv.Load(envFiles...)

	cfg := &Server{
		ListenAddr:       getenv("TD_LISTEN_ADDR", ":8080"),
		LogLevel:         getenv("TD_LOG_LEVEL", "info"),
		StateBucket:      os.Getenv("TD_STATE_BUCKET"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DataDir:          getenv("TD_DATA_DIR", "."),
		DiscordToken:     os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordPublicKey: os.Getenv("DISCORD_PUBLIC_KEY"),
		DiscordAppID:     os.Getenv("DISCORD_APP_ID"),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid TD_LOG_LEVEL %q", cfg.LogLevel)
	}

	return cfg, nil
}

// RequireDiscord reports an error naming the first missing Discord setting.
func (s *Server) RequireDiscord() error {
	if s.DiscordToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN environment variable is not set")
	}
	if s.DiscordPublicKey == "" {
		return fmt.Errorf("DISCORD_PUBLIC_KEY environment variable is not set")
	}
	if s.DiscordAppID == "" {
		return fmt.Errorf("DISCORD_APP_ID environment variable is not set")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
