// Package config loads environment-based configuration for cardsync.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for cardsync.
type Config struct {
	// OwnerID identifies the signed-in owner whose cards and profile are
	// synced. Session establishment happens outside this binary.
	OwnerID string `env:"CARDSYNC_OWNER_ID"`

	// AccountEmail is the owner's account email, used as the fallback
	// when a profile record carries no email of its own.
	AccountEmail string `env:"CARDSYNC_ACCOUNT_EMAIL"`

	// RemoteURL is the base URL of the remote document store.
	RemoteURL string `env:"CARDSYNC_REMOTE_URL"`

	// RemoteAuth is the auth token appended to remote requests. May be
	// empty for emulators or unauthenticated stores.
	RemoteAuth string `env:"CARDSYNC_REMOTE_AUTH"`

	// DBPath is the SQLite database holding collected cards. Defaults to
	// ~/.cardsync/cards.db.
	DBPath string `env:"CARDSYNC_DB_PATH"`

	// StatePath is the profile cache database. Defaults to
	// ~/.cardsync/profile.db.
	StatePath string `env:"CARDSYNC_STATE_PATH"`

	// ProbeURL is the endpoint used to decide whether the network is
	// reachable before a sync run. Defaults to the remote store itself.
	ProbeURL string `env:"CARDSYNC_PROBE_URL"`

	// SyncInterval re-triggers a sync run on this period. Zero means run
	// once and exit.
	SyncInterval time.Duration `env:"CARDSYNC_SYNC_INTERVAL" envDefault:"0"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing the remote auth token to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills in the store paths under ~/.cardsync/ when not
// explicitly configured and resolves both to absolute paths, and points
// the connectivity probe at the remote store when no probe URL is set.
func (c *Config) applyDefaults() error {
	if c.DBPath == "" || c.StatePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("determining home directory: %w", err)
		}

		if c.DBPath == "" {
			c.DBPath = filepath.Join(home, ".cardsync", "cards.db")
		}

		if c.StatePath == "" {
			c.StatePath = filepath.Join(home, ".cardsync", "profile.db")
		}
	}

	var err error

	if c.DBPath, err = filepath.Abs(c.DBPath); err != nil {
		return fmt.Errorf("resolving db path to absolute path: %w", err)
	}

	if c.StatePath, err = filepath.Abs(c.StatePath); err != nil {
		return fmt.Errorf("resolving state path to absolute path: %w", err)
	}

	if c.ProbeURL == "" {
		c.ProbeURL = c.RemoteURL
	}

	return nil
}

func (c *Config) validate() error {
	if c.OwnerID == "" {
		return fmt.Errorf("CARDSYNC_OWNER_ID is required")
	}

	if c.RemoteURL == "" {
		return fmt.Errorf("CARDSYNC_REMOTE_URL is required")
	}

	if c.SyncInterval < 0 {
		return fmt.Errorf("CARDSYNC_SYNC_INTERVAL must not be negative")
	}

	return nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
