// Package config loads runtime configuration from the environment into a
// typed struct. CLI flags on the binaries override individual fields.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/zedmor/mafia-token-engine/internal/game"
)

// Config holds all runtime settings for the engine binaries.
type Config struct {
	// TCP address of the framed turn-arbitration transport.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8765"`
	// HTTP address for healthz, metrics and the spectator feed.
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Seed selects the role arrangement (0..2519).
	Seed int `env:"GAME_SEED" envDefault:"0"`
	// RandomSeed drives built-in agent action selection for replays.
	RandomSeed int64 `env:"RANDOM_SEED" envDefault:"42"`

	// LogDir is the root for training artifacts; empty disables them.
	LogDir string `env:"LOG_DIR"`

	TraceStdout bool `env:"TRACE_STDOUT" envDefault:"false"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks config sanity.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if c.Seed < 0 || c.Seed >= game.NumArrangements {
		return fmt.Errorf("GAME_SEED must be in [0, %d), got %d", game.NumArrangements, c.Seed)
	}
	return nil
}
