package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings, read from the environment and an
// optional .env file.
type Config struct {
	Port            int           `env:"PORT" envDefault:"3012"`
	SignalingURL    string        `env:"SIGNALING_URL"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile         string        `env:"LOG_FILE"`
	BoardRadius     int           `env:"BOARD_RADIUS" envDefault:"5"`
	OutboxSize      int           `env:"OUTBOX_SIZE" envDefault:"256"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// HandshakeTimeout bounds the wait for Initialize and the lobby choice.
	// Zero disables it.
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT" envDefault:"60s"`
}

// Load reads .env files (missing ones are fine) and parses the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.BoardRadius < 2 {
		return fmt.Errorf("BOARD_RADIUS must be at least 2, got %d", c.BoardRadius)
	}
	if c.OutboxSize < 1 {
		return fmt.Errorf("OUTBOX_SIZE must be positive, got %d", c.OutboxSize)
	}
	if c.HandshakeTimeout < 0 {
		return fmt.Errorf("HANDSHAKE_TIMEOUT must not be negative")
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
