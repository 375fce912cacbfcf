// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port     int
	Env      string // "development" or "production"
	LogLevel string

	// Velocity detection. The breakpoint table is fixed contract; the window
	// and breach count are deployment tunables, never hidden constants.
	WindowMinutes int // sliding window duration
	BreachCount   int // window size at which the scorer is consulted

	// Seed data loaded at startup (reputation registry + threat samples).
	SeedFile string
}

// Defaults.
const (
	DefaultPort          = 8080
	DefaultEnv           = "development"
	DefaultLogLevel      = "info"
	DefaultWindowMinutes = 15
	DefaultBreachCount   = 3
	DefaultSeedFile      = "data/seed.json"
)

// Load reads configuration from environment variables.
// It loads a .env file if present (for local development).
func Load() (*Config, error) {
	// Ignore the error: a missing .env file is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnvInt("PORT", DefaultPort),
		Env:           getEnv("ENV", DefaultEnv),
		LogLevel:      getEnv("LOG_LEVEL", DefaultLogLevel),
		WindowMinutes: getEnvInt("VELOCITY_WINDOW_MINUTES", DefaultWindowMinutes),
		BreachCount:   getEnvInt("VELOCITY_BREACH_COUNT", DefaultBreachCount),
		SeedFile:      getEnv("SEED_FILE", DefaultSeedFile),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.WindowMinutes < 1 {
		return fmt.Errorf("VELOCITY_WINDOW_MINUTES must be at least 1, got %d", c.WindowMinutes)
	}
	if c.BreachCount < 1 {
		return fmt.Errorf("VELOCITY_BREACH_COUNT must be at least 1, got %d", c.BreachCount)
	}
	return nil
}

// Window returns the velocity window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
