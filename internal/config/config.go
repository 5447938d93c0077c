// Package config loads the bot configuration from the environment, reading a
// .env file first when there is one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	// Discord
	DiscordToken  string
	CommandPrefix string

	// Riot API
	RiotAPIKey    string
	RiotTFTAPIKey string

	// Database
	DatabaseDriver string // sqlite3, postgres or memory
	DatabaseURL    string
	RetentionDays  int

	// Scheduling
	PollInterval         time.Duration
	HousekeepingInterval time.Duration

	// Rate limiting, shared by every call to the Riot API
	RateLimitMinSpacing    time.Duration
	RateLimitRequests      int
	RateLimitWindow        time.Duration
	RateLimitBurstRequests int
	RateLimitBurstWindow   time.Duration

	// Logging
	LogLevel  zerolog.Level
	LogPretty bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(strings.ToLower(envOr("LOG_LEVEL", "info")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	riotKey := os.Getenv("RIOT_API_KEY")
	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		CommandPrefix: envOr("COMMAND_PREFIX", "lpwatch"),

		RiotAPIKey:    riotKey,
		RiotTFTAPIKey: envOr("RIOT_TFT_API_KEY", riotKey),

		DatabaseDriver: envOr("DATABASE_DRIVER", "sqlite3"),
		DatabaseURL:    envOr("DATABASE_URL", "./data/lpwatch.db"),
		RetentionDays:  envInt("RETENTION_DAYS", 400),

		PollInterval:         envDuration("POLL_INTERVAL", 2*time.Minute),
		HousekeepingInterval: envDuration("HOUSEKEEPING_INTERVAL", 6*time.Hour),

		RateLimitMinSpacing:    envDuration("RATE_LIMIT_MIN_SPACING", 50*time.Millisecond),
		RateLimitRequests:      envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:        envDuration("RATE_LIMIT_WINDOW", 2*time.Minute),
		RateLimitBurstRequests: envInt("RATE_LIMIT_BURST_REQUESTS", 20),
		RateLimitBurstWindow:   envDuration("RATE_LIMIT_BURST_WINDOW", time.Second),

		LogLevel:  level,
		LogPretty: envBool("LOG_PRETTY", false),
	}

	switch cfg.DatabaseDriver {
	case "sqlite3", "postgres", "memory":
	default:
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive")
	}

	return cfg, nil
}

// Check the secrets needed to talk to Discord and Riot
func (c *Config) RequireCredentials() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.RiotAPIKey == "" {
		return fmt.Errorf("RIOT_API_KEY is required")
	}
	return nil
}

// Games older than this are purged
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Env helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
