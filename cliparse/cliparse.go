// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backing store types
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Port               int
	StoreType          string
	DatabaseURL        string
	RedisURL           string
	KafkaBrokers       []string
	KafkaTopic         string
	WebhookSecret      string
	RateLimitPerMinute int
	LogLevel           slog.Level
}

// LoadEnvFile seeds the environment from a .env file. Variables already set
// win over the file. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags reads flags, falling back to environment variables and defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var logLevel string

	fset := flag.NewFlagSet("secret-ballot", flag.ContinueOnError)

	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.StoreType, "s", "", "Backing store (memory, sqlite, postgres or redis)")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL for sqlite or postgres")
	fset.StringVar(&cfg.RedisURL, "r", "", "Redis URL")
	fset.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.StoreType == "" {
		cfg.StoreType = envOr("STORE_TYPE", StoreMemory)
	}
	cfg.StoreType = strings.ToLower(cfg.StoreType)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	switch cfg.StoreType {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, errors.New("redis URL required (use -r or REDIS_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	cfg.KafkaTopic = envOr("KAFKA_TOPIC", "poll-events")
	cfg.WebhookSecret = os.Getenv("WEBHOOK_SECRET")

	limit, err := envInt("RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return Config{}, err
	}
	if limit < 0 {
		return Config{}, errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	cfg.RateLimitPerMinute = limit

	if logLevel == "" {
		logLevel = envOr("LOG_LEVEL", "info")
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", logLevel)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
