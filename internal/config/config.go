package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/studypals/studypals/internal/logger"
)

type Config struct {
	Addr                 string
	DBPath               string
	LogLevel             string
	Timezone             string
	RecomputeWorkerCount int
	RecomputeQueueSize   int
	RecentScoreWindow    int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DBPath:               envOr("DB_PATH", "file:studypals.db"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		Timezone:             envOr("TIMEZONE", "Local"),
		RecomputeWorkerCount: envIntOr("RECOMPUTE_WORKER_COUNT", 2),
		RecomputeQueueSize:   envIntOr("RECOMPUTE_QUEUE_SIZE", 64),
		RecentScoreWindow:    envIntOr("RECENT_SCORE_WINDOW", 5),
	}
}

// Validate reports every invalid setting in a single error.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE %q: %v", c.Timezone, err))
	}
	if c.RecomputeWorkerCount < 1 {
		problems = append(problems, "RECOMPUTE_WORKER_COUNT must be at least 1")
	}
	if c.RecomputeQueueSize < 1 {
		problems = append(problems, "RECOMPUTE_QUEUE_SIZE must be at least 1")
	}
	if c.RecentScoreWindow < 1 || c.RecentScoreWindow > 50 {
		problems = append(problems, "RECENT_SCORE_WINDOW must be between 1 and 50")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// Location resolves Timezone; calendar days and weeks are bucketed in it.
func (c Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
