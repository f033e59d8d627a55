package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backend identifiers accepted by STORE_BACKEND.
const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
	StoreBackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	LogLevel  string
	LogFormat string

	// StoreBackend selects the persistent key-value store implementation.
	StoreBackend string
	RedisURL     string
	SQLitePath   string

	// GracePeriod is how long the app may stay backgrounded before the
	// transition counts as a suspicious event.
	GracePeriod time.Duration

	// PenaltyThresholdSec is the per-question time budget; every full
	// multiple spent beyond it costs 10% of the question's points.
	PenaltyThresholdSec int

	// PassThreshold is the minimum percentage for a passing test score.
	PassThreshold float64
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "pretty"),
		StoreBackend:        getEnv("STORE_BACKEND", StoreBackendSQLite),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SQLitePath:          getEnv("SQLITE_PATH", "./exstem-mobile.db"),
		GracePeriod:         time.Duration(getEnvInt("GRACE_PERIOD_SECONDS", 5)) * time.Second,
		PenaltyThresholdSec: getEnvInt("PENALTY_THRESHOLD_SECONDS", 300),
		PassThreshold:       getEnvFloat("PASS_THRESHOLD", 60),
	}
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

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
