// Package config loads process-wide settings for cmd/server from the
// environment, falling back to a .env file if one is present. There is no
// reflection-based config struct here — every setting is a plain env var
// read once at startup, matching the minimal-config style of the pack
// (none of the retrieved repos reach for viper/koanf).
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every tunable the matching core and its HTTP adapter need.
type Config struct {
	ListenAddr           string
	Workers              int
	TaskQueueDepth       int
	SubscriberQueueDepth int
	RateLimitPerSecond   float64
	RateLimitBurst       int
}

// Load reads a .env file if present (missing is not an error) and then
// populates Config from the environment, applying defaults for anything
// unset.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	return Config{
		ListenAddr:           getString("NEXUSBOOK_LISTEN_ADDR", ":8080"),
		Workers:              getInt("NEXUSBOOK_WORKERS", 8),
		TaskQueueDepth:       getInt("NEXUSBOOK_TASK_QUEUE_DEPTH", 1024),
		SubscriberQueueDepth: getInt("NEXUSBOOK_SUBSCRIBER_QUEUE_DEPTH", 256),
		RateLimitPerSecond:   getFloat("NEXUSBOOK_RATE_LIMIT_PER_SECOND", 500),
		RateLimitBurst:       getInt("NEXUSBOOK_RATE_LIMIT_BURST", 100),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid int env var, using default")
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid float env var, using default")
		return fallback
	}
	return f
}
