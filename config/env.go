package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variable prefix shared by all settings. Logging reads its own
// COURSEMATE_LOG_* variables directly in pkg/logging.
const envPrefix = "COURSEMATE_"

// Settings carries deployment configuration sourced from the environment.
// Zero values fall back to the documented defaults at the point of use.
type Settings struct {
	Provider string // openai, claude, gemini, offline
	APIKey   string
	Model    string

	ScoreThreshold float64
	RetrievalLimit int

	CacheTTL time.Duration

	RateLimitPerMinute int
	MaxQuestionLength  int
}

// Load reads Settings from the environment.
func Load() Settings {
	return Settings{
		Provider:           String("PROVIDER", "offline"),
		APIKey:             String("API_KEY", ""),
		Model:              String("MODEL", ""),
		ScoreThreshold:     Float("SCORE_THRESHOLD", 0),
		RetrievalLimit:     Int("RETRIEVAL_LIMIT", 0),
		CacheTTL:           Duration("CACHE_TTL", 0),
		RateLimitPerMinute: Int("RATE_LIMIT_PER_MINUTE", 0),
		MaxQuestionLength:  Int("MAX_QUESTION_LENGTH", 0),
	}
}

// String reads a prefixed environment variable, falling back to def.
func String(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

// Int reads a prefixed integer environment variable, falling back to def on
// absence or parse failure.
func Int(key string, def int) int {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Float reads a prefixed float environment variable.
func Float(key string, def float64) float64 {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Duration reads a prefixed duration environment variable ("30s", "5m").
func Duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
