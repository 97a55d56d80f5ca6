package config

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("COURSEMATE_PROVIDER", "openai")
	t.Setenv("COURSEMATE_RETRIEVAL_LIMIT", "7")
	t.Setenv("COURSEMATE_SCORE_THRESHOLD", "0.6")
	t.Setenv("COURSEMATE_CACHE_TTL", "90s")

	if got := String("PROVIDER", "offline"); got != "openai" {
		t.Errorf("String() = %q, want %q", got, "openai")
	}
	if got := Int("RETRIEVAL_LIMIT", 5); got != 7 {
		t.Errorf("Int() = %d, want 7", got)
	}
	if got := Float("SCORE_THRESHOLD", 0.7); got != 0.6 {
		t.Errorf("Float() = %v, want 0.6", got)
	}
	if got := Duration("CACHE_TTL", 0); got != 90*time.Second {
		t.Errorf("Duration() = %v, want 90s", got)
	}
}

func TestEnvHelpersDefaults(t *testing.T) {
	t.Setenv("COURSEMATE_RETRIEVAL_LIMIT", "not-a-number")

	if got := String("MISSING", "fallback"); got != "fallback" {
		t.Errorf("String() = %q, want fallback", got)
	}
	if got := Int("RETRIEVAL_LIMIT", 5); got != 5 {
		t.Errorf("Int() on unparsable value = %d, want default 5", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	settings := Load()
	if settings.Provider == "" {
		t.Error("Load() returned empty provider, want offline default")
	}
}
