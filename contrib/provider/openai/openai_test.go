package openai

import "testing"

func TestNewRejectsMissingCredentials(t *testing.T) {
	if _, err := New(DefaultConfig()); err == nil {
		t.Error("New() accepted config without an API key")
	}
}

func TestNewAppliesModelDefault(t *testing.T) {
	p, err := New(&Config{APIKey: "sk-test", MaxTokens: 100, Temperature: 0.2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.config.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want default", p.config.Model)
	}
}
