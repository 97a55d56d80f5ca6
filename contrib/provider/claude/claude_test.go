package claude

import "testing"

func TestNewRejectsMissingCredentials(t *testing.T) {
	if _, err := New(DefaultConfig("", "")); err == nil {
		t.Error("New() accepted config without an API key")
	}
}
