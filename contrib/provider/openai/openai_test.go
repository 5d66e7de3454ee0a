package openai

import (
	"strings"
	"testing"
)

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(DefaultConfig()); err == nil {
		t.Error("Expected error for missing API key")
	}

	p, err := New(DefaultConfig().WithAPIKey("sk-test"))
	if err != nil {
		t.Fatalf("New() with valid config failed: %v", err)
	}
	if p.config.Model != "gpt-4o-mini" {
		t.Errorf("Default model is %q", p.config.Model)
	}
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(nil)
	if err == nil {
		t.Fatal("Expected error for nil config (no API key)")
	}
	if !strings.Contains(err.Error(), "apiKey") {
		t.Errorf("Error does not name the missing field: %v", err)
	}
}
