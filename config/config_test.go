package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NTFY_TOPIC", "jules-notify-test-abc123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NtfyServer != "https://ntfy.sh" {
		t.Errorf("NtfyServer = %q", cfg.NtfyServer)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %s", cfg.PollInterval)
	}
	if cfg.EmailAction != "trash" {
		t.Errorf("EmailAction = %q", cfg.EmailAction)
	}
	if cfg.GmailQuery != "from:jules-notifications@google.com is:unread" {
		t.Errorf("GmailQuery = %q", cfg.GmailQuery)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		NtfyTopic:    "some-topic",
		PollInterval: 30 * time.Second,
		EmailAction:  "archive",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty topic", func(c *Config) { c.NtfyTopic = "" }},
		{"placeholder topic", func(c *Config) { c.NtfyTopic = placeholderTopic }},
		{"zero interval", func(c *Config) { c.PollInterval = 0 }},
		{"bad action", func(c *Config) { c.EmailAction = "delete" }},
	}
	for _, tt := range tests {
		cfg := valid
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestManagerCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.json")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("filter file not created: %v", err)
	}
	if m.ShouldIgnore("anyone@example.com", "any subject") {
		t.Error("empty filters should ignore nothing")
	}
}

func TestManagerShouldIgnore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.AddIgnoreSender("noreply@spam.example"); err != nil {
		t.Fatal(err)
	}
	if err := m.AddIgnoreKeywordInSubject("weekly digest"); err != nil {
		t.Fatal(err)
	}

	if !m.ShouldIgnore("NoReply@Spam.Example", "hello") {
		t.Error("sender match should be case-insensitive")
	}
	if !m.ShouldIgnore("jules@google.com", "Your Weekly Digest is here") {
		t.Error("subject keyword match should be case-insensitive")
	}
	if m.ShouldIgnore("jules@google.com", "task completed") {
		t.Error("unmatched email should not be ignored")
	}

	// Rules survive a reload from disk.
	m2, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager reload: %v", err)
	}
	if !m2.ShouldIgnore("noreply@spam.example", "x") {
		t.Error("rules not persisted")
	}
}

func TestManagerSkipsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := m.AddIgnoreSender("dup@example.com"); err != nil {
			t.Fatal(err)
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n := len(m.filters.IgnoreSenders); n != 1 {
		t.Errorf("senders = %d, want 1", n)
	}
}
