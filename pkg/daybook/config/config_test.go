package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.RemoteURL != "http://localhost:8080" {
		t.Errorf("Expected default remote URL, got %q", cfg.RemoteURL)
	}
	if cfg.DBPath != "daybook.db" {
		t.Errorf("Expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Ephemeral || cfg.RemoteBypass {
		t.Error("Expected both mode switches off by default")
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("Expected five minute interval, got %v", cfg.SyncInterval)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DAYBOOK_REMOTE_URL", "https://journal.example.com")
	t.Setenv("DAYBOOK_EPHEMERAL", "true")
	t.Setenv("DAYBOOK_OFFLINE", "1")
	t.Setenv("DAYBOOK_SYNC_INTERVAL", "30s")

	cfg := FromEnv()

	if cfg.RemoteURL != "https://journal.example.com" {
		t.Errorf("Expected overridden remote URL, got %q", cfg.RemoteURL)
	}
	if !cfg.Ephemeral || !cfg.RemoteBypass {
		t.Error("Expected both mode switches on")
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Errorf("Expected 30s interval, got %v", cfg.SyncInterval)
	}
}

func TestFromEnvRejectsBadInterval(t *testing.T) {
	t.Setenv("DAYBOOK_SYNC_INTERVAL", "soon")

	if cfg := FromEnv(); cfg.SyncInterval != DefaultSyncInterval {
		t.Errorf("Expected fallback to default interval, got %v", cfg.SyncInterval)
	}
}
