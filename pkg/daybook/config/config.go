// Package config collects the process-wide settings. Values come from
// the environment once at startup and are passed explicitly into the
// cache and sync engine; nothing reads the environment after that.
package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultSyncInterval is how often the background sync runs.
const DefaultSyncInterval = 5 * time.Minute

// Config holds the settings for one daybook process.
type Config struct {
	// RemoteURL is the base URL of the journal sync service.
	RemoteURL string
	// APISecret signs the bearer tokens sent to the service.
	APISecret string
	// DeviceID identifies this client in token claims.
	DeviceID string
	// DBPath is the SQLite file backing the durable cache.
	DBPath string
	// Ephemeral keeps the cache in memory only: no local footprint.
	Ephemeral bool
	// RemoteBypass skips the remote service entirely; every call
	// returns empty or default results.
	RemoteBypass bool
	// SyncInterval is the period of the background full sync.
	SyncInterval time.Duration
}

// FromEnv reads configuration from DAYBOOK_* environment variables,
// falling back to defaults.
func FromEnv() Config {
	cfg := Config{
		RemoteURL:    getenv("DAYBOOK_REMOTE_URL", "http://localhost:8080"),
		APISecret:    getenv("DAYBOOK_API_SECRET", ""),
		DeviceID:     getenv("DAYBOOK_DEVICE_ID", defaultDeviceID()),
		DBPath:       getenv("DAYBOOK_DB_PATH", "daybook.db"),
		Ephemeral:    getbool("DAYBOOK_EPHEMERAL"),
		RemoteBypass: getbool("DAYBOOK_OFFLINE"),
		SyncInterval: DefaultSyncInterval,
	}
	if v := os.Getenv("DAYBOOK_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SyncInterval = d
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func defaultDeviceID() string {
	host, err := os.Hostname()
	if err != nil {
		return "daybook"
	}
	return host
}
