package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mikepea/daybook/pkg/daybook/auth"
	"github.com/mikepea/daybook/pkg/daybook/cache"
	"github.com/mikepea/daybook/pkg/daybook/config"
	"github.com/mikepea/daybook/pkg/daybook/remote"
	"github.com/mikepea/daybook/pkg/daybook/sync"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.FromEnv()

	// Pick the persistence strategy
	var backend cache.Backend
	if cfg.Ephemeral {
		logger.Info().Msg("Running with ephemeral cache - no local persistence")
		backend = cache.NewEphemeralBackend()
	} else {
		gb, err := cache.NewGormBackend(cfg.DBPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open local database")
		}
		backend = gb
	}

	c := cache.New(backend)
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load local cache")
	}

	// Pick the remote strategy
	var store remote.Store
	if cfg.RemoteBypass {
		logger.Info().Msg("Running offline - remote service bypassed")
		store = remote.NewBypass()
	} else {
		client := remote.NewClient(cfg.RemoteURL)
		if cfg.APISecret != "" {
			token, err := auth.GenerateToken([]byte(cfg.APISecret), cfg.DeviceID)
			if err != nil {
				logger.Fatal().Err(err).Msg("Failed to generate auth token")
			}
			client.SetAuthToken(token)
		}
		store = client
	}

	engine := sync.NewEngine(c, store, logger)

	if err := engine.SyncAll(ctx); err != nil {
		// Not fatal: the scheduled runs keep retrying.
		logger.Warn().Err(err).Msg("Initial sync failed")
	}

	engine.Run(ctx, cfg.SyncInterval)
	logger.Info().Msg("Shutdown complete")
}
