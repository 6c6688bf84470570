package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Equat-ion/titles/internal/account"
	"github.com/Equat-ion/titles/internal/addons"
	"github.com/Equat-ion/titles/internal/api"
	"github.com/Equat-ion/titles/internal/catalog"
	"github.com/Equat-ion/titles/internal/config"
	"github.com/Equat-ion/titles/internal/posters"
	"github.com/Equat-ion/titles/internal/refresh"
	"github.com/Equat-ion/titles/internal/settings"
	"github.com/Equat-ion/titles/internal/stremio"
	"github.com/Equat-ion/titles/pkg/httpclient"
)

func main() {
	// 1. Load .env if present, then configuration from environment variables.
	_ = godotenv.Load()
	cfg := config.Load()

	// 2. Set up logging.
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	cfg.LogSummary(&logger)

	// 3. Open the settings store under the data directory.
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to create data directory")
	}
	store, err := settings.Open(filepath.Join(cfg.DataDir, "settings.json"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open settings store")
	}

	// 4. Create the remote API clients. Authentication calls get a tighter
	//    timeout than collection calls.
	authClient := stremio.NewClient(cfg.APIBaseURL, httpclient.New(10*time.Second), &logger)
	collectionClient := stremio.NewClient(cfg.APIBaseURL, httpclient.New(15*time.Second), &logger)

	// 5. Create the core services.
	accounts := account.NewService(authClient, store, &logger)
	addonSvc := addons.NewService(collectionClient, store, httpclient.New(10*time.Second), &logger)
	aggregator := catalog.NewAggregator(addonSvc, httpclient.New(10*time.Second), cfg.MaxItemsPerCatalog, cfg.FetchConcurrency, &logger)

	// 6. Create the poster cache.
	cache := posters.New(cfg.CacheDir, httpclient.New(10*time.Second), int64(cfg.CacheMaxMB)*1024*1024, &logger)

	// 7. Start the refresh scheduler. When a refresh is due it warms the
	//    catalog sections and prefetches their posters.
	scheduler := refresh.NewScheduler(store, time.Duration(cfg.RefreshCheckMin)*time.Minute, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		for _, contentType := range []string{"movie", "series"} {
			sections := aggregator.FetchAllForType(ctx, contentType)
			for _, section := range sections {
				for _, meta := range section.Items {
					if meta.Poster == "" {
						continue
					}
					if _, err := cache.Fetch(ctx, meta.Poster); err != nil {
						logger.Debug().Err(err).Str("url", meta.Poster).Msg("poster prefetch failed")
					}
				}
			}
		}
	}, &logger)
	scheduler.Start()
	defer scheduler.Stop()

	// 8. Register the control API routes and start the server.
	handlers := api.NewHandlers(accounts, addonSvc, aggregator, cache, store, &logger)
	app := fiber.New()
	api.RegisterRoutes(app, handlers)

	addr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.Port)
	logger.Info().Str("addr", addr).Msg("control API listening")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
