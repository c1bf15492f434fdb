package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cratedig/internal/cache"
	"cratedig/internal/catalog"
	"cratedig/internal/config"
	"cratedig/internal/services"
)

// Warms the genre tree and the per-genre chart caches so the first feed
// requests after a deploy don't all fan out to the catalog API at once.

const tracksPerGenre = 50

func main() {
	// Load .env file for local development
	_ = godotenv.Load()

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize cache
	appCache, err := cache.NewMultiLevelCache(cfg.ValkeyURL, 1000)
	if err != nil {
		slog.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer appCache.Close()

	genreCatalog := catalog.NewService(cfg.ITunesBaseURL, appCache, config.GetFeedConfig().DefaultGenreID)
	source := services.NewITunesService(cfg.ITunesBaseURL, appCache)

	ctx := context.Background()

	slog.Info("Starting genre cache warm-up...")
	started := time.Now()

	if err := genreCatalog.Refresh(ctx); err != nil {
		slog.Error("Failed to refresh genre tree", "error", err)
		os.Exit(1)
	}

	genres := genreCatalog.Genres(ctx)
	slog.Info("Genre tree refreshed", "genres", len(genres))

	warmed := 0
	failed := 0

	for _, genre := range genres {
		tracks, err := source.TopTracksByGenre(ctx, genre, tracksPerGenre)
		if err != nil {
			slog.Warn("Failed to warm genre chart",
				"genre_id", genre.ID,
				"genre", genre.Name,
				"error", err)
			failed++
			continue
		}

		slog.Info("Warmed genre chart",
			"genre_id", genre.ID,
			"genre", genre.Name,
			"tracks", len(tracks))
		warmed++
	}

	slog.Info("Genre cache warm-up completed",
		"warmed", warmed,
		"failed", failed,
		"elapsed", time.Since(started).Round(time.Millisecond).String())

	fmt.Println("Warm-up completed!")
	fmt.Printf("Warmed: %d genres\n", warmed)
	fmt.Printf("Failed: %d genres\n", failed)
}
