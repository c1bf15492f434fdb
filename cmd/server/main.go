package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cratedig/internal/cache"
	"cratedig/internal/catalog"
	"cratedig/internal/config"
	"cratedig/internal/feed"
	"cratedig/internal/handlers"
	"cratedig/internal/models"
	"cratedig/internal/repositories"
	"cratedig/internal/services"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := models.NewDatabase(ctx, cfg.MongodbURL, "cratedig")
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	if err := db.CreateIndexes(ctx); err != nil {
		slog.Warn("Failed to create database indexes", "error", err)
	}

	// Initialize cache
	appCache, err := cache.NewMultiLevelCache(cfg.ValkeyURL, 1000)
	if err != nil {
		slog.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer appCache.Close()

	// Reload feed tuning periodically so edits apply without a restart
	config.StartFeedConfigWatcher(ctx, time.Minute)

	genreCatalog := catalog.NewService(cfg.ITunesBaseURL, appCache, config.GetFeedConfig().DefaultGenreID)

	sources, primary := buildTrackSources(cfg, appCache)
	engine := feed.NewEngine(primary, sources, genreCatalog)

	prefRepo := repositories.NewCachedPreferenceRepository(
		repositories.NewMongoPreferenceRepository(db),
		appCache,
	)

	router := handlers.NewRouter(cfg, handlers.Handlers{
		Feed:        handlers.NewFeedHandler(engine, prefRepo),
		Search:      handlers.NewSearchHandler(engine, prefRepo),
		Genres:      handlers.NewGenreHandler(genreCatalog),
		Preferences: handlers.NewPreferenceHandler(prefRepo),
		Health:      handlers.NewHealthHandler(db, appCache, sources),
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting",
			"port", cfg.Port,
			"primary_source", cfg.PrimarySource,
			"sources", cfg.GetEnabledSources())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// buildTrackSources constructs every configured catalog source and returns
// them along with the one discovery feeds are composed from.
func buildTrackSources(cfg *config.Config, c cache.Cache) ([]services.TrackSource, services.TrackSource) {
	byName := map[string]services.TrackSource{
		"itunes": services.NewITunesService(cfg.ITunesBaseURL, c),
	}

	if sc, ok := cfg.GetSourceConfig("spotify"); ok && sc.Enabled {
		byName["spotify"] = services.NewSpotifyService(sc.ClientID, sc.ClientSecret, c)
	}
	if sc, ok := cfg.GetSourceConfig("apple_music"); ok && sc.Enabled {
		byName["apple_music"] = services.NewAppleMusicService(sc.KeyID, sc.TeamID, sc.KeyFile, c)
	}

	sources := make([]services.TrackSource, 0, len(byName))
	for _, name := range []string{"itunes", "spotify", "apple_music"} {
		if source, ok := byName[name]; ok {
			sources = append(sources, source)
		}
	}

	// Load already validated that the primary source is configured
	return sources, byName[cfg.PrimarySource]
}
