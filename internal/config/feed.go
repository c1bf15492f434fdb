package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FeedConfig holds tunable knobs for feed composition
type FeedConfig struct {
	// At most this many tracks per artist in one composed feed
	MaxPerArtist int `toml:"max_per_artist"`

	// An artist must sit out this many accepted tracks before reappearing
	CooldownSpan int `toml:"cooldown_span"`

	// Feed sizes when the request does not specify one
	DefaultFeedSize int `toml:"default_feed_size"`
	MaxFeedSize     int `toml:"max_feed_size"`

	// Genre used when the request names none and as the last-resort fetch
	DefaultGenreID int `toml:"default_genre_id"`

	// Tracks liked or played within this many days are held back
	CooldownDays int `toml:"cooldown_days"`

	// Per-bucket catalog fetch deadline in seconds
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds"`

	// Search results are capped at this many tracks after ranking
	SearchResultLimit int `toml:"search_result_limit"`

	// Title/album/artist substrings that mark filler recordings
	BlockedPhrases []string `toml:"blocked_phrases"`
}

// DefaultFeedConfig returns hard-coded safe defaults
func DefaultFeedConfig() *FeedConfig {
	return &FeedConfig{
		MaxPerArtist:        2,
		CooldownSpan:        3,
		DefaultFeedSize:     25,
		MaxFeedSize:         100,
		DefaultGenreID:      14, // Pop
		CooldownDays:        7,
		FetchTimeoutSeconds: 8,
		SearchResultLimit:   50,
		BlockedPhrases: []string{
			"karaoke",
			"tribute",
			"instrumental",
			"made famous",
			"in the style of",
			"originally performed",
			"cover version",
			"backing track",
		},
	}
}

var (
	feedCfg     *FeedConfig
	feedCfgOnce sync.Once
	feedCfgMu   sync.RWMutex
)

// GetFeedConfig loads the feed config from TOML if FEED_CONFIG_PATH is set.
// Falls back to defaults if the env var is unset or the file cannot be read/parsed.
func GetFeedConfig() *FeedConfig {
	feedCfgOnce.Do(func() {
		cfg := DefaultFeedConfig()
		// Priority 1: explicit env var
		if path := os.Getenv("FEED_CONFIG_PATH"); path != "" {
			if fileCfg, err := loadFeedConfigFromPath(path); err == nil && fileCfg != nil {
				mergeFeedConfig(cfg, fileCfg)
			}
		} else {
			// Priority 2: well-known default locations
			for _, p := range candidateFeedConfigPaths() {
				if fileCfg, err := loadFeedConfigFromPath(p); err == nil && fileCfg != nil {
					mergeFeedConfig(cfg, fileCfg)
					break
				}
			}
		}
		feedCfgMu.Lock()
		feedCfg = cfg
		feedCfgMu.Unlock()
	})
	feedCfgMu.RLock()
	cfg := feedCfg
	feedCfgMu.RUnlock()
	return cfg
}

func loadFeedConfigFromPath(path string) (*FeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cfg FeedConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeFeedConfig(base, override *FeedConfig) {
	if override == nil || base == nil {
		return
	}
	if override.MaxPerArtist > 0 {
		base.MaxPerArtist = override.MaxPerArtist
	}
	if override.CooldownSpan > 0 {
		base.CooldownSpan = override.CooldownSpan
	}
	if override.DefaultFeedSize > 0 {
		base.DefaultFeedSize = override.DefaultFeedSize
	}
	if override.MaxFeedSize > 0 {
		base.MaxFeedSize = override.MaxFeedSize
	}
	if override.DefaultGenreID > 0 {
		base.DefaultGenreID = override.DefaultGenreID
	}
	if override.CooldownDays > 0 {
		base.CooldownDays = override.CooldownDays
	}
	if override.FetchTimeoutSeconds > 0 {
		base.FetchTimeoutSeconds = override.FetchTimeoutSeconds
	}
	if override.SearchResultLimit > 0 {
		base.SearchResultLimit = override.SearchResultLimit
	}
	if len(override.BlockedPhrases) > 0 {
		base.BlockedPhrases = override.BlockedPhrases
	}
}

// candidateFeedConfigPaths returns common locations to auto-discover feed config
func candidateFeedConfigPaths() []string {
	var paths []string
	// Current working directory
	paths = append(paths,
		"feed.toml",
		filepath.Join("config", "feed.toml"),
	)

	// XDG config home
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "cratedig", "feed.toml"))
	}

	// User config under HOME
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "cratedig", "feed.toml"))
	}

	// System-wide fallback
	paths = append(paths, filepath.Join(string(os.PathSeparator), "etc", "cratedig", "feed.toml"))
	return paths
}

// StartFeedConfigWatcher polls the feed config file for changes and reloads it.
// If a path is provided via FEED_CONFIG_PATH, that is used. Otherwise, the first
// existing path from candidateFeedConfigPaths is used. If no file exists, the
// watcher is a no-op.
func StartFeedConfigWatcher(ctx context.Context, interval time.Duration) {
	// Determine watched path
	paths := []string{}
	if explicit := os.Getenv("FEED_CONFIG_PATH"); explicit != "" {
		paths = append(paths, explicit)
	} else {
		paths = append(paths, candidateFeedConfigPaths()...)
	}

	var watchPath string
	var lastModTime time.Time
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			watchPath = p
			lastModTime = fi.ModTime()
			break
		}
	}
	if watchPath == "" {
		slog.Info("feed config watcher: no config file found; using defaults")
		return
	}

	slog.Info("feed config watcher: watching file", "path", watchPath)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("feed config watcher: stopped")
				return
			case <-ticker.C:
				fi, err := os.Stat(watchPath)
				if err != nil || fi.IsDir() {
					continue
				}
				if fi.ModTime().After(lastModTime) {
					if fileCfg, err := loadFeedConfigFromPath(watchPath); err == nil && fileCfg != nil {
						// Merge over defaults to keep unspecified keys sane
						newCfg := DefaultFeedConfig()
						mergeFeedConfig(newCfg, fileCfg)
						feedCfgMu.Lock()
						feedCfg = newCfg
						feedCfgMu.Unlock()
						lastModTime = fi.ModTime()
						slog.Info("feed config reloaded", "path", watchPath, "mtime", lastModTime)
					}
				}
			}
		}
	}()
}

// CooldownWindow converts the configured cooldown days to a duration
func (c *FeedConfig) CooldownWindow() time.Duration {
	return time.Duration(c.CooldownDays) * 24 * time.Hour
}

// FetchTimeout converts the configured per-bucket deadline to a duration
func (c *FeedConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
