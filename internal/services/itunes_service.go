package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"cratedig/internal/cache"
	"cratedig/internal/models"
)

// itunesService implements TrackSource against the iTunes Search API
type itunesService struct {
	client  *resty.Client
	cache   cache.Cache
	limiter *rate.Limiter
}

// iTunes API endpoints and limits
const (
	itunesAPIURL     = "https://itunes.apple.com"
	itunesSearchPath = "/search"
	itunesMaxLimit   = 200
)

// The search API is unauthenticated and throttles aggressive callers, so
// requests are paced client-side and responses cached
const (
	itunesRateInterval = 3 * time.Second
	itunesRateBurst    = 5
	itunesSearchTTL    = 2 * time.Hour
	itunesChartsTTL    = 4 * time.Hour
)

// NewITunesService creates a new iTunes catalog source. An empty baseURL
// selects the public API host. The cache may be nil.
func NewITunesService(baseURL string, c cache.Cache) TrackSource {
	if baseURL == "" {
		baseURL = itunesAPIURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &itunesService{
		client:  client,
		cache:   c,
		limiter: rate.NewLimiter(rate.Every(itunesRateInterval), itunesRateBurst),
	}
}

// Name returns the source name
func (s *itunesService) Name() string {
	return "itunes"
}

// TopTracksByGenre fetches popular songs for a genre. iTunes has no public
// charts endpoint, so this searches the genre name narrowed by genreId,
// which returns tracks in popularity order.
func (s *itunesService) TopTracksByGenre(ctx context.Context, genre models.Genre, limit int) ([]RawTrack, error) {
	limit = clampITunesLimit(limit)

	cacheKey := fmt.Sprintf("api:itunes:top:%d:%d", genre.ID, limit)
	var cached []RawTrack
	if cache.GetJSON(ctx, s.cache, cacheKey, &cached) {
		return s.tagSource(cached), nil
	}

	term := strings.TrimSpace(genre.Name)
	if term == "" {
		term = "music"
	}

	raws, err := s.search(ctx, "top_tracks", map[string]string{
		"term":    term,
		"media":   "music",
		"entity":  "song",
		"genreId": strconv.Itoa(genre.ID),
		"limit":   strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, cacheKey, raws, itunesChartsTTL); err != nil {
		slog.Warn("Failed to cache iTunes genre charts", "genre_id", genre.ID, "error", err)
	}
	return s.tagSource(raws), nil
}

// SearchTracks searches the iTunes catalog with a free-text query
func (s *itunesService) SearchTracks(ctx context.Context, query string, limit int) ([]RawTrack, error) {
	limit = clampITunesLimit(limit)

	cacheKey := fmt.Sprintf("api:itunes:search:%s:%d", strings.ToLower(query), limit)
	var cached []RawTrack
	if cache.GetJSON(ctx, s.cache, cacheKey, &cached) {
		return s.tagSource(cached), nil
	}

	raws, err := s.search(ctx, "search", map[string]string{
		"term":   query,
		"media":  "music",
		"entity": "song",
		"limit":  strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, cacheKey, raws, itunesSearchTTL); err != nil {
		slog.Warn("Failed to cache iTunes search results", "query", query, "error", err)
	}
	return s.tagSource(raws), nil
}

// Health checks iTunes API reachability with a minimal search
func (s *itunesService) Health(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"term":   "a",
			"media":  "music",
			"entity": "song",
			"limit":  "1",
		}).
		Get(itunesSearchPath)

	if err != nil {
		return &SourceError{
			Source:    "itunes",
			Operation: "health",
			Message:   "request failed",
			Err:       err,
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return &SourceError{
			Source:    "itunes",
			Operation: "health",
			Message:   fmt.Sprintf("API returned status %d", resp.StatusCode()),
		}
	}
	return nil
}

// search runs one Search API call. Transport failures surface as errors so
// the caller can degrade; an unexpected status or an unreadable payload is
// logged and treated as zero results.
func (s *itunesService) search(ctx context.Context, operation string, params map[string]string) ([]RawTrack, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &SourceError{
			Source:    "itunes",
			Operation: operation,
			Message:   "rate limit wait aborted",
			Err:       err,
		}
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(itunesSearchPath)

	if err != nil {
		return nil, &SourceError{
			Source:    "itunes",
			Operation: operation,
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Warn("iTunes API returned unexpected status",
			"operation", operation, "status", resp.StatusCode())
		return []RawTrack{}, nil
	}

	var payload itunesSearchResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		slog.Warn("iTunes API returned unreadable payload",
			"operation", operation, "error", err)
		return []RawTrack{}, nil
	}

	return filterSongs(payload.Results), nil
}

// tagSource stamps the source name onto records, including cache hits
// where the tag is not serialized
func (s *itunesService) tagSource(raws []RawTrack) []RawTrack {
	for i := range raws {
		raws[i].Source = "itunes"
	}
	return raws
}

// filterSongs drops non-song results (music videos, audiobooks) that the
// search endpoint mixes in
func filterSongs(raws []RawTrack) []RawTrack {
	songs := make([]RawTrack, 0, len(raws))
	for _, raw := range raws {
		if raw.Kind == "" || raw.Kind == "song" {
			songs = append(songs, raw)
		}
	}
	return songs
}

func clampITunesLimit(limit int) int {
	if limit <= 0 {
		limit = 50
	}
	if limit > itunesMaxLimit {
		limit = itunesMaxLimit
	}
	return limit
}

// itunesSearchResponse is the Search API envelope
type itunesSearchResponse struct {
	ResultCount int        `json:"resultCount"`
	Results     []RawTrack `json:"results"`
}
