package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/clientcredentials"

	"cratedig/internal/cache"
	"cratedig/internal/models"
)

// spotifyService implements TrackSource for the Spotify Web API
type spotifyService struct {
	client      *resty.Client
	cache       cache.Cache
	apiURL      string
	tokenSource *clientcredentials.Config
	accessToken string
	tokenExpiry time.Time
	mu          sync.RWMutex
}

// Spotify API endpoints
const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIURL   = "https://api.spotify.com/v1"
	spotifyMaxLimit = 50
)

const (
	spotifySearchTTL = 2 * time.Hour
	spotifyChartsTTL = 4 * time.Hour
)

// NewSpotifyService creates a new Spotify catalog source. The cache may be nil.
func NewSpotifyService(clientID, clientSecret string, c cache.Cache) TrackSource {
	tokenSource := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &spotifyService{
		client:      client,
		cache:       c,
		apiURL:      spotifyAPIURL,
		tokenSource: tokenSource,
	}
}

// Name returns the source name
func (s *spotifyService) Name() string {
	return "spotify"
}

// TopTracksByGenre fetches popular tracks for a genre via a genre-filtered
// catalog search. Spotify's own genre taxonomy is looser than the catalog
// tree, so results are stamped with the requested genre name.
func (s *spotifyService) TopTracksByGenre(ctx context.Context, genre models.Genre, limit int) ([]RawTrack, error) {
	limit = clampSpotifyLimit(limit)

	cacheKey := fmt.Sprintf("api:spotify:top:%d:%d", genre.ID, limit)
	var cached []RawTrack
	if cache.GetJSON(ctx, s.cache, cacheKey, &cached) {
		return s.tagSource(cached), nil
	}

	query := fmt.Sprintf("genre:%q", genre.Name)
	raws, err := s.searchCatalog(ctx, "top_tracks", query, limit)
	if err != nil {
		return nil, err
	}
	for i := range raws {
		raws[i].Genre = genre.Name
	}

	if err := cache.SetJSON(ctx, s.cache, cacheKey, raws, spotifyChartsTTL); err != nil {
		slog.Warn("Failed to cache Spotify genre charts", "genre_id", genre.ID, "error", err)
	}
	return s.tagSource(raws), nil
}

// SearchTracks searches the Spotify catalog with a free-text query
func (s *spotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]RawTrack, error) {
	limit = clampSpotifyLimit(limit)

	cacheKey := fmt.Sprintf("api:spotify:search:%s:%d", strings.ToLower(query), limit)
	var cached []RawTrack
	if cache.GetJSON(ctx, s.cache, cacheKey, &cached) {
		return s.tagSource(cached), nil
	}

	raws, err := s.searchCatalog(ctx, "search", query, limit)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, cacheKey, raws, spotifySearchTTL); err != nil {
		slog.Warn("Failed to cache Spotify search results", "query", query, "error", err)
	}
	return s.tagSource(raws), nil
}

// Health checks Spotify API health
func (s *spotifyService) Health(ctx context.Context) error {
	return s.ensureValidToken(ctx)
}

// searchCatalog runs one /search call. Transport and auth failures surface
// as errors; an unexpected status is logged and treated as zero results.
func (s *spotifyService) searchCatalog(ctx context.Context, operation, query string, limit int) ([]RawTrack, error) {
	if err := s.ensureValidToken(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	var searchResult SpotifySearchResult
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"q":     query,
			"type":  "track",
			"limit": fmt.Sprintf("%d", limit),
		}).
		SetResult(&searchResult).
		Get(fmt.Sprintf("%s/search", s.apiURL))

	if err != nil {
		return nil, &SourceError{
			Source:    "spotify",
			Operation: operation,
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Warn("Spotify API returned unexpected status",
			"operation", operation, "status", resp.StatusCode())
		return []RawTrack{}, nil
	}

	raws := make([]RawTrack, 0, len(searchResult.Tracks.Items))
	for _, track := range searchResult.Tracks.Items {
		raws = append(raws, s.convertSpotifyTrack(&track))
	}
	return raws, nil
}

// ensureValidToken ensures we have a valid access token
func (s *spotifyService) ensureValidToken(ctx context.Context) error {
	s.mu.RLock()
	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return nil
	}

	token, err := s.tokenSource.Token(ctx)
	if err != nil {
		return &SourceError{
			Source:    "spotify",
			Operation: "auth",
			Message:   "failed to get access token",
			Err:       err,
		}
	}

	s.accessToken = token.AccessToken
	s.tokenExpiry = token.Expiry

	slog.Info("Spotify access token refreshed", "expires_at", token.Expiry)

	return nil
}

// convertSpotifyTrack maps a Spotify API track onto the raw record aliases
func (s *spotifyService) convertSpotifyTrack(track *SpotifyTrack) RawTrack {
	artists := make([]string, len(track.Artists))
	for i, artist := range track.Artists {
		artists[i] = artist.Name
	}

	// Get image URL (prefer medium size)
	var imageURL string
	if len(track.Album.Images) > 0 {
		imageURL = track.Album.Images[0].URL
		for _, img := range track.Album.Images {
			if img.Width >= 300 && img.Width <= 640 {
				imageURL = img.URL
				break
			}
		}
	}

	return RawTrack{
		ID:        track.ID,
		Name:      track.Name,
		Artist:    strings.Join(artists, ", "),
		Album:     track.Album.Name,
		ImageURL:  imageURL,
		StreamURL: track.PreviewURL,
		URL:       track.ExternalURLs.Spotify,
		Kind:      "song",
		Source:    "spotify",
	}
}

// tagSource stamps the source name onto records, including cache hits
// where the tag is not serialized
func (s *spotifyService) tagSource(raws []RawTrack) []RawTrack {
	for i := range raws {
		raws[i].Source = "spotify"
	}
	return raws
}

func clampSpotifyLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	}
	if limit > spotifyMaxLimit {
		limit = spotifyMaxLimit // Spotify API limit
	}
	return limit
}

// Spotify API response structures
type SpotifyTrack struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Artists      []SpotifyArtist     `json:"artists"`
	Album        SpotifyAlbum        `json:"album"`
	PreviewURL   string              `json:"preview_url"`
	ExternalURLs SpotifyExternalURLs `json:"external_urls"`
	DurationMs   int                 `json:"duration_ms"`
	Explicit     bool                `json:"explicit"`
	Popularity   int                 `json:"popularity"`
}

type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
}

type SpotifyImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type SpotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type SpotifySearchResult struct {
	Tracks SpotifyTracksPaging `json:"tracks"`
}

type SpotifyTracksPaging struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
}
