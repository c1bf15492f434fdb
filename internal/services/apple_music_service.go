package services

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"cratedig/internal/cache"
	"cratedig/internal/models"
)

// appleMusicService implements TrackSource for the Apple Music API
type appleMusicService struct {
	client      *resty.Client
	cache       cache.Cache
	apiURL      string
	keyID       string
	teamID      string
	keyFile     string
	privateKey  *ecdsa.PrivateKey
	jwtToken    string
	tokenExpiry time.Time
	mu          sync.RWMutex
}

// Apple Music API endpoints and limits
const (
	appleMusicAPIURL   = "https://api.music.apple.com/v1"
	appleMusicMaxLimit = 25
)

// Cache TTL constants for Apple Music API responses
const (
	appleMusicSearchCacheTTL = 2 * time.Hour // Search results
	appleMusicChartsCacheTTL = 4 * time.Hour // Genre charts
)

// NewAppleMusicService creates a new Apple Music catalog source
func NewAppleMusicService(keyID, teamID, keyFile string, c cache.Cache) TrackSource {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	service := &appleMusicService{
		client:  client,
		cache:   c,
		apiURL:  appleMusicAPIURL,
		keyID:   keyID,
		teamID:  teamID,
		keyFile: keyFile,
	}

	// Load private key
	if err := service.loadPrivateKey(); err != nil {
		slog.Error("Failed to load Apple Music private key", "error", err)
	}

	return service
}

// Name returns the source name
func (s *appleMusicService) Name() string {
	return "apple_music"
}

// TopTracksByGenre fetches the genre's song chart. Apple Music shares the
// iTunes genre taxonomy, so catalog genre ids pass through unchanged.
func (s *appleMusicService) TopTracksByGenre(ctx context.Context, genre models.Genre, limit int) ([]RawTrack, error) {
	limit = clampAppleMusicLimit(limit)

	cacheKey := fmt.Sprintf("api:apple_music:top:%d:%d", genre.ID, limit)
	var cached []RawTrack
	if cache.GetJSON(ctx, s.cache, cacheKey, &cached) {
		return s.tagSource(cached), nil
	}

	if err := s.ensureValidToken(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	token := s.jwtToken
	s.mu.RUnlock()

	var chartsResult AppleMusicChartsResult
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"types": "songs",
			"genre": strconv.Itoa(genre.ID),
			"limit": strconv.Itoa(limit),
		}).
		SetResult(&chartsResult).
		Get(fmt.Sprintf("%s/catalog/us/charts", s.apiURL))

	if err != nil {
		return nil, &SourceError{
			Source:    "apple_music",
			Operation: "top_tracks",
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Warn("Apple Music API returned unexpected status",
			"operation", "top_tracks", "status", resp.StatusCode())
		return []RawTrack{}, nil
	}

	raws := make([]RawTrack, 0, limit)
	for _, chart := range chartsResult.Results.Songs {
		for _, song := range chart.Data {
			raws = append(raws, s.convertAppleMusicSong(&song, genre.Name))
		}
	}

	if err := cache.SetJSON(ctx, s.cache, cacheKey, raws, appleMusicChartsCacheTTL); err != nil {
		slog.Warn("Failed to cache Apple Music genre charts", "genre_id", genre.ID, "error", err)
	}
	return raws, nil
}

// SearchTracks searches the Apple Music catalog with a free-text query
func (s *appleMusicService) SearchTracks(ctx context.Context, query string, limit int) ([]RawTrack, error) {
	limit = clampAppleMusicLimit(limit)

	cacheKey := fmt.Sprintf("api:apple_music:search:%s:%d", strings.ToLower(query), limit)
	var cached []RawTrack
	if cache.GetJSON(ctx, s.cache, cacheKey, &cached) {
		return s.tagSource(cached), nil
	}

	if err := s.ensureValidToken(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	token := s.jwtToken
	s.mu.RUnlock()

	var searchResult AppleMusicSearchResult
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"term":  query,
			"types": "songs",
			"limit": strconv.Itoa(limit),
		}).
		SetResult(&searchResult).
		Get(fmt.Sprintf("%s/catalog/us/search", s.apiURL))

	if err != nil {
		return nil, &SourceError{
			Source:    "apple_music",
			Operation: "search",
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Warn("Apple Music API returned unexpected status",
			"operation", "search", "status", resp.StatusCode())
		return []RawTrack{}, nil
	}

	raws := make([]RawTrack, 0, len(searchResult.Results.Songs.Data))
	for _, song := range searchResult.Results.Songs.Data {
		raws = append(raws, s.convertAppleMusicSong(&song, ""))
	}

	if err := cache.SetJSON(ctx, s.cache, cacheKey, raws, appleMusicSearchCacheTTL); err != nil {
		slog.Warn("Failed to cache Apple Music search results", "query", query, "error", err)
	}
	return raws, nil
}

// Health checks Apple Music API health
func (s *appleMusicService) Health(ctx context.Context) error {
	if s.keyID == "" || s.teamID == "" {
		return &SourceError{
			Source:    "apple_music",
			Operation: "health",
			Message:   "missing Apple Music API credentials",
		}
	}

	if s.privateKey == nil {
		return &SourceError{
			Source:    "apple_music",
			Operation: "health",
			Message:   "private key not loaded",
		}
	}

	// Test token generation
	return s.ensureValidToken()
}

// loadPrivateKey loads the Apple Music private key from file
func (s *appleMusicService) loadPrivateKey() error {
	keyData, err := os.ReadFile(s.keyFile)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}

	block, _ := pem.Decode(keyData)
	if block == nil {
		return fmt.Errorf("failed to decode PEM block from private key")
	}

	privateKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}

	ecdsaKey, ok := privateKey.(*ecdsa.PrivateKey)
	if !ok {
		return fmt.Errorf("private key is not ECDSA")
	}

	s.privateKey = ecdsaKey
	return nil
}

// ensureValidToken ensures we have a valid JWT token
func (s *appleMusicService) ensureValidToken() error {
	s.mu.RLock()
	if s.jwtToken != "" && time.Now().Before(s.tokenExpiry) {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if s.jwtToken != "" && time.Now().Before(s.tokenExpiry) {
		return nil
	}

	if s.privateKey == nil {
		return &SourceError{
			Source:    "apple_music",
			Operation: "auth",
			Message:   "private key not loaded",
		}
	}

	token, err := s.generateJWT()
	if err != nil {
		return &SourceError{
			Source:    "apple_music",
			Operation: "auth",
			Message:   "failed to generate JWT token",
			Err:       err,
		}
	}

	s.jwtToken = token
	s.tokenExpiry = time.Now().Add(55 * time.Minute) // JWT tokens last 60 minutes, refresh at 55

	slog.Info("Apple Music JWT token refreshed", "expires_at", s.tokenExpiry)

	return nil
}

// generateJWT creates a JWT token for Apple Music API authentication
func (s *appleMusicService) generateJWT() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.teamID,
		"iat": now.Unix(),
		"exp": now.Add(60 * time.Minute).Unix(), // 60 minutes expiration
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = s.keyID

	return token.SignedString(s.privateKey)
}

// convertAppleMusicSong maps an Apple Music song onto the raw record
// aliases. Artwork URLs arrive as {w}x{h} templates.
func (s *appleMusicService) convertAppleMusicSong(song *AppleMusicSong, fallbackGenre string) RawTrack {
	var imageURL string
	if song.Attributes.Artwork.URL != "" {
		imageURL = strings.ReplaceAll(song.Attributes.Artwork.URL, "{w}", "600")
		imageURL = strings.ReplaceAll(imageURL, "{h}", "600")
	}

	var previewURL string
	if len(song.Attributes.Previews) > 0 {
		previewURL = song.Attributes.Previews[0].URL
	}

	genre := fallbackGenre
	for _, name := range song.Attributes.GenreNames {
		if name != "Music" {
			genre = name
			break
		}
	}

	return RawTrack{
		ID:         song.ID,
		Name:       song.Attributes.Name,
		ArtistName: song.Attributes.ArtistName,
		AlbumName:  song.Attributes.AlbumName,
		ArtworkURL: imageURL,
		PreviewURL: previewURL,
		URL:        song.Attributes.URL,
		Genre:      genre,
		Kind:       "song",
		Source:     "apple_music",
	}
}

// tagSource stamps the source name onto records, including cache hits
// where the tag is not serialized
func (s *appleMusicService) tagSource(raws []RawTrack) []RawTrack {
	for i := range raws {
		raws[i].Source = "apple_music"
	}
	return raws
}

func clampAppleMusicLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	}
	if limit > appleMusicMaxLimit {
		limit = appleMusicMaxLimit // Apple Music API limit
	}
	return limit
}

// Apple Music API response structures
type AppleMusicSearchResult struct {
	Results AppleMusicResults `json:"results"`
}

type AppleMusicResults struct {
	Songs AppleMusicSongs `json:"songs"`
}

type AppleMusicSongs struct {
	Data []AppleMusicSong `json:"data"`
}

type AppleMusicChartsResult struct {
	Results AppleMusicChartsResults `json:"results"`
}

type AppleMusicChartsResults struct {
	Songs []AppleMusicChart `json:"songs"`
}

type AppleMusicChart struct {
	Chart string           `json:"chart"`
	Name  string           `json:"name"`
	Data  []AppleMusicSong `json:"data"`
}

type AppleMusicSong struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	Attributes AppleMusicSongAttributes `json:"attributes"`
}

type AppleMusicSongAttributes struct {
	Name       string              `json:"name"`
	ArtistName string              `json:"artistName"`
	AlbumName  string              `json:"albumName"`
	GenreNames []string            `json:"genreNames"`
	URL        string              `json:"url"`
	Previews   []AppleMusicPreview `json:"previews"`
	Artwork    AppleMusicArtwork   `json:"artwork"`
}

type AppleMusicPreview struct {
	URL string `json:"url"`
}

type AppleMusicArtwork struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
