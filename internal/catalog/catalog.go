package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"cratedig/internal/cache"
	"cratedig/internal/models"
	"cratedig/internal/services"
)

const (
	genreTreeCacheKey = "api:itunes:genres:tree"
	genreTreeCacheTTL = 24 * time.Hour

	// Root of the music branch in the iTunes genre tree
	musicGenreRootID = "34"

	genreTreePath = "/WebObjects/MZStoreServices.woa/ws/genres"
)

// staticGenres keeps the feed usable when the genre endpoint is down
var staticGenres = []models.Genre{
	{ID: 6, Name: "Country"},
	{ID: 7, Name: "Electronic"},
	{ID: 11, Name: "Jazz"},
	{ID: 12, Name: "Latin"},
	{ID: 14, Name: "Pop"},
	{ID: 15, Name: "R&B/Soul"},
	{ID: 17, Name: "Dance"},
	{ID: 18, Name: "Hip-Hop/Rap"},
	{ID: 20, Name: "Alternative"},
	{ID: 21, Name: "Rock"},
}

// Service resolves catalog genres for feed composition
type Service interface {
	// Genres returns the browsable genre list. Never fails: endpoint or
	// cache trouble degrades to the built-in static list.
	Genres(ctx context.Context) []models.Genre

	// Resolve maps requested genre ids to catalog entries, dropping ids
	// the catalog does not know
	Resolve(ctx context.Context, ids []int) []models.Genre

	// DefaultGenre returns the genre used when a request names none
	DefaultGenre() models.Genre

	// Refresh refetches the genre tree, bypassing snapshot and cache
	Refresh(ctx context.Context) error
}

// genreNode mirrors one entry in the iTunes genre tree payload
type genreNode struct {
	Name      string               `json:"name"`
	Subgenres map[string]genreNode `json:"subgenres"`
}

type service struct {
	client         *resty.Client
	cache          cache.Cache
	baseURL        string
	defaultGenreID int

	mu     sync.RWMutex
	genres []models.Genre
}

// NewService creates a genre catalog backed by the iTunes genre tree
func NewService(baseURL string, c cache.Cache, defaultGenreID int) Service {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &service{
		client:         client,
		cache:          c,
		baseURL:        baseURL,
		defaultGenreID: defaultGenreID,
	}
}

func (s *service) Genres(ctx context.Context) []models.Genre {
	s.mu.RLock()
	if s.genres != nil {
		out := make([]models.Genre, len(s.genres))
		copy(out, s.genres)
		s.mu.RUnlock()
		return out
	}
	s.mu.RUnlock()

	var cached []models.Genre
	if cache.GetJSON(ctx, s.cache, genreTreeCacheKey, &cached) && len(cached) > 0 {
		s.store(cached)
		return cached
	}

	genres, err := s.fetchGenres(ctx)
	if err != nil {
		slog.Warn("Genre tree fetch failed, serving static genres", "error", err)
		return append([]models.Genre(nil), staticGenres...)
	}

	if err := cache.SetJSON(ctx, s.cache, genreTreeCacheKey, genres, genreTreeCacheTTL); err != nil {
		slog.Warn("Genre tree cache write failed", "error", err)
	}
	s.store(genres)
	return genres
}

func (s *service) Resolve(ctx context.Context, ids []int) []models.Genre {
	if len(ids) == 0 {
		return []models.Genre{}
	}

	known := s.Genres(ctx)
	byID := make(map[int]models.Genre, len(known))
	for _, g := range known {
		byID[g.ID] = g
	}

	out := make([]models.Genre, 0, len(ids))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			out = append(out, g)
		} else {
			slog.Warn("Unknown genre id requested", "genre_id", id)
		}
	}
	return out
}

func (s *service) DefaultGenre() models.Genre {
	s.mu.RLock()
	genres := s.genres
	s.mu.RUnlock()

	for _, g := range genres {
		if g.ID == s.defaultGenreID {
			return g
		}
	}
	for _, g := range staticGenres {
		if g.ID == s.defaultGenreID {
			return g
		}
	}
	// Unknown default id: Pop is the safest discovery term
	return models.Genre{ID: s.defaultGenreID, Name: "Pop"}
}

func (s *service) Refresh(ctx context.Context) error {
	genres, err := s.fetchGenres(ctx)
	if err != nil {
		return err
	}

	if err := cache.SetJSON(ctx, s.cache, genreTreeCacheKey, genres, genreTreeCacheTTL); err != nil {
		slog.Warn("Genre tree cache write failed", "error", err)
	}
	s.store(genres)
	return nil
}

// store keeps a private copy so slices handed to callers never alias
// the snapshot
func (s *service) store(genres []models.Genre) {
	snapshot := make([]models.Genre, len(genres))
	copy(snapshot, genres)
	s.mu.Lock()
	s.genres = snapshot
	s.mu.Unlock()
}

func (s *service) fetchGenres(ctx context.Context) ([]models.Genre, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("id", musicGenreRootID).
		Get(s.baseURL + genreTreePath)

	if err != nil {
		return nil, &services.SourceError{
			Source:    "itunes",
			Operation: "genre_tree",
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &services.SourceError{
			Source:    "itunes",
			Operation: "genre_tree",
			Message:   fmt.Sprintf("API returned status %d", resp.StatusCode()),
		}
	}

	var tree map[string]genreNode
	if err := json.Unmarshal(resp.Body(), &tree); err != nil {
		return nil, &services.SourceError{
			Source:    "itunes",
			Operation: "genre_tree",
			Message:   "malformed genre tree payload",
			Err:       err,
		}
	}

	root, ok := tree[musicGenreRootID]
	if !ok {
		return nil, &services.SourceError{
			Source:    "itunes",
			Operation: "genre_tree",
			Message:   "genre tree missing music branch",
		}
	}

	genres := make([]models.Genre, 0, len(root.Subgenres))
	for idStr, node := range root.Subgenres {
		id, err := strconv.Atoi(idStr)
		if err != nil || node.Name == "" {
			continue
		}
		genres = append(genres, models.Genre{ID: id, Name: node.Name})
	}
	if len(genres) == 0 {
		return nil, &services.SourceError{
			Source:    "itunes",
			Operation: "genre_tree",
			Message:   "genre tree has no usable genres",
		}
	}

	sort.Slice(genres, func(i, j int) bool {
		return genres[i].ID < genres[j].ID
	})
	return genres, nil
}
