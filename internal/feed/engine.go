package feed

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cratedig/internal/catalog"
	"cratedig/internal/config"
	"cratedig/internal/models"
	"cratedig/internal/scoring"
	"cratedig/internal/services"
)

// Tracks requested from a source per genre bucket. Buckets shrink through
// dedupe, hygiene filters, and the artist cap, so fetches need headroom
// over the requested feed size.
const bucketFetchLimit = 50

// InvalidRequestError marks a caller contract violation in a feed request
type InvalidRequestError struct {
	Field   string
	Message string
}

func (e *InvalidRequestError) Error() string {
	return "invalid feed request: " + e.Field + " " + e.Message
}

// Engine composes discovery feeds and search results from catalog sources
type Engine struct {
	primary services.TrackSource
	sources []services.TrackSource
	catalog catalog.Service
	scorer  *scoring.RelevanceScorer
}

// NewEngine creates a feed engine. The primary source drives genre
// discovery; sources is every enabled source, used for search fan-out.
func NewEngine(primary services.TrackSource, sources []services.TrackSource, cat catalog.Service) *Engine {
	return &Engine{
		primary: primary,
		sources: sources,
		catalog: cat,
		scorer:  scoring.NewRelevanceScorer(),
	}
}

// BuildDiscoveryFeed assembles a deterministic, diversified, preference
// biased feed. The same request and preference snapshot rebuild the same
// feed as long as the catalog serves the same candidates. A feed with
// genuinely zero candidates is an empty slice, not an error.
func (e *Engine) BuildDiscoveryFeed(ctx context.Context, req models.FeedRequest, prefs *models.PreferenceState) ([]models.Track, error) {
	if req.TargetSize <= 0 {
		return nil, &InvalidRequestError{Field: "target_size", Message: "must be positive"}
	}

	cfg := config.GetFeedConfig()
	genres := e.catalog.Resolve(ctx, req.GenreIDs)
	candidates := e.fetchForGenres(ctx, genres, req.Seed)

	filtered := ApplyFilters(candidates, FilterOptions{
		Prefs:          prefs,
		Genres:         genres,
		CooldownWindow: req.CooldownWindow,
		Target:         req.TargetSize,
		BlockedPhrases: cfg.BlockedPhrases,
		Now:            time.Now(),
	})

	return BiasAndDiversify(filtered, prefs, cfg.MaxPerArtist, cfg.CooldownSpan, req.TargetSize), nil
}

// BuildSearchResults runs a free-text search across every enabled source
// and ranks the merged results by relevance. Preference state only drops
// tracks the listener explicitly disliked; search applies no cooldown and
// no taste bias.
func (e *Engine) BuildSearchResults(ctx context.Context, query string, prefs *models.PreferenceState) ([]models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Track{}, nil
	}

	cfg := config.GetFeedConfig()
	timeout := cfg.FetchTimeout()

	buckets := make([][]models.Track, len(e.sources))
	var wg sync.WaitGroup
	for i, source := range e.sources {
		wg.Add(1)
		go func(slot int, source services.TrackSource) {
			defer wg.Done()
			searchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			raws, err := source.SearchTracks(searchCtx, query, cfg.SearchResultLimit)
			if err != nil {
				slog.Warn("Platform search failed", "source", source.Name(), "error", err)
				return
			}
			buckets[slot] = NormalizeAll(raws)
		}(i, source)
	}
	wg.Wait()

	combined := make([]models.Track, 0)
	for _, b := range buckets {
		combined = append(combined, b...)
	}
	combined = Dedupe(combined)

	if filtered := removeDisliked(combined, prefs); len(filtered) >= dislikeFilterFloor {
		combined = filtered
	}

	ranked := e.scorer.RankByRelevance(combined, query)
	return Diversify(ranked, cfg.MaxPerArtist, 0, cfg.SearchResultLimit), nil
}

// ExtendFeed grows an existing feed without disturbing it. The appended
// page is built from a seed derived from the base seed and the current
// feed length, so each page is distinct yet replayable, and every track
// already shown is excluded from the continuation.
func (e *Engine) ExtendFeed(ctx context.Context, existing []models.Track, req models.FeedRequest, prefs *models.PreferenceState) ([]models.Track, error) {
	pageReq := req
	pageReq.Seed = req.Seed ^ (uint32(len(existing)) * bucketSeedConstant)

	page, err := e.BuildDiscoveryFeed(ctx, pageReq, prefs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t.ID] = true
	}

	out := make([]models.Track, len(existing), len(existing)+len(page))
	copy(out, existing)
	for _, t := range page {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}

// fetchForGenres pulls one candidate bucket per genre concurrently. Each
// bucket gets its own derived seed and timeout; a failing bucket degrades
// to empty. When every bucket comes back empty the default genre is
// fetched once, so a feed never starves just because the requested genres
// drew blanks.
func (e *Engine) fetchForGenres(ctx context.Context, genres []models.Genre, seed uint32) []models.Track {
	timeout := config.GetFeedConfig().FetchTimeout()

	buckets := make([][]models.Track, len(genres))
	var wg sync.WaitGroup
	for i, genre := range genres {
		wg.Add(1)
		go func(slot int, genre models.Genre) {
			defer wg.Done()
			buckets[slot] = e.fetchBucket(ctx, genre, BucketSeed(seed, genre.ID, slot), timeout)
		}(i, genre)
	}
	wg.Wait()

	empty := true
	for _, b := range buckets {
		if len(b) > 0 {
			empty = false
			break
		}
	}
	if empty {
		fallback := e.catalog.DefaultGenre()
		buckets = [][]models.Track{e.fetchBucket(ctx, fallback, BucketSeed(seed, fallback.ID, 0), timeout)}
	}

	merged := Interleave(buckets)
	return Dedupe(Shuffle(merged, MergeSeed(seed)))
}

// fetchBucket fetches and normalizes one genre's candidates, shuffled by
// the bucket seed so sibling buckets interleave differently per base seed
func (e *Engine) fetchBucket(ctx context.Context, genre models.Genre, seed uint32, timeout time.Duration) []models.Track {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raws, err := e.primary.TopTracksByGenre(fetchCtx, genre, bucketFetchLimit)
	if err != nil {
		slog.Warn("Genre fetch failed", "source", e.primary.Name(), "genre", genre.Name, "error", err)
		return nil
	}
	return Shuffle(NormalizeAll(raws), seed)
}
