package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"cratedig/internal/feed"
	"cratedig/internal/models"
	"cratedig/internal/services"
	"cratedig/internal/testutil"
)

// Hand-rolled stubs keep the hot path free of mock bookkeeping

type benchTrackSource struct {
	raws []services.RawTrack
}

func (s *benchTrackSource) Name() string { return "itunes" }

func (s *benchTrackSource) TopTracksByGenre(ctx context.Context, genre models.Genre, limit int) ([]services.RawTrack, error) {
	return s.raws, nil
}

func (s *benchTrackSource) SearchTracks(ctx context.Context, query string, limit int) ([]services.RawTrack, error) {
	return s.raws, nil
}

func (s *benchTrackSource) Health(ctx context.Context) error { return nil }

type benchCatalog struct{}

func (benchCatalog) Genres(ctx context.Context) []models.Genre {
	return []models.Genre{{ID: 14, Name: "Pop"}}
}

func (benchCatalog) Resolve(ctx context.Context, ids []int) []models.Genre {
	return []models.Genre{{ID: 14, Name: "Pop"}}
}

func (benchCatalog) DefaultGenre() models.Genre { return models.Genre{ID: 14, Name: "Pop"} }

func (benchCatalog) Refresh(ctx context.Context) error { return nil }

type benchPreferenceRepository struct {
	state *models.PreferenceState
}

func (r *benchPreferenceRepository) Snapshot(ctx context.Context, userID string) (*models.PreferenceState, error) {
	return r.state, nil
}

func (r *benchPreferenceRepository) RecordLike(ctx context.Context, userID, trackID, artist string) error {
	return nil
}

func (r *benchPreferenceRepository) RecordDislike(ctx context.Context, userID, trackID, artist string) error {
	return nil
}

func (r *benchPreferenceRepository) RecordPlay(ctx context.Context, userID, trackID string) error {
	return nil
}

func (r *benchPreferenceRepository) RemoveLike(ctx context.Context, userID, trackID, artist string) error {
	return nil
}

func (r *benchPreferenceRepository) RemoveDislike(ctx context.Context, userID, trackID, artist string) error {
	return nil
}

func newBenchRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	source := &benchTrackSource{raws: testutil.CreateTestRawTracks(50)}
	engine := feed.NewEngine(source, []services.TrackSource{source}, benchCatalog{})
	prefRepo := &benchPreferenceRepository{state: testutil.CreatePreferenceState(testutil.TestUserID1)}

	router := gin.New()
	router.GET("/api/v1/feed", NewFeedHandler(engine, prefRepo).GetFeed)
	router.GET("/api/v1/search", NewSearchHandler(engine, prefRepo).Search)
	return router
}

func BenchmarkFeedHandler_GetFeed(b *testing.B) {
	router := newBenchRouter()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest("GET", "/api/v1/feed?seed=42&size=25&user="+testutil.TestUserID1, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				b.Fatalf("Expected status 200, got %d", w.Code)
			}
		}
	})
}

func BenchmarkSearchHandler_Search(b *testing.B) {
	router := newBenchRouter()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest("GET", "/api/v1/search?q=test", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				b.Fatalf("Expected status 200, got %d", w.Code)
			}
		}
	})
}
