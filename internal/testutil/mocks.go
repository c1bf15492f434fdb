package testutil

import (
	"context"
	"time"

	"cratedig/internal/models"
	"cratedig/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockPreferenceRepository is a mock implementation of PreferenceRepository for testing
type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) Snapshot(ctx context.Context, userID string) (*models.PreferenceState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PreferenceState), args.Error(1)
}

func (m *MockPreferenceRepository) RecordLike(ctx context.Context, userID, trackID, artist string) error {
	args := m.Called(ctx, userID, trackID, artist)
	return args.Error(0)
}

func (m *MockPreferenceRepository) RecordDislike(ctx context.Context, userID, trackID, artist string) error {
	args := m.Called(ctx, userID, trackID, artist)
	return args.Error(0)
}

func (m *MockPreferenceRepository) RecordPlay(ctx context.Context, userID, trackID string) error {
	args := m.Called(ctx, userID, trackID)
	return args.Error(0)
}

func (m *MockPreferenceRepository) RemoveLike(ctx context.Context, userID, trackID, artist string) error {
	args := m.Called(ctx, userID, trackID, artist)
	return args.Error(0)
}

func (m *MockPreferenceRepository) RemoveDislike(ctx context.Context, userID, trackID, artist string) error {
	args := m.Called(ctx, userID, trackID, artist)
	return args.Error(0)
}

// MockTrackSource is a mock implementation of TrackSource for testing
type MockTrackSource struct {
	mock.Mock
	sourceName string
}

func NewMockTrackSource(sourceName string) *MockTrackSource {
	return &MockTrackSource{
		sourceName: sourceName,
	}
}

func (m *MockTrackSource) Name() string {
	return m.sourceName
}

func (m *MockTrackSource) TopTracksByGenre(ctx context.Context, genre models.Genre, limit int) ([]services.RawTrack, error) {
	args := m.Called(ctx, genre, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.RawTrack), args.Error(1)
}

func (m *MockTrackSource) SearchTracks(ctx context.Context, query string, limit int) ([]services.RawTrack, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.RawTrack), args.Error(1)
}

func (m *MockTrackSource) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCatalogService is a mock implementation of catalog.Service for testing
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Genres(ctx context.Context) []models.Genre {
	args := m.Called(ctx)
	return args.Get(0).([]models.Genre)
}

func (m *MockCatalogService) Resolve(ctx context.Context, ids []int) []models.Genre {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Genre)
}

func (m *MockCatalogService) DefaultGenre() models.Genre {
	args := m.Called()
	return args.Get(0).(models.Genre)
}

func (m *MockCatalogService) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCache is a mock implementation of cache.Cache for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockCache) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Helper functions for setting up mock expectations

// ExpectSnapshot sets up expectation for Snapshot
func ExpectSnapshot(repo *MockPreferenceRepository, userID string, state *models.PreferenceState, err error) {
	repo.On("Snapshot", mock.Anything, userID).Return(state, err)
}

// ExpectTopTracks sets up expectation for TopTracksByGenre on any genre
func ExpectTopTracks(source *MockTrackSource, tracks []services.RawTrack, err error) {
	source.On("TopTracksByGenre", mock.Anything, mock.Anything, mock.Anything).Return(tracks, err)
}

// ExpectSearchTracks sets up expectation for SearchTracks
func ExpectSearchTracks(source *MockTrackSource, query string, tracks []services.RawTrack, err error) {
	source.On("SearchTracks", mock.Anything, query, mock.Anything).Return(tracks, err)
}
