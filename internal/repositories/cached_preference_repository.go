package repositories

import (
	"context"
	"log/slog"
	"time"

	"cratedig/internal/cache"
	"cratedig/internal/models"
)

// cachedPreferenceRepository wraps a PreferenceRepository with caching.
// Snapshots are read on every feed build, so they cache well; any write
// invalidates the listener's snapshot.
type cachedPreferenceRepository struct {
	repository PreferenceRepository
	cache      cache.Cache
}

// NewCachedPreferenceRepository creates a new cached preference repository
func NewCachedPreferenceRepository(repository PreferenceRepository, cache cache.Cache) PreferenceRepository {
	return &cachedPreferenceRepository{
		repository: repository,
		cache:      cache,
	}
}

// Cache key generators
func prefSnapshotKey(userID string) string { return "prefs:snapshot:" + userID }

// Cache TTL constants
const snapshotCacheTTL = 10 * time.Minute // Writes invalidate, so this only bounds staleness across instances

// Snapshot checks cache first, then repository
func (r *cachedPreferenceRepository) Snapshot(ctx context.Context, userID string) (*models.PreferenceState, error) {
	cacheKey := prefSnapshotKey(userID)

	var cached models.PreferenceState
	if cache.GetJSON(ctx, r.cache, cacheKey, &cached) {
		return &cached, nil
	}

	state, err := r.repository.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Empty snapshots cache too; most listeners have no history yet
	if err := cache.SetJSON(ctx, r.cache, cacheKey, state, snapshotCacheTTL); err != nil {
		slog.Warn("Failed to cache preference snapshot",
			"userID", userID,
			"error", err)
	}

	return state, nil
}

// RecordLike writes through and invalidates the snapshot
func (r *cachedPreferenceRepository) RecordLike(ctx context.Context, userID, trackID, artist string) error {
	if err := r.repository.RecordLike(ctx, userID, trackID, artist); err != nil {
		return err
	}
	r.invalidateSnapshot(ctx, userID)
	return nil
}

// RecordDislike writes through and invalidates the snapshot
func (r *cachedPreferenceRepository) RecordDislike(ctx context.Context, userID, trackID, artist string) error {
	if err := r.repository.RecordDislike(ctx, userID, trackID, artist); err != nil {
		return err
	}
	r.invalidateSnapshot(ctx, userID)
	return nil
}

// RecordPlay writes through and invalidates the snapshot
func (r *cachedPreferenceRepository) RecordPlay(ctx context.Context, userID, trackID string) error {
	if err := r.repository.RecordPlay(ctx, userID, trackID); err != nil {
		return err
	}
	r.invalidateSnapshot(ctx, userID)
	return nil
}

// RemoveLike writes through and invalidates the snapshot
func (r *cachedPreferenceRepository) RemoveLike(ctx context.Context, userID, trackID, artist string) error {
	if err := r.repository.RemoveLike(ctx, userID, trackID, artist); err != nil {
		return err
	}
	r.invalidateSnapshot(ctx, userID)
	return nil
}

// RemoveDislike writes through and invalidates the snapshot
func (r *cachedPreferenceRepository) RemoveDislike(ctx context.Context, userID, trackID, artist string) error {
	if err := r.repository.RemoveDislike(ctx, userID, trackID, artist); err != nil {
		return err
	}
	r.invalidateSnapshot(ctx, userID)
	return nil
}

func (r *cachedPreferenceRepository) invalidateSnapshot(ctx context.Context, userID string) {
	if err := r.cache.Delete(ctx, prefSnapshotKey(userID)); err != nil {
		slog.Warn("Failed to invalidate preference snapshot",
			"userID", userID,
			"error", err)
	}
}
