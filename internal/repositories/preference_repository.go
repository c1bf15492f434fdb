package repositories

import (
	"context"

	"cratedig/internal/models"
)

// PreferenceRepository defines the interface for listener preference storage
type PreferenceRepository interface {
	// Snapshot returns the listener's accumulated taste signals.
	// Unknown listeners get an empty snapshot, not an error.
	Snapshot(ctx context.Context, userID string) (*models.PreferenceState, error)

	// RecordLike stores a like gesture. The artist joins the liked set and
	// the track gets a fresh timestamp for cooldown tracking.
	RecordLike(ctx context.Context, userID, trackID, artist string) error

	// RecordDislike stores a dislike gesture on a track and its artist
	RecordDislike(ctx context.Context, userID, trackID, artist string) error

	// RecordPlay stores a completed preview play for cooldown tracking
	RecordPlay(ctx context.Context, userID, trackID string) error

	// RemoveLike undoes a like gesture
	RemoveLike(ctx context.Context, userID, trackID, artist string) error

	// RemoveDislike undoes a dislike gesture
	RemoveDislike(ctx context.Context, userID, trackID, artist string) error
}
