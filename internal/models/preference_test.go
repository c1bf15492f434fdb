package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreferenceState(t *testing.T) {
	prefs := NewPreferenceState("user-1")

	assert.Equal(t, "user-1", prefs.UserID)
	assert.Empty(t, prefs.LikedArtists)
	assert.Empty(t, prefs.DislikedArtists)
	assert.Empty(t, prefs.DislikedTrackIDs)
}

func TestPreferenceState_LikeDislike(t *testing.T) {
	prefs := NewPreferenceState("user-1")
	now := time.Now()

	prefs.AddLike("track-1", "Queen", now)
	prefs.AddDislike("track-2", "Nickelback", now)

	assert.True(t, prefs.LikesArtist("Queen"))
	assert.True(t, prefs.LikesArtist("  queen "))
	assert.False(t, prefs.LikesArtist("Nickelback"))

	assert.True(t, prefs.DislikesArtist("NICKELBACK"))
	assert.True(t, prefs.DislikesTrack("track-2"))
	assert.False(t, prefs.DislikesTrack("track-1"))
}

func TestPreferenceState_RemoveUndoesGesture(t *testing.T) {
	prefs := NewPreferenceState("user-1")
	now := time.Now()

	prefs.AddLike("track-1", "Queen", now)
	require.True(t, prefs.LikesArtist("Queen"))

	prefs.RemoveLike("track-1", "Queen")
	assert.False(t, prefs.LikesArtist("Queen"))
	assert.False(t, prefs.HeardWithin("track-1", time.Hour, now))

	prefs.AddDislike("track-2", "Nickelback", now)
	prefs.RemoveDislike("track-2", "Nickelback")
	assert.False(t, prefs.DislikesArtist("Nickelback"))
	assert.False(t, prefs.DislikesTrack("track-2"))
}

func TestPreferenceState_HeardWithin(t *testing.T) {
	prefs := NewPreferenceState("user-1")
	now := time.Now()

	prefs.AddLike("liked-recent", "A", now.Add(-time.Hour))
	prefs.AddPlay("played-old", now.Add(-10*24*time.Hour))

	window := 7 * 24 * time.Hour
	assert.True(t, prefs.HeardWithin("liked-recent", window, now))
	assert.False(t, prefs.HeardWithin("played-old", window, now))
	assert.False(t, prefs.HeardWithin("never-seen", window, now))

	// Zero window disables the check entirely
	assert.False(t, prefs.HeardWithin("liked-recent", 0, now))
}

func TestPreferenceState_NilSafe(t *testing.T) {
	var prefs *PreferenceState

	assert.False(t, prefs.LikesArtist("Queen"))
	assert.False(t, prefs.DislikesArtist("Queen"))
	assert.False(t, prefs.DislikesTrack("track-1"))
	assert.False(t, prefs.HeardWithin("track-1", time.Hour, time.Now()))
	assert.NotPanics(t, func() { prefs.RemoveLike("track-1", "Queen") })
}
