package models

import "time"

// PreferenceState is an immutable snapshot of one listener's taste signals.
// Artist sets are keyed by ArtistKey; timestamp maps are keyed by track ID.
// The feed engine only reads it, so a zero value (or nil pointer) behaves
// like a listener with no history.
type PreferenceState struct {
	UserID           string
	LikedArtists     map[string]bool
	DislikedArtists  map[string]bool
	DislikedTrackIDs map[string]bool
	LikedAt          map[string]time.Time
	PlayedAt         map[string]time.Time
}

// NewPreferenceState creates an empty preference snapshot
func NewPreferenceState(userID string) *PreferenceState {
	return &PreferenceState{
		UserID:           userID,
		LikedArtists:     make(map[string]bool),
		DislikedArtists:  make(map[string]bool),
		DislikedTrackIDs: make(map[string]bool),
		LikedAt:          make(map[string]time.Time),
		PlayedAt:         make(map[string]time.Time),
	}
}

// LikesArtist reports whether the listener liked this artist
func (p *PreferenceState) LikesArtist(artist string) bool {
	if p == nil {
		return false
	}
	return p.LikedArtists[ArtistKey(artist)]
}

// DislikesArtist reports whether the listener disliked this artist
func (p *PreferenceState) DislikesArtist(artist string) bool {
	if p == nil {
		return false
	}
	return p.DislikedArtists[ArtistKey(artist)]
}

// DislikesTrack reports whether the listener swiped this exact track away
func (p *PreferenceState) DislikesTrack(trackID string) bool {
	if p == nil {
		return false
	}
	return p.DislikedTrackIDs[trackID]
}

// HeardWithin reports whether the track was liked or played inside the window
func (p *PreferenceState) HeardWithin(trackID string, window time.Duration, now time.Time) bool {
	if p == nil || window <= 0 {
		return false
	}
	cutoff := now.Add(-window)
	if at, ok := p.LikedAt[trackID]; ok && at.After(cutoff) {
		return true
	}
	if at, ok := p.PlayedAt[trackID]; ok && at.After(cutoff) {
		return true
	}
	return false
}

// AddLike records a like gesture on a track
func (p *PreferenceState) AddLike(trackID, artist string, at time.Time) {
	p.ensureMaps()
	if artist != "" {
		p.LikedArtists[ArtistKey(artist)] = true
	}
	if trackID != "" {
		p.LikedAt[trackID] = at
	}
}

// AddDislike records a dislike gesture on a track
func (p *PreferenceState) AddDislike(trackID, artist string, at time.Time) {
	p.ensureMaps()
	if artist != "" {
		p.DislikedArtists[ArtistKey(artist)] = true
	}
	if trackID != "" {
		p.DislikedTrackIDs[trackID] = true
	}
}

// AddPlay records a completed preview play
func (p *PreferenceState) AddPlay(trackID string, at time.Time) {
	p.ensureMaps()
	if trackID != "" {
		p.PlayedAt[trackID] = at
	}
}

// RemoveLike undoes a like gesture
func (p *PreferenceState) RemoveLike(trackID, artist string) {
	if p == nil {
		return
	}
	if artist != "" {
		delete(p.LikedArtists, ArtistKey(artist))
	}
	delete(p.LikedAt, trackID)
}

// RemoveDislike undoes a dislike gesture
func (p *PreferenceState) RemoveDislike(trackID, artist string) {
	if p == nil {
		return
	}
	if artist != "" {
		delete(p.DislikedArtists, ArtistKey(artist))
	}
	delete(p.DislikedTrackIDs, trackID)
}

func (p *PreferenceState) ensureMaps() {
	if p.LikedArtists == nil {
		p.LikedArtists = make(map[string]bool)
	}
	if p.DislikedArtists == nil {
		p.DislikedArtists = make(map[string]bool)
	}
	if p.DislikedTrackIDs == nil {
		p.DislikedTrackIDs = make(map[string]bool)
	}
	if p.LikedAt == nil {
		p.LikedAt = make(map[string]time.Time)
	}
	if p.PlayedAt == nil {
		p.PlayedAt = make(map[string]time.Time)
	}
}
