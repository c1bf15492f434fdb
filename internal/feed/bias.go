package feed

import (
	"sort"

	"cratedig/internal/models"
)

// Taste scores. Small on purpose: bias moves tracks toward the front or
// back of the candidate order, it never buys an artist extra feed slots.
const (
	likedArtistScore    = 2
	dislikedArtistScore = -2
)

// rankedCandidate pairs a track with its bias score during reordering
type rankedCandidate struct {
	track models.Track
	score int
}

// BiasAndDiversify reorders candidates so liked artists surface first and
// disliked artists sink to the back, then applies the usual cap and
// spacing rules. The sort is stable: tracks with equal scores keep their
// incoming relative order, which preserves the seeded shuffle among
// neutral tracks.
func BiasAndDiversify(tracks []models.Track, prefs *models.PreferenceState, maxPerArtist, cooldownSpan, target int) []models.Track {
	ranked := make([]rankedCandidate, len(tracks))
	for i, t := range tracks {
		score := 0
		if prefs.LikesArtist(t.Artist) {
			score = likedArtistScore
		} else if prefs.DislikesArtist(t.Artist) {
			score = dislikedArtistScore
		}
		ranked[i] = rankedCandidate{track: t, score: score}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	ordered := make([]models.Track, len(ranked))
	for i, rc := range ranked {
		ordered[i] = rc.track
	}
	return Diversify(ordered, maxPerArtist, cooldownSpan, target)
}
