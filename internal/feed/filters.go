package feed

import (
	"strings"
	"time"

	"cratedig/internal/models"
)

// Floors below which a hygiene stage backs off instead of applying.
// A stage that would starve the feed is skipped entirely; showing a
// previously disliked track beats showing nothing.
const (
	dislikeFilterFloor   = 5
	cooldownKeepFraction = 0.6
	genreFilterFloor     = 10
)

// FilterOptions carries the context one hygiene pass runs under
type FilterOptions struct {
	Prefs *models.PreferenceState

	// Genres the listener explicitly asked for. Empty when browsing the
	// default feed, which disables genre narrowing.
	Genres []models.Genre

	// CooldownWindow suppresses recently liked or played tracks. Zero
	// disables that stage.
	CooldownWindow time.Duration

	// Target is the requested feed size, used to scale the genre floor
	Target int

	// BlockedPhrases mark filler recordings (karaoke, tribute, covers)
	BlockedPhrases []string

	Now time.Time
}

// ApplyFilters runs the hygiene stages in order: blocked phrases, disliked
// tracks, cooldown suppression, genre narrowing. The phrase stage always
// applies; each later stage applies only when enough tracks survive it.
func ApplyFilters(tracks []models.Track, opts FilterOptions) []models.Track {
	out := removeBlocked(tracks, opts.BlockedPhrases)

	if filtered := removeDisliked(out, opts.Prefs); len(filtered) >= dislikeFilterFloor {
		out = filtered
	}

	if opts.CooldownWindow > 0 {
		filtered := removeRecentlyHeard(out, opts.Prefs, opts.CooldownWindow, opts.Now)
		if float64(len(filtered)) >= cooldownKeepFraction*float64(len(out)) {
			out = filtered
		}
	}

	if len(opts.Genres) > 0 {
		floor := genreFilterFloor
		if half := opts.Target / 2; half < floor {
			floor = half
		}
		if filtered := narrowToGenres(out, opts.Genres); len(filtered) >= floor {
			out = filtered
		}
	}

	return out
}

// removeBlocked drops tracks whose combined text matches a blocked phrase
func removeBlocked(tracks []models.Track, phrases []string) []models.Track {
	if len(phrases) == 0 {
		return tracks
	}
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		combined := strings.ToLower(t.Title + " " + t.Album + " " + t.Artist)
		if containsAnyPhrase(combined, phrases) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func containsAnyPhrase(text string, phrases []string) bool {
	for _, phrase := range phrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// removeDisliked drops tracks the listener explicitly swiped away
func removeDisliked(tracks []models.Track, prefs *models.PreferenceState) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if prefs.DislikesTrack(t.ID) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// removeRecentlyHeard drops tracks liked or played inside the window
func removeRecentlyHeard(tracks []models.Track, prefs *models.PreferenceState, window time.Duration, now time.Time) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if prefs.HeardWithin(t.ID, window, now) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// narrowToGenres keeps tracks whose genre label mentions a requested genre
func narrowToGenres(tracks []models.Track, genres []models.Genre) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		label := strings.ToLower(t.Genre)
		for _, g := range genres {
			if g.Name == "" {
				continue
			}
			if strings.Contains(label, strings.ToLower(g.Name)) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
