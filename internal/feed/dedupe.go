package feed

import "cratedig/internal/models"

// Dedupe drops tracks whose id was already seen, keeping the first
// occurrence and its position. Calling it on an already-deduped list
// returns the same sequence.
func Dedupe(tracks []models.Track) []models.Track {
	seen := make(map[string]bool, len(tracks))
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}
