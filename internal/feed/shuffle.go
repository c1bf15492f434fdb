package feed

import "cratedig/internal/models"

// Shuffle returns a copy of tracks permuted by a Fisher-Yates pass seeded
// from seed. The same seed and input always produce the same order.
func Shuffle(tracks []models.Track, seed uint32) []models.Track {
	out := make([]models.Track, len(tracks))
	copy(out, tracks)

	rng := newLCG(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
