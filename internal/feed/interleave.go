package feed

import "cratedig/internal/models"

// Seed mixing constants. Both are large odd numbers so sibling bucket
// seeds and the final shuffle seed never collapse onto each other or
// onto the base seed.
const (
	bucketSeedConstant  = 0x9E3779B1
	shuffleSeedConstant = 0x85EBCA6B
)

// BucketSeed derives the seed for one genre bucket from the base seed,
// the genre id, and the bucket's position in the request.
func BucketSeed(seed uint32, genreID, index int) uint32 {
	return seed ^ uint32(genreID) ^ (uint32(index) * bucketSeedConstant)
}

// MergeSeed derives the seed for the shuffle that runs after buckets are
// interleaved, decorrelated from every bucket seed.
func MergeSeed(seed uint32) uint32 {
	return seed ^ shuffleSeedConstant
}

// Interleave round-robin merges buckets: position 0 of every bucket, then
// position 1, and so on, skipping exhausted buckets. Every genre gets even
// representation near the head of the merged list no matter how lopsided
// the bucket sizes are.
func Interleave(buckets [][]models.Track) []models.Track {
	total := 0
	longest := 0
	for _, b := range buckets {
		total += len(b)
		if len(b) > longest {
			longest = len(b)
		}
	}

	out := make([]models.Track, 0, total)
	for i := 0; i < longest; i++ {
		for _, b := range buckets {
			if i < len(b) {
				out = append(out, b[i])
			}
		}
	}
	return out
}
