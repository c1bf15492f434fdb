package feed

import "cratedig/internal/models"

// Diversify selects up to target tracks from an ordered candidate list,
// capping each artist at maxPerArtist appearances and keeping repeats of
// an artist at least cooldownSpan accepted entries apart. A cooldownSpan
// of zero disables the spacing rule and leaves only the cap.
//
// When the strict pass comes up short, a relaxed pass re-walks the
// remaining candidates honoring only the artist cap, so a thin pool still
// fills as far as the cap allows. Selection never reorders: the output is
// a subsequence of the input, and relaxed picks sit at their original
// positions even when that places same-artist tracks closer than the
// spacing rule would.
func Diversify(tracks []models.Track, maxPerArtist, cooldownSpan, target int) []models.Track {
	if target <= 0 || len(tracks) == 0 {
		return []models.Track{}
	}

	counts := make(map[string]int)
	taken := make([]bool, len(tracks))
	accepted := 0
	var window []string

	for i, t := range tracks {
		if accepted >= target {
			break
		}
		key := models.ArtistKey(t.Artist)
		if counts[key] >= maxPerArtist {
			continue
		}
		if cooldownSpan > 0 && artistInWindow(window, key) {
			continue
		}
		counts[key]++
		taken[i] = true
		accepted++
		if cooldownSpan > 0 {
			window = append(window, key)
			if len(window) > cooldownSpan {
				window = window[1:]
			}
		}
	}

	if accepted < target {
		for i, t := range tracks {
			if accepted >= target {
				break
			}
			if taken[i] {
				continue
			}
			key := models.ArtistKey(t.Artist)
			if counts[key] >= maxPerArtist {
				continue
			}
			counts[key]++
			taken[i] = true
			accepted++
		}
	}

	out := make([]models.Track, 0, accepted)
	for i, t := range tracks {
		if taken[i] {
			out = append(out, t)
		}
	}
	return out
}

func artistInWindow(window []string, key string) bool {
	for _, w := range window {
		if w == key {
			return true
		}
	}
	return false
}
