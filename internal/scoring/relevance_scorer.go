package scoring

import (
	"sort"
	"strings"

	"cratedig/internal/models"
)

// Match weights. Whole-query artist matches dominate so searching an
// artist name surfaces that artist ahead of covers and lookalikes; token
// weights pick up partial hits on multi-word queries. All bonuses are
// additive: an exact artist match also collects the prefix and contains
// bonuses, which is what pushes it clear of near-miss artist names.
const (
	exactArtistScore    = 60
	artistPrefixScore   = 50
	artistContainsScore = 40
	comboContainsScore  = 18
	albumContainsScore  = 14

	tokenArtistContainsScore = 8
	tokenAlbumContainsScore  = 6
	tokenTitleContainsScore  = 5
	tokenArtistPrefixScore   = 4
	tokenTitlePrefixScore    = 3

	previewScore   = 1
	storeLinkScore = 1
)

// RelevanceScorer handles relevance scoring for track search results
type RelevanceScorer struct{}

// NewRelevanceScorer creates a new relevance scorer instance
func NewRelevanceScorer() *RelevanceScorer {
	return &RelevanceScorer{}
}

// RankByRelevance returns tracks ordered by descending relevance to the
// query. The sort is stable and compares scores only, so equally scored
// tracks keep their incoming relative order.
func (rs *RelevanceScorer) RankByRelevance(tracks []models.Track, query string) []models.Track {
	out := make([]models.Track, len(tracks))
	copy(out, tracks)

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return out
	}

	type rankedTrack struct {
		track models.Track
		score int
	}
	ranked := make([]rankedTrack, len(out))
	for i, t := range out {
		ranked[i] = rankedTrack{track: t, score: rs.CalculateRelevanceScore(t, query)}
	}

	// Sort by relevance score (highest first)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	for i, r := range ranked {
		out[i] = r.track
	}
	return out
}

// CalculateRelevanceScore computes the relevance of one track against a query
func (rs *RelevanceScorer) CalculateRelevanceScore(track models.Track, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	title := strings.ToLower(track.Title)
	artist := strings.ToLower(track.Artist)
	album := strings.ToLower(track.Album)

	score := rs.calculateWholeQueryScore(title, artist, album, q)
	score += rs.calculateTokenScore(title, artist, album, q)
	score += rs.calculateLinkScore(track)
	return score
}

// calculateWholeQueryScore scores matches of the full query string
func (rs *RelevanceScorer) calculateWholeQueryScore(title, artist, album, query string) int {
	score := 0

	if artist == query {
		score += exactArtistScore
	}
	if strings.HasPrefix(artist, query) {
		score += artistPrefixScore
	}
	if strings.Contains(artist, query) {
		score += artistContainsScore
	}
	if strings.Contains(title+" "+artist, query) {
		score += comboContainsScore
	}
	if strings.Contains(album, query) {
		score += albumContainsScore
	}

	return score
}

// calculateTokenScore scores each whitespace-split query token separately
func (rs *RelevanceScorer) calculateTokenScore(title, artist, album, query string) int {
	score := 0

	for _, token := range strings.Fields(query) {
		if strings.Contains(artist, token) {
			score += tokenArtistContainsScore
		}
		if strings.Contains(album, token) {
			score += tokenAlbumContainsScore
		}
		if strings.Contains(title, token) {
			score += tokenTitleContainsScore
		}
		if strings.HasPrefix(artist, token) {
			score += tokenArtistPrefixScore
		}
		if strings.HasPrefix(title, token) {
			score += tokenTitlePrefixScore
		}
	}

	return score
}

// calculateLinkScore rewards tracks the app can actually play and link out
func (rs *RelevanceScorer) calculateLinkScore(track models.Track) int {
	score := 0
	if track.HasPreview() {
		score += previewScore
	}
	if track.HasStoreLink() {
		score += storeLinkScore
	}
	return score
}
