// Package render holds the wire types and helpers shared by the API handlers.
package render

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"cratedig/internal/models"
)

// FeedResponse is the payload for feed builds and feed extensions
type FeedResponse struct {
	Tracks []models.Track `json:"tracks"`
	Count  int            `json:"count"`
	Empty  bool           `json:"empty"`
	Seed   uint32         `json:"seed"`
	Genres []int          `json:"genres,omitempty"`
}

// SearchResponse is the payload for search requests
type SearchResponse struct {
	Tracks []models.Track `json:"tracks"`
	Count  int            `json:"count"`
	Empty  bool           `json:"empty"`
	Query  string         `json:"query"`
}

// GenresResponse lists the browsable genres
type GenresResponse struct {
	Genres []models.Genre `json:"genres"`
}

// PreferencesResponse is the listener-facing view of stored taste signals
type PreferencesResponse struct {
	User             string   `json:"user"`
	LikedArtists     []string `json:"liked_artists"`
	DislikedArtists  []string `json:"disliked_artists"`
	DislikedTrackIDs []string `json:"disliked_track_ids"`
	LikedCount       int      `json:"liked_count"`
	PlayedCount      int      `json:"played_count"`
}

// Feed writes a composed feed. A drained candidate pool is a valid
// outcome, so empty feeds render as 200 with an explicit marker.
func Feed(c *gin.Context, tracks []models.Track, seed uint32, genres []int) {
	if tracks == nil {
		tracks = []models.Track{}
	}
	c.JSON(http.StatusOK, FeedResponse{
		Tracks: tracks,
		Count:  len(tracks),
		Empty:  len(tracks) == 0,
		Seed:   seed,
		Genres: genres,
	})
}

// Search writes ranked search results
func Search(c *gin.Context, tracks []models.Track, query string) {
	if tracks == nil {
		tracks = []models.Track{}
	}
	c.JSON(http.StatusOK, SearchResponse{
		Tracks: tracks,
		Count:  len(tracks),
		Empty:  len(tracks) == 0,
		Query:  query,
	})
}

// Genres writes the genre catalog
func Genres(c *gin.Context, genres []models.Genre) {
	if genres == nil {
		genres = []models.Genre{}
	}
	c.JSON(http.StatusOK, GenresResponse{Genres: genres})
}

// Preferences writes a listener's snapshot with stable ordering
func Preferences(c *gin.Context, state *models.PreferenceState) {
	c.JSON(http.StatusOK, PreferencesResponse{
		User:             state.UserID,
		LikedArtists:     sortedKeys(state.LikedArtists),
		DislikedArtists:  sortedKeys(state.DislikedArtists),
		DislikedTrackIDs: sortedKeys(state.DislikedTrackIDs),
		LikedCount:       len(state.LikedAt),
		PlayedCount:      len(state.PlayedAt),
	})
}

// Accepted acknowledges a preference write without echoing state
func Accepted(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
