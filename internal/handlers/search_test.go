package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cratedig/internal/feed"
	"cratedig/internal/handlers/render"
	"cratedig/internal/models"
	"cratedig/internal/services"
	"cratedig/internal/testutil"
)

// searchTestEnv wires a search handler over two mocked catalog sources
type searchTestEnv struct {
	itunes  *testutil.MockTrackSource
	spotify *testutil.MockTrackSource
	prefs   *testutil.MockPreferenceRepository
	helper  *testutil.HTTPTestHelper
}

func newSearchTestEnv(t *testing.T) *searchTestEnv {
	gin.SetMode(gin.TestMode)

	itunes := testutil.NewMockTrackSource("itunes")
	spotify := testutil.NewMockTrackSource("spotify")
	catalogMock := new(testutil.MockCatalogService)
	prefRepo := new(testutil.MockPreferenceRepository)

	engine := feed.NewEngine(itunes, []services.TrackSource{itunes, spotify}, catalogMock)
	handler := NewSearchHandler(engine, prefRepo)

	helper := testutil.NewHTTPTestHelper(t)
	helper.Router().GET("/api/v1/search", handler.Search)

	return &searchTestEnv{
		itunes:  itunes,
		spotify: spotify,
		prefs:   prefRepo,
		helper:  helper,
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	env := newSearchTestEnv(t)

	recorder := env.helper.GetJSON("/api/v1/search")
	env.helper.AssertErrorResponse(recorder, http.StatusBadRequest, "q")

	recorder = env.helper.GetJSON("/api/v1/search?q=%20%20")
	env.helper.AssertErrorResponse(recorder, http.StatusBadRequest, "q")
}

func TestSearch_RanksExactArtistFirst(t *testing.T) {
	env := newSearchTestEnv(t)

	raws := testutil.CreateTestRawTracks(8)
	raws = append(raws, testutil.NewRawTrackBuilder().
		WithTrackID(7777777).
		WithName("One More Time").
		WithArtist("Daft Punk").
		Build())
	testutil.ExpectSearchTracks(env.itunes, "Daft Punk", raws, nil)
	testutil.ExpectSearchTracks(env.spotify, "Daft Punk", []services.RawTrack{}, nil)

	recorder := env.helper.GetJSON("/api/v1/search?q=Daft+Punk")

	var response render.SearchResponse
	env.helper.AssertJSONResponse(recorder, http.StatusOK, &response)

	require.NotEmpty(t, response.Tracks)
	assert.Equal(t, "Daft Punk", response.Tracks[0].Artist, "exact artist match should rank first")
	assert.Equal(t, "Daft Punk", response.Query)
	assert.Equal(t, len(response.Tracks), response.Count)
}

func TestSearch_MergesAcrossSources(t *testing.T) {
	env := newSearchTestEnv(t)

	itunesRaws := []services.RawTrack{
		testutil.NewRawTrackBuilder().WithTrackID(1000001).WithName("Harder Better").WithArtist("Daft Punk").Build(),
	}
	spotifyRaws := []services.RawTrack{
		{
			ID:         testutil.SpotifyTrackID1,
			Name:       "Around the World",
			Artist:     "Daft Punk",
			AlbumName:  "Homework",
			PreviewURL: "https://p.scdn.co/preview",
			URL:        "https://open.spotify.com/track/" + testutil.SpotifyTrackID1,
			Source:     "spotify",
		},
	}
	testutil.ExpectSearchTracks(env.itunes, "daft", itunesRaws, nil)
	testutil.ExpectSearchTracks(env.spotify, "daft", spotifyRaws, nil)

	recorder := env.helper.GetJSON("/api/v1/search?q=daft")

	var response render.SearchResponse
	env.helper.AssertJSONResponse(recorder, http.StatusOK, &response)

	require.Equal(t, 2, response.Count)
	sources := map[string]bool{}
	for _, track := range response.Tracks {
		sources[track.Source] = true
	}
	assert.True(t, sources["itunes"])
	assert.True(t, sources["spotify"])
}

func TestSearch_SourceFailureDegrades(t *testing.T) {
	env := newSearchTestEnv(t)

	testutil.ExpectSearchTracks(env.itunes, "daft", testutil.CreateTestRawTracks(3), nil)
	testutil.ExpectSearchTracks(env.spotify, "daft", nil, fmt.Errorf("rate limited"))

	recorder := env.helper.GetJSON("/api/v1/search?q=daft")

	var response render.SearchResponse
	env.helper.AssertJSONResponse(recorder, http.StatusOK, &response)
	assert.Equal(t, 3, response.Count, "one source failing must not fail the search")
}

func TestSearch_DislikedTracksDropped(t *testing.T) {
	env := newSearchTestEnv(t)

	testutil.ExpectSearchTracks(env.itunes, "test", testutil.CreateTestRawTracks(8), nil)
	testutil.ExpectSearchTracks(env.spotify, "test", []services.RawTrack{}, nil)

	dislikedID := "9000002"
	state := models.NewPreferenceState(testutil.TestUserID1)
	state.AddDislike(dislikedID, "", time.Now())
	testutil.ExpectSnapshot(env.prefs, testutil.TestUserID1, state, nil)

	recorder := env.helper.GetJSON("/api/v1/search?q=test&user=" + testutil.TestUserID1)

	var response render.SearchResponse
	env.helper.AssertJSONResponse(recorder, http.StatusOK, &response)

	require.NotEmpty(t, response.Tracks)
	for _, track := range response.Tracks {
		assert.NotEqual(t, dislikedID, track.ID)
	}
}

func TestSearch_EmptyResults(t *testing.T) {
	env := newSearchTestEnv(t)

	testutil.ExpectSearchTracks(env.itunes, "zzzzz", []services.RawTrack{}, nil)
	testutil.ExpectSearchTracks(env.spotify, "zzzzz", []services.RawTrack{}, nil)

	recorder := env.helper.GetJSON("/api/v1/search?q=zzzzz")

	var response render.SearchResponse
	env.helper.AssertJSONResponse(recorder, http.StatusOK, &response)
	assert.True(t, response.Empty)
	assert.Contains(t, recorder.Body.String(), `"tracks":[]`)
}
