package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cratedig/internal/config"
	"cratedig/internal/feed"
	"cratedig/internal/models"
	"cratedig/internal/services"
	"cratedig/internal/testutil"
)

func newFullAPIRouter(t *testing.T) *testutil.HTTPTestHelper {
	source := testutil.NewMockTrackSource("itunes")
	source.On("Health", mock.Anything).Return(nil)
	testutil.ExpectTopTracks(source, testutil.CreateTestRawTracks(30), nil)

	catalogMock := new(testutil.MockCatalogService)
	catalogMock.On("Genres", mock.Anything).Return([]models.Genre{{ID: testutil.GenreIDPop, Name: "Pop"}})
	catalogMock.On("Resolve", mock.Anything, mock.Anything).Return([]models.Genre{{ID: testutil.GenreIDPop, Name: "Pop"}})

	prefRepo := new(testutil.MockPreferenceRepository)
	testutil.ExpectSnapshot(prefRepo, "", models.NewPreferenceState(""), nil)

	cacheMock := new(testutil.MockCache)
	cacheMock.On("Health", mock.Anything).Return(nil)

	engine := feed.NewEngine(source, []services.TrackSource{source}, catalogMock)

	cfg := &config.Config{GinMode: "test", AllowedOrigins: "*"}
	router := NewRouter(cfg, Handlers{
		Feed:        NewFeedHandler(engine, prefRepo),
		Search:      NewSearchHandler(engine, prefRepo),
		Genres:      NewGenreHandler(catalogMock),
		Preferences: NewPreferenceHandler(prefRepo),
		Health:      NewHealthHandler(stubPinger{}, cacheMock, []services.TrackSource{source}),
	})

	helper := testutil.NewHTTPTestHelper(t)
	helper.SetRouter(router)
	return helper
}

func TestNewRouter_ServesRegisteredRoutes(t *testing.T) {
	helper := newFullAPIRouter(t)

	assert.Equal(t, http.StatusOK, helper.GetJSON("/health").Code)
	assert.Equal(t, http.StatusOK, helper.GetJSON("/api/v1/genres").Code)
	assert.Equal(t, http.StatusOK, helper.GetJSON("/api/v1/feed?seed=7&size=5").Code)
}

func TestNewRouter_UnknownRouteIs404(t *testing.T) {
	helper := newFullAPIRouter(t)

	assert.Equal(t, http.StatusNotFound, helper.GetJSON("/api/v1/unknown").Code)
}

func TestNewRouter_CORSHeadersApplied(t *testing.T) {
	helper := newFullAPIRouter(t)

	req, err := http.NewRequest("GET", "/api/v1/genres", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")

	recorder := httptest.NewRecorder()
	helper.Router().ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
