package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cratedig/internal/handlers/render"
	"cratedig/internal/models"
	"cratedig/internal/testutil"
)

func TestGetGenres_ListsCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	catalogMock := new(testutil.MockCatalogService)
	catalogMock.On("Genres", mock.Anything).Return([]models.Genre{
		{ID: testutil.GenreIDPop, Name: "Pop"},
		{ID: testutil.GenreIDHipHopRap, Name: "Hip-Hop/Rap"},
		{ID: testutil.GenreIDElectronic, Name: "Electronic"},
	})

	helper := testutil.NewHTTPTestHelper(t)
	helper.Router().GET("/api/v1/genres", NewGenreHandler(catalogMock).GetGenres)

	recorder := helper.GetJSON("/api/v1/genres")

	var response render.GenresResponse
	helper.AssertJSONResponse(recorder, http.StatusOK, &response)

	require.Len(t, response.Genres, 3)
	assert.Equal(t, testutil.GenreIDPop, response.Genres[0].ID)
	assert.Equal(t, "Pop", response.Genres[0].Name)
}

func TestGetGenres_EmptyCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	catalogMock := new(testutil.MockCatalogService)
	catalogMock.On("Genres", mock.Anything).Return([]models.Genre{})

	helper := testutil.NewHTTPTestHelper(t)
	helper.Router().GET("/api/v1/genres", NewGenreHandler(catalogMock).GetGenres)

	recorder := helper.GetJSON("/api/v1/genres")

	var response render.GenresResponse
	helper.AssertJSONResponse(recorder, http.StatusOK, &response)
	assert.Empty(t, response.Genres)
	assert.Contains(t, recorder.Body.String(), `"genres":[]`)
}
