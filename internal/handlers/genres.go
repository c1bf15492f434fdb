package handlers

import (
	"github.com/gin-gonic/gin"

	"cratedig/internal/catalog"
	"cratedig/internal/handlers/render"
)

// GenreHandler serves the browsable genre catalog
type GenreHandler struct {
	catalog catalog.Service
}

// NewGenreHandler creates a new genre handler
func NewGenreHandler(cat catalog.Service) *GenreHandler {
	return &GenreHandler{catalog: cat}
}

// GetGenres handles GET /api/v1/genres
func (h *GenreHandler) GetGenres(c *gin.Context) {
	render.Genres(c, h.catalog.Genres(c.Request.Context()))
}
