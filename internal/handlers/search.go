package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cratedig/internal/feed"
	"cratedig/internal/handlers/render"
	"cratedig/internal/repositories"
)

// SearchHandler handles catalog search requests
type SearchHandler struct {
	engine      *feed.Engine
	preferences repositories.PreferenceRepository
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(engine *feed.Engine, preferences repositories.PreferenceRepository) *SearchHandler {
	return &SearchHandler{
		engine:      engine,
		preferences: preferences,
	}
}

// Search handles GET /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'q' is required",
		})
		return
	}

	prefs := loadPreferences(c, h.preferences, c.Query("user"))

	tracks, err := h.engine.BuildSearchResults(c.Request.Context(), query, prefs)
	if err != nil {
		slog.Error("Search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Search failed",
		})
		return
	}

	render.Search(c, tracks, query)
}
