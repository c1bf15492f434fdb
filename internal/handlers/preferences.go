package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cratedig/internal/handlers/render"
	"cratedig/internal/repositories"
)

// PreferenceHandler handles taste gesture requests
type PreferenceHandler struct {
	preferences repositories.PreferenceRepository
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferences repositories.PreferenceRepository) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

// GestureRequest identifies what a taste gesture applies to
type GestureRequest struct {
	TrackID string `json:"track_id"`
	Artist  string `json:"artist,omitempty"`
}

// GetPreferences handles GET /api/v1/preferences/:user.
// Listeners with no stored gestures get an empty snapshot, not a 404.
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	userID := c.Param("user")

	state, err := h.preferences.Snapshot(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Failed to load preferences", "userID", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load preferences",
		})
		return
	}

	render.Preferences(c, state)
}

// Like handles POST /api/v1/preferences/:user/like
func (h *PreferenceHandler) Like(c *gin.Context) {
	h.applyGesture(c, "like", false, h.preferences.RecordLike)
}

// Dislike handles POST /api/v1/preferences/:user/dislike
func (h *PreferenceHandler) Dislike(c *gin.Context) {
	h.applyGesture(c, "dislike", false, h.preferences.RecordDislike)
}

// Play handles POST /api/v1/preferences/:user/play
func (h *PreferenceHandler) Play(c *gin.Context) {
	h.applyGesture(c, "play", true, func(ctx context.Context, userID, trackID, artist string) error {
		return h.preferences.RecordPlay(ctx, userID, trackID)
	})
}

// RemoveLike handles DELETE /api/v1/preferences/:user/like
func (h *PreferenceHandler) RemoveLike(c *gin.Context) {
	h.applyGesture(c, "remove like", false, h.preferences.RemoveLike)
}

// RemoveDislike handles DELETE /api/v1/preferences/:user/dislike
func (h *PreferenceHandler) RemoveDislike(c *gin.Context) {
	h.applyGesture(c, "remove dislike", false, h.preferences.RemoveDislike)
}

// applyGesture validates the request body and writes the gesture. Gestures
// are acknowledged with 202; the client never waits on feed recomputation.
func (h *PreferenceHandler) applyGesture(c *gin.Context, gesture string, requireTrack bool, write func(ctx context.Context, userID, trackID, artist string) error) {
	userID := c.Param("user")

	var req GestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if requireTrack && req.TrackID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "track_id is required",
		})
		return
	}
	if req.TrackID == "" && req.Artist == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "track_id or artist is required",
		})
		return
	}

	if err := write(c.Request.Context(), userID, req.TrackID, req.Artist); err != nil {
		slog.Error("Failed to record gesture",
			"gesture", gesture,
			"userID", userID,
			"trackID", req.TrackID,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to record gesture",
		})
		return
	}

	render.Accepted(c)
}
