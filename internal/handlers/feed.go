package handlers

import (
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cratedig/internal/config"
	"cratedig/internal/feed"
	"cratedig/internal/handlers/render"
	"cratedig/internal/models"
	"cratedig/internal/repositories"
)

// FeedHandler handles feed composition requests
type FeedHandler struct {
	engine      *feed.Engine
	preferences repositories.PreferenceRepository
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(engine *feed.Engine, preferences repositories.PreferenceRepository) *FeedHandler {
	return &FeedHandler{
		engine:      engine,
		preferences: preferences,
	}
}

// ExtendFeedRequest asks for another page under an existing feed's identity.
// existing_ids carries the IDs already shown so the page never repeats them.
type ExtendFeedRequest struct {
	User         string   `json:"user,omitempty"`
	Seed         uint32   `json:"seed"`
	Genres       []int    `json:"genres,omitempty"`
	Size         int      `json:"size,omitempty"`
	CooldownDays *int     `json:"cooldown_days,omitempty"`
	ExistingIDs  []string `json:"existing_ids"`
}

// GetFeed handles GET /api/v1/feed
func (h *FeedHandler) GetFeed(c *gin.Context) {
	cfg := config.GetFeedConfig()

	seed, ok := parseSeed(c)
	if !ok {
		return
	}

	genres, err := parseGenreList(c.Query("genres"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid genres parameter",
			"details": err.Error(),
		})
		return
	}

	size, ok := parseBoundedInt(c, "size", cfg.DefaultFeedSize, cfg.MaxFeedSize)
	if !ok {
		return
	}

	cooldownDays, ok := parseCooldownDays(c, cfg.CooldownDays)
	if !ok {
		return
	}

	req := models.FeedRequest{
		Seed:           seed,
		GenreIDs:       genres,
		TargetSize:     size,
		CooldownWindow: time.Duration(cooldownDays) * 24 * time.Hour,
	}

	prefs := loadPreferences(c, h.preferences, c.Query("user"))

	tracks, err := h.engine.BuildDiscoveryFeed(c.Request.Context(), req, prefs)
	if err != nil {
		respondFeedError(c, err, seed)
		return
	}

	render.Feed(c, tracks, seed, genres)
}

// ExtendFeed handles POST /api/v1/feed/extend
func (h *FeedHandler) ExtendFeed(c *gin.Context) {
	var req ExtendFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	cfg := config.GetFeedConfig()

	size := req.Size
	if size <= 0 {
		size = cfg.DefaultFeedSize
	}
	if size > cfg.MaxFeedSize {
		size = cfg.MaxFeedSize
	}

	cooldownDays := cfg.CooldownDays
	if req.CooldownDays != nil {
		if *req.CooldownDays < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "cooldown_days cannot be negative",
			})
			return
		}
		cooldownDays = *req.CooldownDays
	}

	feedReq := models.FeedRequest{
		Seed:           req.Seed,
		GenreIDs:       req.Genres,
		TargetSize:     size,
		CooldownWindow: time.Duration(cooldownDays) * 24 * time.Hour,
	}

	existing := make([]models.Track, 0, len(req.ExistingIDs))
	for _, id := range req.ExistingIDs {
		if id == "" {
			continue
		}
		existing = append(existing, models.Track{ID: id})
	}

	prefs := loadPreferences(c, h.preferences, req.User)

	tracks, err := h.engine.ExtendFeed(c.Request.Context(), existing, feedReq, prefs)
	if err != nil {
		respondFeedError(c, err, req.Seed)
		return
	}

	// ExtendFeed returns the whole feed; the client only needs the new page
	render.Feed(c, tracks[len(existing):], req.Seed, req.Genres)
}

func respondFeedError(c *gin.Context, err error, seed uint32) {
	var invalid *feed.InvalidRequestError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid feed request",
			"details": invalid.Error(),
		})
		return
	}

	slog.Error("Failed to build feed", "seed", seed, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to build feed",
	})
}

// loadPreferences fetches the listener's snapshot. An anonymous request or
// a failing preference store degrade to an empty snapshot; a feed without
// personalization beats no feed at all.
func loadPreferences(c *gin.Context, repo repositories.PreferenceRepository, userID string) *models.PreferenceState {
	if userID == "" {
		return models.NewPreferenceState("")
	}

	state, err := repo.Snapshot(c.Request.Context(), userID)
	if err != nil {
		slog.Warn("Failed to load preferences, serving unpersonalized",
			"userID", userID,
			"error", err)
		return models.NewPreferenceState(userID)
	}
	return state
}

// parseSeed reads the seed parameter, minting a random one when absent so
// every anonymous visit gets a fresh shuffle. The response echoes the seed
// either way, which is what makes feeds replayable and extendable.
func parseSeed(c *gin.Context) (uint32, bool) {
	raw := c.Query("seed")
	if raw == "" {
		return rand.Uint32(), true
	}

	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "seed must be an unsigned 32-bit integer",
		})
		return 0, false
	}
	return uint32(parsed), true
}

func parseGenreList(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.New("'" + part + "' is not a genre ID")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseBoundedInt(c *gin.Context, name string, fallback, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": name + " must be a positive integer",
		})
		return 0, false
	}
	if value > max {
		value = max
	}
	return value, true
}

func parseCooldownDays(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("cooldown_days")
	if raw == "" {
		return fallback, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "cooldown_days must be zero or a positive integer",
		})
		return 0, false
	}
	return value, true
}
