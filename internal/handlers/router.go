package handlers

import (
	"github.com/gin-gonic/gin"

	"cratedig/internal/config"
	"cratedig/internal/middleware"
)

// Handlers bundles the API's route handlers
type Handlers struct {
	Feed        *FeedHandler
	Search      *SearchHandler
	Genres      *GenreHandler
	Preferences *PreferenceHandler
	Health      *HealthHandler
}

// NewRouter assembles the gin engine with middleware and routes
func NewRouter(cfg *config.Config, h Handlers) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/health", h.Health.Check)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/feed", h.Feed.GetFeed)
		v1.POST("/feed/extend", h.Feed.ExtendFeed)
		v1.GET("/search", h.Search.Search)
		v1.GET("/genres", h.Genres.GetGenres)

		prefs := v1.Group("/preferences")
		{
			prefs.GET("/:user", h.Preferences.GetPreferences)
			prefs.POST("/:user/like", h.Preferences.Like)
			prefs.POST("/:user/dislike", h.Preferences.Dislike)
			prefs.POST("/:user/play", h.Preferences.Play)
			prefs.DELETE("/:user/like", h.Preferences.RemoveLike)
			prefs.DELETE("/:user/dislike", h.Preferences.RemoveDislike)
		}
	}

	return router
}
