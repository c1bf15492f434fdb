package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"cratedig/internal/cache"
	"cratedig/internal/services"
)

const healthCheckTimeout = 5 * time.Second

// databasePinger is the part of models.Database the health probe needs
type databasePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports dependency availability
type HealthHandler struct {
	db      databasePinger
	cache   cache.Cache
	sources []services.TrackSource
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db databasePinger, appCache cache.Cache, sources []services.TrackSource) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   appCache,
		sources: sources,
	}
}

// ComponentHealth is one dependency's probe result
type ComponentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the health endpoint payload
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	CheckedAt  time.Time                  `json:"checked_at"`
}

type healthProbe struct {
	name     string
	critical bool
	check    func(ctx context.Context) error
}

// Check handles GET /health. Mongo and the cache are load-bearing, so
// either failing reports the service down; a catalog source failing only
// degrades it because feeds still build from the remaining sources.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	probes := []healthProbe{
		{name: "mongodb", critical: true, check: h.db.Ping},
		{name: "valkey", critical: true, check: h.cache.Health},
	}
	for _, source := range h.sources {
		probes = append(probes, healthProbe{
			name:  "source:" + source.Name(),
			check: source.Health,
		})
	}

	results := make([]error, len(probes))
	var wg sync.WaitGroup
	for i, probe := range probes {
		wg.Add(1)
		go func(i int, probe healthProbe) {
			defer wg.Done()
			results[i] = probe.check(ctx)
		}(i, probe)
	}
	wg.Wait()

	status := "ok"
	components := make(map[string]ComponentHealth, len(probes))
	for i, probe := range probes {
		if err := results[i]; err != nil {
			slog.Warn("Health check failed", "component", probe.name, "error", err)
			components[probe.name] = ComponentHealth{Status: "down", Error: err.Error()}
			if probe.critical {
				status = "down"
			} else if status == "ok" {
				status = "degraded"
			}
			continue
		}
		components[probe.name] = ComponentHealth{Status: "ok"}
	}

	code := http.StatusOK
	if status == "down" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:     status,
		Components: components,
		CheckedAt:  time.Now().UTC(),
	})
}
