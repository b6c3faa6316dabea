package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/fotoflix/internal/service"
)

// HealthHandler reports liveness along with a summary of the session.
type HealthHandler struct {
	gallery *service.Gallery
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(gallery *service.Gallery) *HealthHandler {
	return &HealthHandler{gallery: gallery, started: time.Now()}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	state := h.gallery.Feed().State()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"uptime_s":    int64(time.Since(h.started).Seconds()),
		"mode":        state.Mode(),
		"page":        state.Page,
		"loading":     state.Loading,
		"photos":      len(state.Photos),
		"favorites":   h.gallery.FavoritesView().Total,
		"subscribers": h.gallery.Events().Subscribers(),
	})
}
