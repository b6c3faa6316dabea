package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/fotoflix/internal/api/middleware"
	"github.com/timmy/fotoflix/internal/service"
)

const heartbeatInterval = 15 * time.Second

// EventsHandler streams feed and favorite changes as server-sent events.
type EventsHandler struct {
	gallery *service.Gallery
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(gallery *service.Gallery) *EventsHandler {
	return &EventsHandler{gallery: gallery}
}

// Stream handles GET /api/v1/events. The current feed is sent first so a
// client can render before the next change arrives.
func (h *EventsHandler) Stream(c *gin.Context) {
	events, cancel := h.gallery.Events().Subscribe()
	defer cancel()

	log := middleware.GetLogger(c)
	log.Debug("Event stream opened")

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(service.EventFeed, h.gallery.FeedView())
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case e, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(e.Type, e.Data)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})
	log.Debug("Event stream closed")
}
