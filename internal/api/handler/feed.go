package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/fotoflix/internal/domain"
	"github.com/timmy/fotoflix/internal/logger"
	"github.com/timmy/fotoflix/internal/service"
)

// FeedHandler exposes the feed controller.
type FeedHandler struct {
	gallery *service.Gallery
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(gallery *service.Gallery) *FeedHandler {
	return &FeedHandler{gallery: gallery}
}

// SearchRequest is the body of POST /api/v1/feed/search. An empty query
// returns to the default feed.
type SearchRequest struct {
	Query string `json:"query"`
}

// GetFeed handles GET /api/v1/feed.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	c.JSON(http.StatusOK, h.gallery.FeedView())
}

// Search handles POST /api/v1/feed/search.
func (h *FeedHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	logger.CtxInfo(c.Request.Context(), "Search submitted: query=%q", req.Query)
	h.gallery.Feed().SubmitQuery(req.Query)
	c.JSON(http.StatusAccepted, gin.H{"query": req.Query})
}

// Next handles POST /api/v1/feed/next.
func (h *FeedHandler) Next(c *gin.Context) {
	if !h.gallery.Feed().AdvancePage() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "A page is already loading",
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}

// Scroll handles POST /api/v1/feed/scroll.
func (h *FeedHandler) Scroll(c *gin.Context) {
	var pos domain.ScrollPosition
	if err := c.ShouldBindJSON(&pos); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	if pos.ViewportHeight < 0 || pos.ScrollY < 0 || pos.ContentHeight < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Scroll position must not be negative",
		})
		return
	}

	h.gallery.Feed().OnScroll(pos)
	c.Status(http.StatusAccepted)
}
