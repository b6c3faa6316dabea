package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/fotoflix/internal/service"
)

// FavoritesHandler lists the session's favorites.
type FavoritesHandler struct {
	gallery *service.Gallery
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(gallery *service.Gallery) *FavoritesHandler {
	return &FavoritesHandler{gallery: gallery}
}

// ListFavorites handles GET /api/v1/favorites.
func (h *FavoritesHandler) ListFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, h.gallery.FavoritesView())
}
