package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/fotoflix/internal/logger"
	"github.com/timmy/fotoflix/internal/metrics"
	"github.com/timmy/fotoflix/internal/service"
)

// PhotoHandler serves single-photo actions: lightbox details, favorite
// toggling, sharing and downloading.
type PhotoHandler struct {
	gallery    *service.Gallery
	downloader *service.Downloader
}

// NewPhotoHandler creates a new photo handler.
func NewPhotoHandler(gallery *service.Gallery, downloader *service.Downloader) *PhotoHandler {
	return &PhotoHandler{gallery: gallery, downloader: downloader}
}

// GetPhoto handles GET /api/v1/photos/:id.
func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	view, err := h.gallery.PhotoView(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ToggleFavorite handles POST /api/v1/photos/:id/favorite.
func (h *PhotoHandler) ToggleFavorite(c *gin.Context) {
	id := c.Param("id")
	favorite, err := h.gallery.ToggleFavorite(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"favorite": favorite,
	})
}

// Share handles GET /api/v1/photos/:id/share.
func (h *PhotoHandler) Share(c *gin.Context) {
	url, err := h.gallery.ShareURL(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Download handles GET /api/v1/photos/:id/download by streaming the
// full-resolution image as an attachment.
func (h *PhotoHandler) Download(c *gin.Context) {
	photo, err := h.gallery.Photo(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	img, err := h.downloader.Fetch(c.Request.Context(), photo)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("stream", "error").Inc()
		respondError(c, err)
		return
	}
	metrics.DownloadsTotal.WithLabelValues("stream", "ok").Inc()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.Name))
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

// Save handles POST /api/v1/photos/:id/save.
func (h *PhotoHandler) Save(c *gin.Context) {
	photo, err := h.gallery.Photo(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.downloader.Save(c.Request.Context(), photo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":   photo.ID,
		"name": photo.DownloadName(),
		"url":  url,
	})
}

func respondError(c *gin.Context, err error) {
	ctx := logger.WithField(c.Request.Context(), logger.FieldPhotoID, c.Param("id"))
	switch {
	case errors.Is(err, service.ErrPhotoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
	case errors.Is(err, service.ErrNotImage):
		logger.CtxWarn(ctx, "Rejected download: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.CtxError(ctx, "Photo request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Download failed: " + err.Error()})
	}
}
