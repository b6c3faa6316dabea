package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/timmy/fotoflix/internal/api/handler"
	"github.com/timmy/fotoflix/internal/api/middleware"
	"github.com/timmy/fotoflix/internal/config"
	"github.com/timmy/fotoflix/internal/logger"
	"github.com/timmy/fotoflix/internal/service"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	gallery *service.Gallery,
	downloader *service.Downloader,
	cfg *config.ServerConfig,
	log *logger.Logger,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(gallery)
	feedHandler := handler.NewFeedHandler(gallery)
	photoHandler := handler.NewPhotoHandler(gallery, downloader)
	favoritesHandler := handler.NewFavoritesHandler(gallery)
	eventsHandler := handler.NewEventsHandler(gallery)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// Feed
		v1.GET("/feed", feedHandler.GetFeed)
		v1.POST("/feed/search", feedHandler.Search)
		v1.POST("/feed/next", feedHandler.Next)
		v1.POST("/feed/scroll", feedHandler.Scroll)

		// Photos
		v1.GET("/photos/:id", photoHandler.GetPhoto)
		v1.POST("/photos/:id/favorite", photoHandler.ToggleFavorite)
		v1.GET("/photos/:id/share", photoHandler.Share)
		v1.GET("/photos/:id/download", photoHandler.Download)
		v1.POST("/photos/:id/save", photoHandler.Save)

		// Favorites
		v1.GET("/favorites", favoritesHandler.ListFavorites)

		// Events
		v1.GET("/events", eventsHandler.Stream)
	}

	return r
}
