package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/fotoflix/internal/api"
	"github.com/timmy/fotoflix/internal/config"
	"github.com/timmy/fotoflix/internal/favorites"
	"github.com/timmy/fotoflix/internal/feed"
	"github.com/timmy/fotoflix/internal/logger"
	"github.com/timmy/fotoflix/internal/service"
	"github.com/timmy/fotoflix/internal/storage"
	"github.com/timmy/fotoflix/internal/unsplash"
)

func main() {
	// CONFIG_PATH selects the config file in deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.GetDefault().WithError(err).Fatal("Failed to load config")
	}

	// Built after Load so LOG_* settings from .env apply.
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()
	if cfg.Unsplash.AccessKey == "" {
		appLogger.Warn("UNSPLASH_ACCESS_KEY is not set; upstream requests will be rejected")
	}

	ctx := context.Background()

	client := unsplash.NewClient(&unsplash.Config{
		BaseURL:   cfg.Unsplash.BaseURL,
		AccessKey: cfg.Unsplash.AccessKey,
		PerPage:   cfg.Unsplash.PerPage,
		Timeout:   cfg.Unsplash.Timeout,
	})

	controller := feed.NewController(client, appLogger, feed.Options{
		Debounce:        cfg.Feed.Debounce,
		ScrollThreshold: cfg.Feed.ScrollThreshold,
	})

	sharer, err := service.NewSharer(cfg.Share.BaseURL, cfg.Share.Message)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to configure sharing")
	}

	gallery := service.NewGallery(controller, favorites.NewSet(), sharer, service.NewEventHub(32))

	objectStorage, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := objectStorage.Ensure(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to prepare storage")
	}

	downloader := service.NewDownloader(objectStorage, appLogger, &service.DownloadConfig{
		Workers: cfg.Download.Workers,
		Timeout: cfg.Download.Timeout,
	})

	router := api.SetupRouter(gallery, downloader, &cfg.Server, appLogger)

	// Event streams never finish on their own; they end when this context
	// is cancelled at shutdown.
	streamCtx, stopStreams := context.WithCancel(ctx)
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return streamCtx },
	}
	srv.RegisterOnShutdown(stopStreams)

	controller.Start()

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":    cfg.Server.Port,
			"mode":    cfg.Server.Mode,
			"storage": cfg.Storage.Type,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}
	controller.Close()

	appLogger.Info("Server exited")
}
