package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/fotoflix/internal/config"
	"github.com/timmy/fotoflix/internal/feed"
	"github.com/timmy/fotoflix/internal/logger"
	"github.com/timmy/fotoflix/internal/service"
	"github.com/timmy/fotoflix/internal/storage"
	"github.com/timmy/fotoflix/internal/unsplash"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "fotoflix-browse",
	})
	logger.SetDefaultLogger(appLogger)

	query := flag.String("query", "", "Search text; empty browses the default feed")
	pages := flag.Int("pages", 1, "Number of pages to fetch")
	download := flag.Bool("download", false, "Save every listed photo to the configured storage")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *pages < 1 {
		appLogger.WithField("pages", *pages).Fatal("pages must be at least 1")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

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
	defer controller.Close()

	controller.Reset(*query)
	for page := 1; page <= *pages; page++ {
		if page > 1 && !controller.NextPage() {
			break
		}
		if err := controller.FetchCurrentPage(ctx); err != nil {
			appLogger.WithError(err).WithField(logger.FieldPage, page).Error("Stopping after failed page")
			break
		}
	}

	state := controller.State()
	if err := renderPhotos(os.Stdout, state.Photos); err != nil {
		appLogger.WithError(err).Fatal("Failed to render table")
	}

	if !*download || len(state.Photos) == 0 {
		return
	}

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
	stats, err := downloader.SaveAll(ctx, state.Photos)
	if err != nil {
		appLogger.WithError(err).Error("Download interrupted")
	}
	appLogger.WithFields(logger.Fields{
		"total":   stats.Total,
		"saved":   stats.Saved,
		"skipped": stats.Skipped,
		"failed":  stats.Failed,
		"dupes":   stats.Duplicates,
	}).Info("Download completed")
}
