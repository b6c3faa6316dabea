package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/fotoflix/internal/domain"
	"github.com/timmy/fotoflix/internal/logger"
	"github.com/timmy/fotoflix/internal/metrics"
	"github.com/timmy/fotoflix/internal/storage"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// ErrNotImage is returned when a downloaded payload does not decode as an
// image.
var ErrNotImage = errors.New("downloaded payload is not an image")

// Image is a fetched full-resolution photo.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// DownloadConfig holds configuration for the downloader.
type DownloadConfig struct {
	Workers int
	Timeout time.Duration
}

// Downloader fetches full-resolution images and saves them to storage.
type Downloader struct {
	client  *resty.Client
	storage storage.ObjectStorage
	logger  *logger.Logger
	workers int
}

// SaveStats summarizes a SaveAll run. Duplicates counts entries that named
// a file already handled earlier in the same run.
type SaveStats struct {
	Total      int64
	Saved      int64
	Skipped    int64
	Failed     int64
	Duplicates int64
}

// NewDownloader creates a downloader writing to objectStorage.
func NewDownloader(objectStorage storage.ObjectStorage, log *logger.Logger, cfg *DownloadConfig) *Downloader {
	client := resty.New()
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Downloader{
		client:  client,
		storage: objectStorage,
		logger:  log.WithField(logger.FieldComponent, "download"),
		workers: workers,
	}
}

// Fetch downloads the full-resolution image of p.
func (d *Downloader) Fetch(ctx context.Context, p domain.Photo) (*Image, error) {
	if p.URLs.Full == "" {
		return nil, fmt.Errorf("photo %s has no full-resolution url", p.ID)
	}

	resp, err := d.client.R().SetContext(ctx).Get(p.URLs.Full)
	if err != nil {
		return nil, fmt.Errorf("failed to download photo %s: %w", p.ID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to download photo %s: HTTP %d", p.ID, resp.StatusCode())
	}

	data := resp.Body()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: photo %s: %v", ErrNotImage, p.ID, err)
	}

	return &Image{
		Name:        p.DownloadName(),
		ContentType: "image/" + format,
		Data:        data,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// Save stores the full-resolution image of p under its download name and
// returns its storage URL. Photos already stored are not fetched again.
func (d *Downloader) Save(ctx context.Context, p domain.Photo) (string, error) {
	url, _, err := d.save(ctx, p)
	return url, err
}

func (d *Downloader) save(ctx context.Context, p domain.Photo) (string, bool, error) {
	key := p.DownloadName()
	log := d.logger.WithField(logger.FieldPhotoID, p.ID)

	exists, err := d.storage.Exists(ctx, key)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("storage", "error").Inc()
		return "", false, err
	}
	if exists {
		metrics.DownloadsTotal.WithLabelValues("storage", "skipped").Inc()
		log.Debug("Photo already saved")
		return d.storage.GetURL(key), true, nil
	}

	start := time.Now()
	img, err := d.Fetch(ctx, p)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("storage", "error").Inc()
		return "", false, err
	}
	if err := d.storage.Upload(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType); err != nil {
		metrics.DownloadsTotal.WithLabelValues("storage", "error").Inc()
		return "", false, fmt.Errorf("failed to save photo %s: %w", p.ID, err)
	}

	metrics.DownloadsTotal.WithLabelValues("storage", "ok").Inc()
	log.WithFields(logger.Fields{
		logger.FieldSize:       len(img.Data),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		"width":                img.Width,
		"height":               img.Height,
	}).Info("Saved photo")
	return d.storage.GetURL(key), false, nil
}

// SaveAll saves photos with a bounded number of concurrent downloads. Each
// download name is fetched at most once. A failed photo is logged and
// counted; it does not stop the others.
func (d *Downloader) SaveAll(ctx context.Context, photos []domain.Photo) (*SaveStats, error) {
	stats := &SaveStats{Total: int64(len(photos))}

	seen := make(map[string]struct{}, len(photos))
	unique := make([]domain.Photo, 0, len(photos))
	for _, p := range photos {
		name := p.DownloadName()
		if _, dup := seen[name]; dup {
			stats.Duplicates++
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, p)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for _, p := range unique {
		p := p
		g.Go(func() error {
			_, skipped, err := d.save(gctx, p)
			switch {
			case err != nil:
				atomic.AddInt64(&stats.Failed, 1)
				d.logger.WithField(logger.FieldPhotoID, p.ID).WithError(err).Error("Failed to save photo")
			case skipped:
				atomic.AddInt64(&stats.Skipped, 1)
			default:
				atomic.AddInt64(&stats.Saved, 1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, ctx.Err()
}
