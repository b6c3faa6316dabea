package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Upstream photo API
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fotoflix_upstream_requests_total",
			Help: "Total number of requests to the photo API",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fotoflix_upstream_request_duration_seconds",
			Help:    "Photo API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Feed controller
	FeedPhotos = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fotoflix_feed_photos",
			Help: "Number of photos currently in the feed",
		},
	)

	FeedMerges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fotoflix_feed_merges_total",
			Help: "Completed page fetches by merge outcome",
		},
		[]string{"outcome"}, // replace, append, stale, failed
	)

	Favorites = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fotoflix_favorites",
			Help: "Number of photos marked as favorite",
		},
	)

	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fotoflix_downloads_total",
			Help: "Total number of photo downloads",
		},
		[]string{"target", "status"},
	)
)
