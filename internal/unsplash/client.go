// Package unsplash is a client for the two photo listing endpoints of the
// Unsplash API.
package unsplash

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/fotoflix/internal/domain"
	"github.com/timmy/fotoflix/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.unsplash.com"

	endpointFeed   = "feed"
	endpointSearch = "search"
)

// Config holds configuration for the client.
type Config struct {
	BaseURL   string
	AccessKey string
	PerPage   int
	Timeout   time.Duration
}

// Client fetches pages of photos. It is safe for concurrent use.
type Client struct {
	client  *resty.Client
	perPage int
}

// SearchResult is the body of the search endpoint.
type SearchResult struct {
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	Results    []domain.Photo `json:"results"`
}

type apiError struct {
	Errors []string `json:"errors"`
}

// NewClient creates a client. The access key is sent as the client_id query
// parameter on every request.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetHeader("Accept-Version", "v1")
	client.SetHeader("Accept", "application/json")
	client.SetQueryParam("client_id", cfg.AccessKey)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{client: client, perPage: cfg.PerPage}
}

// ListPhotos fetches one page of the default feed.
func (c *Client) ListPhotos(ctx context.Context, page int) ([]domain.Photo, error) {
	var photos []domain.Photo
	if err := c.get(ctx, endpointFeed, "/photos", c.pageParams(page), &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// SearchPhotos fetches one page of search results for query.
func (c *Client) SearchPhotos(ctx context.Context, query string, page int) ([]domain.Photo, error) {
	params := c.pageParams(page)
	params["query"] = query

	var result SearchResult
	if err := c.get(ctx, endpointSearch, "/search/photos", params, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *Client) pageParams(page int) map[string]string {
	params := map[string]string{"page": strconv.Itoa(page)}
	if c.perPage > 0 {
		params["per_page"] = strconv.Itoa(c.perPage)
	}
	return params
}

// get issues the request and decodes a 200 body into out. Every failure is
// wrapped with domain.ErrFetchFailure.
func (c *Client) get(ctx context.Context, endpoint, path string, params map[string]string, out interface{}) error {
	var apiErr apiError
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		ForceContentType("application/json").
		SetResult(out).
		SetError(&apiErr).
		Get(path)
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	// No raw response means the request never completed.
	if resp == nil || resp.RawResponse == nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%w: %s request: %w", domain.ErrFetchFailure, endpoint, err)
	}

	status := resp.StatusCode()
	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()

	if status != http.StatusOK {
		if len(apiErr.Errors) > 0 {
			return fmt.Errorf("%w: %s: HTTP %d: %s", domain.ErrFetchFailure, endpoint, status, strings.Join(apiErr.Errors, "; "))
		}
		return fmt.Errorf("%w: %s: HTTP %d", domain.ErrFetchFailure, endpoint, status)
	}

	if err != nil {
		return fmt.Errorf("%w: %s: malformed response: %w", domain.ErrFetchFailure, endpoint, err)
	}
	return nil
}
