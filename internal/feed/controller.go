// Package feed implements the paginated photo-feed controller: it tracks the
// query, page and loading flag, picks the upstream endpoint, and merges
// arriving pages into the displayed list.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/timmy/fotoflix/internal/debounce"
	"github.com/timmy/fotoflix/internal/domain"
	"github.com/timmy/fotoflix/internal/logger"
	"github.com/timmy/fotoflix/internal/metrics"
)

const (
	DefaultDebounce        = 300 * time.Millisecond
	DefaultScrollThreshold = 2.0
)

// Source is the upstream photo API.
type Source interface {
	ListPhotos(ctx context.Context, page int) ([]domain.Photo, error)
	SearchPhotos(ctx context.Context, query string, page int) ([]domain.Photo, error)
}

// Options tunes the controller. Zero values select the defaults.
type Options struct {
	Debounce        time.Duration
	ScrollThreshold float64
}

// Controller owns a FeedState. All mutation goes through its methods; State
// hands out copies.
//
// Every fresh search bumps a generation counter. A response issued under an
// older generation is discarded instead of merged, so a slow reply to an
// abandoned query cannot overwrite newer results.
type Controller struct {
	source    Source
	log       *logger.Logger
	threshold float64

	mu       sync.Mutex
	state    domain.FeedState
	inflight int
	pending  string                 // query text awaiting the submit debounce
	scroll   *domain.ScrollPosition // last reported position
	advance  bool                   // explicit advance requested
	onChange func(domain.FeedState)
	closed   bool

	submit   *debounce.Debouncer
	scroller *debounce.Debouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a controller in default feed mode at page 1. Call
// Start to load the first page.
func NewController(source Source, log *logger.Logger, opts Options) *Controller {
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.ScrollThreshold == 0 {
		opts.ScrollThreshold = DefaultScrollThreshold
	}
	if log == nil {
		log = logger.GetDefault()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		source:    source,
		log:       log.WithField(logger.FieldComponent, "feed"),
		threshold: opts.ScrollThreshold,
		state:     domain.FeedState{Page: 1},
		ctx:       ctx,
		cancel:    cancel,
	}
	c.submit = debounce.New(opts.Debounce, c.startSearch)
	c.scroller = debounce.New(opts.Debounce, c.advanceIfIdle)
	return c
}

// OnChange registers fn to receive a copy of the state after every change.
// fn is called without the controller lock held.
func (c *Controller) OnChange(fn func(domain.FeedState)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Start fetches the current page in the background.
func (c *Controller) Start() {
	c.mu.Lock()
	c.launchLocked()
	snapshot, notify := c.snapshotLocked()
	c.mu.Unlock()
	if notify != nil {
		notify(snapshot)
	}
}

// State returns a copy of the current state.
func (c *Controller) State() domain.FeedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Loading reports whether a fetch is outstanding.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Loading
}

// Lookup returns the first displayed photo with the given id.
func (c *Controller) Lookup(id string) (domain.Photo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.state.Photos {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Photo{}, false
}

// SubmitQuery starts a fresh search for text once submissions have been
// quiet for the debounce delay. Only the most recent text is used. An empty
// text returns to the default feed.
func (c *Controller) SubmitQuery(text string) {
	c.mu.Lock()
	c.pending = text
	c.mu.Unlock()
	c.submit.Schedule()
}

// AdvancePage requests the next page once the debounce delay passes. It is
// a no-op while a fetch is outstanding and reports whether the request was
// accepted; loading is checked again when the delay expires.
func (c *Controller) AdvancePage() bool {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return false
	}
	c.advance = true
	c.mu.Unlock()
	c.scroller.Schedule()
	return true
}

// OnScroll records the renderer's scroll position. When the debounce delay
// passes, the next page is requested if the viewport is within the scroll
// threshold of the bottom and nothing is loading.
func (c *Controller) OnScroll(pos domain.ScrollPosition) {
	c.mu.Lock()
	c.scroll = &pos
	c.mu.Unlock()
	c.scroller.Schedule()
}

// Close cancels pending timers and in-flight fetches and waits for fetch
// goroutines to return.
func (c *Controller) Close() {
	c.submit.Stop()
	c.scroller.Stop()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

// Reset applies a fresh search for text immediately, without the debounce
// and without fetching: page returns to 1 and the list is cleared. Callers
// that drive the controller synchronously follow it with FetchCurrentPage.
func (c *Controller) Reset(text string) {
	c.submit.Cancel()
	c.mu.Lock()
	c.pending = text
	c.resetLocked()
	snapshot, notify := c.snapshotLocked()
	c.mu.Unlock()

	c.logReset(snapshot.Query, snapshot.Seq)
	if notify != nil {
		notify(snapshot)
	}
}

// NextPage increments the page immediately, without the debounce and
// without fetching. It reports false while a fetch is outstanding.
func (c *Controller) NextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Loading {
		return false
	}
	c.state.Page++
	return true
}

func (c *Controller) startSearch() {
	c.mu.Lock()
	c.resetLocked()
	c.launchLocked()
	query, seq := c.state.Query, c.state.Seq
	snapshot, notify := c.snapshotLocked()
	c.mu.Unlock()

	c.logReset(query, seq)
	if notify != nil {
		notify(snapshot)
	}
}

func (c *Controller) resetLocked() {
	c.state.Query = c.pending
	c.state.Page = 1
	c.state.Photos = nil
	c.state.Seq++
	c.advance = false
}

func (c *Controller) logReset(query string, seq uint64) {
	c.log.WithFields(logger.Fields{
		logger.FieldQuery: query,
		logger.FieldSeq:   seq,
	}).Info("Starting fresh search")
	metrics.FeedPhotos.Set(0)
}

func (c *Controller) advanceIfIdle() {
	c.mu.Lock()
	requested := c.advance || (c.scroll != nil && c.scroll.NearBottom(c.threshold))
	c.advance = false
	c.scroll = nil
	if !requested || c.state.Loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Page++
	page := c.state.Page
	c.launchLocked()
	snapshot, notify := c.snapshotLocked()
	c.mu.Unlock()

	c.log.WithField(logger.FieldPage, page).Debug("Advancing page")
	if notify != nil {
		notify(snapshot)
	}
}

// fetchRequest is the page a fetch was issued for.
type fetchRequest struct {
	query string
	page  int
	seq   uint64
}

// beginLocked marks a fetch of the current page as in flight. Loading is set
// in the same critical section that decided to fetch, so no advance can slip
// in between. c.mu must be held.
func (c *Controller) beginLocked() fetchRequest {
	c.inflight++
	c.state.Loading = true
	return fetchRequest{query: c.state.Query, page: c.state.Page, seq: c.state.Seq}
}

// launchLocked begins a fetch of the current page and issues it on its own
// goroutine. It does nothing once the controller is closed. c.mu must be
// held.
func (c *Controller) launchLocked() {
	if c.closed {
		return
	}
	req := c.beginLocked()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		// Failures are already logged by fetch.
		_ = c.fetch(c.ctx, req)
	}()
}

// FetchCurrentPage fetches the page named by the current query and page
// number and merges it:
//
//   - search, page 1: the list is replaced
//   - search, page > 1: the page is appended
//   - default feed, any page: the page is appended
//
// On failure the list is left unchanged and the error, wrapping
// domain.ErrFetchFailure, is returned after being logged. Responses that
// belong to an abandoned search are dropped.
func (c *Controller) FetchCurrentPage(ctx context.Context) error {
	c.mu.Lock()
	req := c.beginLocked()
	snapshot, notify := c.snapshotLocked()
	c.mu.Unlock()
	if notify != nil {
		notify(snapshot)
	}
	return c.fetch(ctx, req)
}

// fetch issues a request begun by beginLocked and merges its result.
func (c *Controller) fetch(ctx context.Context, req fetchRequest) error {
	query, page, seq := req.query, req.page, req.seq
	log := c.log.WithFields(logger.Fields{
		logger.FieldQuery: query,
		logger.FieldPage:  page,
		logger.FieldSeq:   seq,
	})
	ctx = log.WithContext(ctx)

	start := time.Now()
	var (
		photos []domain.Photo
		err    error
	)
	if query != "" {
		photos, err = c.source.SearchPhotos(ctx, query, page)
	} else {
		photos, err = c.source.ListPhotos(ctx, page)
	}
	if err != nil && !errors.Is(err, domain.ErrFetchFailure) {
		err = fmt.Errorf("%w: %w", domain.ErrFetchFailure, err)
	}

	c.mu.Lock()
	c.inflight--
	c.state.Loading = c.inflight > 0
	outcome := c.mergeLocked(query, page, seq, photos, err)
	total := len(c.state.Photos)
	snapshot, notify := c.snapshotLocked()
	c.mu.Unlock()

	metrics.FeedMerges.WithLabelValues(outcome).Inc()
	entry := logger.With(nil).
		WithDuration(time.Since(start).Milliseconds()).
		WithCount(len(photos))
	switch outcome {
	case outcomeFailed:
		log.WithError(err).Error("Failed to fetch photos")
	case outcomeStale:
		if err != nil {
			entry = entry.With(logger.Fields{"error": err.Error()})
		}
		entry.Debug(ctx, "Discarded response for abandoned search")
	default:
		metrics.FeedPhotos.Set(float64(total))
		entry.Info(ctx, "Merged page (%s), feed now has %d photos", outcome, total)
	}

	if notify != nil {
		notify(snapshot)
	}

	if outcome == outcomeFailed {
		return err
	}
	return nil
}

const (
	outcomeReplace = "replace"
	outcomeAppend  = "append"
	outcomeStale   = "stale"
	outcomeFailed  = "failed"
)

func (c *Controller) mergeLocked(query string, page int, seq uint64, photos []domain.Photo, err error) string {
	if seq != c.state.Seq {
		return outcomeStale
	}
	if err != nil {
		return outcomeFailed
	}
	if query != "" && page == 1 {
		c.state.Photos = append([]domain.Photo(nil), photos...)
		return outcomeReplace
	}
	c.state.Photos = append(c.state.Photos, photos...)
	return outcomeAppend
}

func (c *Controller) snapshotLocked() (domain.FeedState, func(domain.FeedState)) {
	if c.onChange == nil {
		return domain.FeedState{}, nil
	}
	return c.state.Clone(), c.onChange
}
