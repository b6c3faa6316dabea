package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/fotoflix/internal/domain"
	"github.com/timmy/fotoflix/internal/logger"
)

const testDebounce = 10 * time.Millisecond

type call struct {
	query string
	page  int
}

// fakeSource answers from respond and records every call. A query with a
// gate blocks until the gate is closed.
type fakeSource struct {
	mu      sync.Mutex
	calls   []call
	gates   map[string]chan struct{}
	respond func(query string, page int) ([]domain.Photo, error)
}

func newFakeSource(respond func(query string, page int) ([]domain.Photo, error)) *fakeSource {
	return &fakeSource{gates: make(map[string]chan struct{}), respond: respond}
}

func (f *fakeSource) ListPhotos(ctx context.Context, page int) ([]domain.Photo, error) {
	return f.fetch(ctx, "", page)
}

func (f *fakeSource) SearchPhotos(ctx context.Context, query string, page int) ([]domain.Photo, error) {
	return f.fetch(ctx, query, page)
}

func (f *fakeSource) fetch(ctx context.Context, query string, page int) ([]domain.Photo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{query, page})
	gate := f.gates[query]
	respond := f.respond
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return respond(query, page)
}

func (f *fakeSource) gate(query string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[query] = ch
	return ch
}

func (f *fakeSource) setRespond(fn func(query string, page int) ([]domain.Photo, error)) {
	f.mu.Lock()
	f.respond = fn
	f.mu.Unlock()
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) lastCall() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func photos(prefix string, n int) []domain.Photo {
	out := make([]domain.Photo, n)
	for i := range out {
		out[i] = domain.Photo{ID: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return out
}

func ids(ps []domain.Photo) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

// pageOf names each photo after its query and page so merge order is visible.
func pageOf(sizes map[int]int) func(string, int) ([]domain.Photo, error) {
	return func(query string, page int) ([]domain.Photo, error) {
		name := query
		if name == "" {
			name = "feed"
		}
		return photos(fmt.Sprintf("%s-p%d", name, page), sizes[page]), nil
	}
}

func newTestController(t *testing.T, src Source) *Controller {
	t.Helper()
	quiet := logger.New(&logger.Config{Level: "error", Output: io.Discard})
	c := NewController(src, quiet, Options{Debounce: testDebounce})
	t.Cleanup(c.Close)
	return c
}

func waitIdle(t *testing.T, c *Controller, wantLen int) domain.FeedState {
	t.Helper()
	require.Eventually(t, func() bool {
		s := c.State()
		return !s.Loading && len(s.Photos) == wantLen
	}, time.Second, 2*time.Millisecond)
	return c.State()
}

var bottom = domain.ScrollPosition{ViewportHeight: 800, ScrollY: 1199, ContentHeight: 2000}

func TestSearchScenarioCats(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 2, 2: 3}))
	c := newTestController(t, src)

	c.SubmitQuery("cats")
	state := waitIdle(t, c, 2)
	assert.Equal(t, []string{"cats-p1-0", "cats-p1-1"}, ids(state.Photos))
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, domain.FeedModeSearch, state.Mode())

	c.OnScroll(bottom)
	state = waitIdle(t, c, 5)
	assert.Equal(t, 2, state.Page)
	assert.Equal(t, []string{"cats-p1-0", "cats-p1-1", "cats-p2-0", "cats-p2-1", "cats-p2-2"}, ids(state.Photos))
	assert.Equal(t, call{"cats", 2}, src.lastCall())
}

func TestFreshSearchReplacesPriorState(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 4, 2: 4}))
	c := newTestController(t, src)

	c.Start()
	waitIdle(t, c, 4)
	c.AdvancePage()
	waitIdle(t, c, 8)

	for _, q := range []string{"dogs", "cats"} {
		c.SubmitQuery(q)
		require.Eventually(t, func() bool {
			s := c.State()
			return s.Query == q && !s.Loading && len(s.Photos) == 4
		}, time.Second, 2*time.Millisecond)

		state := c.State()
		assert.Equal(t, 1, state.Page)
		assert.Equal(t, ids(photos(q+"-p1", 4)), ids(state.Photos))
	}
}

func TestSearchPaginationConcatenatesPagesInOrder(t *testing.T) {
	sizes := map[int]int{1: 3, 2: 2, 3: 0, 4: 5}
	src := newFakeSource(pageOf(sizes))
	c := newTestController(t, src)

	c.SubmitQuery("mountains")
	waitIdle(t, c, 3)

	var want []string
	want = append(want, ids(photos("mountains-p1", 3))...)
	prevLen := 3
	for page := 2; page <= 4; page++ {
		require.True(t, c.AdvancePage())
		want = append(want, ids(photos(fmt.Sprintf("mountains-p%d", page), sizes[page]))...)
		require.Eventually(t, func() bool {
			s := c.State()
			return s.Page == page && !s.Loading && src.callCount() == page
		}, time.Second, 2*time.Millisecond)

		state := c.State()
		assert.GreaterOrEqual(t, len(state.Photos), prevLen)
		assert.Equal(t, want, ids(state.Photos))
		prevLen = len(state.Photos)
	}
}

func TestDefaultFeedAlwaysAppendsAndKeepsDuplicates(t *testing.T) {
	first := photos("feed", 30)
	second := photos("more", 30)
	second[7].ID = first[3].ID

	src := newFakeSource(func(query string, page int) ([]domain.Photo, error) {
		if page == 1 {
			return first, nil
		}
		return second, nil
	})
	c := newTestController(t, src)

	c.Start()
	waitIdle(t, c, 30)

	c.OnScroll(bottom)
	state := waitIdle(t, c, 60)

	assert.Equal(t, 2, state.Page)
	assert.Equal(t, domain.FeedModeDefault, state.Mode())
	assert.Equal(t, append(ids(first), ids(second)...), ids(state.Photos))
	assert.Equal(t, first[3].ID, state.Photos[37].ID)
}

func TestEmptyQueryReturnsToDefaultFeed(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 2}))
	c := newTestController(t, src)

	c.SubmitQuery("cats")
	waitIdle(t, c, 2)

	c.SubmitQuery("")
	require.Eventually(t, func() bool {
		s := c.State()
		return s.Query == "" && !s.Loading && len(s.Photos) == 2
	}, time.Second, 2*time.Millisecond)
	state := c.State()
	assert.Equal(t, domain.FeedModeDefault, state.Mode())
	assert.Equal(t, ids(photos("feed-p1", 2)), ids(state.Photos))
	assert.Equal(t, call{"", 1}, src.lastCall())
}

func TestFetchFailureLeavesListUnchanged(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 2}))
	c := newTestController(t, src)

	c.SubmitQuery("cats")
	before := waitIdle(t, c, 2)

	boom := errors.New("connection reset")
	src.setRespond(func(string, int) ([]domain.Photo, error) { return nil, boom })

	err := c.FetchCurrentPage(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.ErrorIs(t, err, boom)

	after := c.State()
	assert.False(t, after.Loading)
	assert.Equal(t, before.Photos, after.Photos)
	assert.Equal(t, before.Page, after.Page)
}

func TestAdvancePageSuppressedWhileLoading(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 1, 2: 1}))
	release := src.gate("")
	c := newTestController(t, src)

	c.Start()
	require.Eventually(t, c.Loading, time.Second, time.Millisecond)

	for i := 0; i < 5; i++ {
		assert.False(t, c.AdvancePage())
		c.OnScroll(bottom)
	}
	time.Sleep(5 * testDebounce)
	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, 1, c.State().Page)

	close(release)
	waitIdle(t, c, 1)
	assert.Equal(t, 1, src.callCount())

	assert.True(t, c.AdvancePage())
	waitIdle(t, c, 2)
	assert.Equal(t, 2, src.callCount())
}

func TestSubmitQueryDebounceCollapses(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 1}))
	c := newTestController(t, src)

	for _, q := range []string{"c", "ca", "cat", "cats"} {
		c.SubmitQuery(q)
	}
	waitIdle(t, c, 1)
	time.Sleep(3 * testDebounce)

	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, call{"cats", 1}, src.lastCall())
}

func TestScrollAwayFromBottomDoesNotAdvance(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 3}))
	c := newTestController(t, src)

	c.Start()
	waitIdle(t, c, 3)

	c.OnScroll(domain.ScrollPosition{ViewportHeight: 800, ScrollY: 100, ContentHeight: 2000})
	time.Sleep(5 * testDebounce)

	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, 1, c.State().Page)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 2}))
	releaseDogs := src.gate("dogs")
	c := newTestController(t, src)

	c.SubmitQuery("dogs")
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)

	c.SubmitQuery("cats")
	require.Eventually(t, func() bool {
		s := c.State()
		return s.Query == "cats" && len(s.Photos) == 2
	}, time.Second, 2*time.Millisecond)
	assert.True(t, c.Loading(), "dogs request is still outstanding")

	close(releaseDogs)
	state := waitIdle(t, c, 2)
	assert.Equal(t, ids(photos("cats-p1", 2)), ids(state.Photos))
	assert.Equal(t, "cats", state.Query)
}

func TestOnChangeReceivesCopies(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 2}))
	c := newTestController(t, src)

	var mu sync.Mutex
	var seen []domain.FeedState
	c.OnChange(func(s domain.FeedState) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	c.Start()
	waitIdle(t, c, 2)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	last := seen[len(seen)-1]
	assert.False(t, last.Loading)
	require.Len(t, last.Photos, 2)

	last.Photos[0].ID = "mutated"
	assert.NotEqual(t, "mutated", c.State().Photos[0].ID)
}

func TestLookup(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 2}))
	c := newTestController(t, src)

	c.Start()
	waitIdle(t, c, 2)

	p, ok := c.Lookup("feed-p1-1")
	assert.True(t, ok)
	assert.Equal(t, "feed-p1-1", p.ID)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestSynchronousDriving(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 2, 2: 3}))
	c := newTestController(t, src)
	ctx := context.Background()

	c.Reset("cats")
	require.NoError(t, c.FetchCurrentPage(ctx))
	require.True(t, c.NextPage())
	require.NoError(t, c.FetchCurrentPage(ctx))

	state := c.State()
	assert.Equal(t, 2, state.Page)
	assert.False(t, state.Loading)
	assert.Equal(t, append(ids(photos("cats-p1", 2)), ids(photos("cats-p2", 3))...), ids(state.Photos))

	c.Reset("")
	state = c.State()
	assert.Equal(t, 1, state.Page)
	assert.Empty(t, state.Photos)
	assert.Equal(t, domain.FeedModeDefault, state.Mode())
	assert.Equal(t, 2, src.callCount())
}

func TestAdvanceRightAfterFreshSearchIsSuppressed(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 2, 2: 3}))
	release := src.gate("cats")
	c := newTestController(t, src)

	c.mu.Lock()
	c.pending = "cats"
	c.mu.Unlock()

	// The submit timer fires, then the scroll timer fires before the page-1
	// request has been answered.
	c.startSearch()
	assert.True(t, c.Loading(), "loading must be set before the fetch goroutine runs")
	assert.False(t, c.AdvancePage())
	c.mu.Lock()
	c.scroll = &bottom
	c.mu.Unlock()
	c.advanceIfIdle()
	assert.Equal(t, 1, c.State().Page)

	close(release)
	state := waitIdle(t, c, 2)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, ids(photos("cats-p1", 2)), ids(state.Photos))

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, []call{{"cats", 1}}, src.calls)
}

func TestStartSetsLoadingBeforeReturning(t *testing.T) {
	src := newFakeSource(pageOf(map[int]int{1: 1}))
	release := src.gate("")
	c := newTestController(t, src)

	c.Start()
	assert.True(t, c.Loading())
	assert.False(t, c.AdvancePage())

	close(release)
	state := waitIdle(t, c, 1)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, 1, src.callCount())
}

// lockedBuffer lets fetch goroutines and the test share log output.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFailureOfAbandonedSearchIsDiscardedQuietly(t *testing.T) {
	src := newFakeSource(func(query string, page int) ([]domain.Photo, error) {
		if query == "dogs" {
			return nil, errors.New("connection reset")
		}
		return photos(query, 2), nil
	})
	releaseDogs := src.gate("dogs")

	var out lockedBuffer
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Output: &out})
	c := NewController(src, log, Options{Debounce: testDebounce})
	t.Cleanup(c.Close)

	c.SubmitQuery("dogs")
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)
	c.SubmitQuery("cats")
	require.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, time.Millisecond)

	close(releaseDogs)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Discarded response for abandoned search")
	}, time.Second, 2*time.Millisecond)

	state := waitIdle(t, c, 2)
	assert.Equal(t, "cats", state.Query)
	assert.NotContains(t, out.String(), `"level":"error"`)
}
