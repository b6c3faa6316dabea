package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

const delay = 40 * time.Millisecond

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func TestRapidSchedulesCollapse(t *testing.T) {
	var calls int32
	d := New(delay, func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 10; i++ {
		d.Schedule()
		time.Sleep(delay / 8)
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
	time.Sleep(3 * delay)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
	if d.Pending() {
		t.Error("expected nothing pending after fire")
	}
}

func TestSeparatedSchedulesEachFire(t *testing.T) {
	var calls int32
	d := New(delay, func() { atomic.AddInt32(&calls, 1) })

	d.Schedule()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
	d.Schedule()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 2 })
}

func TestCancel(t *testing.T) {
	var calls int32
	d := New(delay, func() { atomic.AddInt32(&calls, 1) })

	if d.Cancel() {
		t.Error("Cancel reported a pending run on a fresh debouncer")
	}

	d.Schedule()
	if !d.Pending() {
		t.Fatal("expected pending run")
	}
	if !d.Cancel() {
		t.Error("Cancel did not report the pending run")
	}

	time.Sleep(3 * delay)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("cancelled run fired %d times", got)
	}
}

func TestStopIgnoresLaterSchedules(t *testing.T) {
	var calls int32
	d := New(delay, func() { atomic.AddInt32(&calls, 1) })

	d.Schedule()
	d.Stop()
	d.Schedule()

	time.Sleep(3 * delay)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("stopped debouncer fired %d times", got)
	}
}
