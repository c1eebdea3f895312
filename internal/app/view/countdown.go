package view

import (
	"context"
	"sync"
	"time"

	"github.com/tripdeck/tripsync/internal/domain"
	"github.com/tripdeck/tripsync/internal/ports/out/clock"
)

// Tracker keeps a live countdown to the next future event. It reads only the
// item list it was given and never triggers a fetch; feed it from a snapshot
// subscription.
//
// Every tick recomputes from wall-clock time, so once the remaining duration
// reaches zero the next future event is selected automatically (or the
// countdown clears when none remain). A backward clock jump transiently
// enlarges the remaining duration; no correction beyond recomputation is
// attempted.
type Tracker struct {
	clk      clock.Clock
	interval time.Duration

	mu        sync.Mutex
	items     []domain.TripItem
	next      domain.TripItem
	hasNext   bool
	remaining Countdown
}

// NewTracker builds a tracker ticking at the given interval. Intervals above
// one minute (or non-positive ones) are clamped to one minute so the display
// stays usable.
func NewTracker(clk clock.Clock, interval time.Duration) *Tracker {
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	return &Tracker{clk: clk, interval: interval}
}

// SetItems replaces the tracked item list and recomputes immediately.
// The input is copied during sorting; the caller's slice is not retained.
func (t *Tracker) SetItems(items []domain.TripItem) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = SortChronological(items)
	t.recomputeLocked()
}

// Tick recomputes the countdown from the current wall-clock time.
// Run calls this on every tick; tests call it directly.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recomputeLocked()
}

// Next returns the currently selected next event.
func (t *Tracker) Next() (domain.TripItem, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next, t.hasNext
}

// Countdown returns the remaining duration to the next event.
func (t *Tracker) Countdown() (Countdown, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining, t.hasNext
}

// Run ticks until the context is canceled.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

func (t *Tracker) recomputeLocked() {
	now := t.clk.Now()
	next, ok := NextEventAfter(t.items, now)
	if !ok {
		t.hasNext = false
		t.next = domain.TripItem{}
		t.remaining = Countdown{}
		return
	}
	remaining, ok := Remaining(*next.StartAt, now)
	if !ok {
		// StartAt is strictly after now, so Remaining cannot report false;
		// guard anyway rather than publish a zero countdown.
		t.hasNext = false
		t.next = domain.TripItem{}
		t.remaining = Countdown{}
		return
	}
	t.next = next
	t.hasNext = true
	t.remaining = remaining
}
