// Package syncer owns the aggregation cycle that reconciles the remote trip
// tree into one consistent in-memory snapshot.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tripdeck/tripsync/internal/domain"
	"github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

// State is the engine's fetch state machine. Transitions are triggered only
// by explicit calls (OnIdentityChanged, OnTripSelected, Refetch), never by
// incidental value comparison.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// Engine fetches the trip list for the current identity, the item set per
// trip, and publishes the flattened result as a snapshot.
//
// Every cycle captures a monotonic generation token; a cycle's result is
// applied only when its token still matches the latest issued one, so a slow
// stale cycle can never overwrite a newer snapshot (last-issued-wins).
//
// A failed cycle retains the previously published snapshot and records the
// error; partial results from the failing cycle are discarded.
type Engine struct {
	store tripstore.Store
	log   *slog.Logger

	mu        sync.Mutex
	gen       uint64
	state     State
	userID    domain.UserID
	selected  domain.TripID
	snap      domain.Snapshot
	err       error
	listeners []func()
	closed    bool
}

func New(store tripstore.Store, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store: store,
		log:   log,
		state: StateIdle,
		snap:  domain.EmptySnapshot(),
	}
}

// Snapshot returns the currently published snapshot. The engine never mutates
// a published snapshot; callers must not either.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the error recorded by the most recent failed cycle, or nil.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// SelectedTrip returns the trip the engine is currently restricted to, if any.
func (e *Engine) SelectedTrip() (domain.TripID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, e.selected != ""
}

// Subscribe registers a listener invoked after every state or snapshot
// change. Returns an unsubscribe func.
func (e *Engine) Subscribe(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
	idx := len(e.listeners) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.listeners[idx] = nil
	}
}

// Close marks the engine dead. Results from in-flight cycles are discarded
// instead of being applied to a snapshot nobody observes.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// OnIdentityChanged records the new identity and runs a full cycle. An empty
// identity resets the snapshot to empty collections; that is a valid state,
// not an error.
func (e *Engine) OnIdentityChanged(ctx context.Context, userID domain.UserID) {
	e.mu.Lock()
	e.userID = userID
	e.mu.Unlock()
	e.runCycle(ctx)
}

// OnTripSelected restricts item aggregation to the given trip and refetches.
// An empty trip id clears the restriction.
func (e *Engine) OnTripSelected(ctx context.Context, tripID domain.TripID) {
	e.mu.Lock()
	e.selected = tripID
	e.mu.Unlock()
	e.runCycle(ctx)
}

// Refetch repeats the whole aggregation cycle. There is no partial refresh;
// every refetch is a full re-pull.
func (e *Engine) Refetch(ctx context.Context) {
	e.runCycle(ctx)
}

func (e *Engine) runCycle(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.gen++
	gen := e.gen
	uid := e.userID
	sel := e.selected

	if uid == "" {
		e.snap = domain.EmptySnapshot()
		e.state = StateIdle
		e.err = nil
		e.mu.Unlock()
		e.notify()
		return
	}

	e.state = StateFetching
	e.mu.Unlock()
	e.notify()

	snap, err := e.fetch(ctx, uid, sel)
	e.publish(gen, snap, err)
}

func (e *Engine) fetch(ctx context.Context, uid domain.UserID, sel domain.TripID) (domain.Snapshot, error) {
	trips, err := e.store.ListTripsForUser(ctx, uid)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list trips: %w", err)
	}

	// Item fetches for distinct trips run concurrently, but the flatten step
	// waits for all of them: the cycle publishes all-or-nothing.
	itemsByTrip := make([][]domain.TripItem, len(trips))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range trips {
		if sel != "" && t.ID != sel {
			continue
		}
		i, t := i, t
		g.Go(func() error {
			items, err := e.store.ListItems(gctx, t.ID)
			if err != nil {
				return fmt.Errorf("list items for trip %s: %w", t.ID, err)
			}
			tagged := make([]domain.TripItem, 0, len(items))
			for _, it := range items {
				// Items do not self-report their owning trip.
				it.TripID = t.ID
				tagged = append(tagged, domain.WithDerivedInstants(it))
			}
			itemsByTrip[i] = tagged
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.EmptySnapshot()
	snap.Trips = trips
	for i := range trips {
		snap.TripItems = append(snap.TripItems, itemsByTrip[i]...)
		// Flat merge: later trips silently overwrite earlier ones on
		// participant id collision.
		for id, p := range trips[i].Participants {
			p.ID = id
			snap.Participants[id] = p
		}
	}
	return snap, nil
}

func (e *Engine) publish(gen uint64, snap domain.Snapshot, err error) {
	e.mu.Lock()
	if e.closed || gen != e.gen {
		// A newer cycle was issued while this one was in flight; discard.
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.state = StateFailed
		e.err = err
		e.mu.Unlock()
		e.notify()
		e.log.Error("aggregation cycle failed", "error", err)
		return
	}
	e.state = StateReady
	e.err = nil
	e.snap = snap
	e.mu.Unlock()
	e.notify()
	e.log.Info("snapshot published",
		"trips", len(snap.Trips),
		"items", len(snap.TripItems),
		"participants", len(snap.Participants),
	)
}

func (e *Engine) notify() {
	e.mu.Lock()
	listeners := append(make([]func(), 0, len(e.listeners)), e.listeners...)
	e.mu.Unlock()
	for _, fn := range listeners {
		if fn != nil {
			fn()
		}
	}
}
