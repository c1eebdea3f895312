// Package trips orchestrates trip and item writes against the remote store
// and keeps the aggregation engine and selected-trip preference in step.
package trips

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tripdeck/tripsync/internal/domain"
	"github.com/tripdeck/tripsync/internal/ports/out/prefstore"
	"github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

// selectedTripKey is the preference key remembering which trip is current
// across restarts.
const selectedTripKey = "current_trip_id"

// Invalidator is the slice of the aggregation engine this service drives
// after writes and selection changes.
type Invalidator interface {
	Refetch(ctx context.Context)
	OnTripSelected(ctx context.Context, tripID domain.TripID)
}

type Service struct {
	store  tripstore.Store
	prefs  prefstore.Store
	engine Invalidator
	log    *slog.Logger
}

func NewService(store tripstore.Store, prefs prefstore.Store, engine Invalidator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, prefs: prefs, engine: engine, log: log}
}

// CreateTrip allocates a new trip for the user and triggers a refetch.
// Trips are only ever created through this explicit operation.
func (s *Service) CreateTrip(ctx context.Context, userID domain.UserID, name, description string) (domain.TripID, error) {
	name = domain.NormalizeName(name)
	if name == "" {
		return "", &Error{Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
	}
	if userID == "" {
		return "", &Error{Code: "VALIDATION_ERROR", Message: "invalid user", Details: map[string]any{"userId": "must be non-empty"}}
	}
	id, err := s.store.CreateTrip(ctx, userID, tripstore.NewTrip{Name: name, Description: description})
	if err != nil {
		return "", err
	}
	s.engine.Refetch(ctx)
	return id, nil
}

// CreateItem adds an item to the trip's sub-collection and triggers a refetch.
func (s *Service) CreateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) (domain.ItemID, error) {
	item.Type = domain.NormalizeItemType(string(item.Type))
	id, err := s.store.CreateItem(ctx, tripID, item)
	if err != nil {
		if errors.Is(err, tripstore.ErrNotFound) {
			return "", &Error{Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return "", err
	}
	s.engine.Refetch(ctx)
	return id, nil
}

// UpdateItem replaces the entire item record at its key. There are no partial
// patch semantics beyond what the caller constructs.
func (s *Service) UpdateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) error {
	if item.ID == "" {
		return &Error{Code: "VALIDATION_ERROR", Message: "invalid item id", Details: map[string]any{"id": "must be non-empty"}}
	}
	item.Type = domain.NormalizeItemType(string(item.Type))
	if err := s.store.UpdateItem(ctx, tripID, item); err != nil {
		if errors.Is(err, tripstore.ErrNotFound) {
			return &Error{Code: "ITEM_NOT_FOUND", Message: "item not found"}
		}
		return err
	}
	s.engine.Refetch(ctx)
	return nil
}

// DeleteItem removes the item and triggers a refetch.
func (s *Service) DeleteItem(ctx context.Context, tripID domain.TripID, itemID domain.ItemID) error {
	if err := s.store.DeleteItem(ctx, tripID, itemID); err != nil {
		if errors.Is(err, tripstore.ErrNotFound) {
			return &Error{Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return err
	}
	s.engine.Refetch(ctx)
	return nil
}

// SelectTrip makes the given trip current, persists the choice best-effort,
// and narrows the engine to it. An empty id clears the selection.
func (s *Service) SelectTrip(ctx context.Context, tripID domain.TripID) {
	if tripID == "" {
		if err := s.prefs.Remove(ctx, selectedTripKey); err != nil {
			s.log.Warn("clearing selected trip preference failed", "error", err)
		}
	} else {
		if err := s.prefs.Set(ctx, selectedTripKey, string(tripID)); err != nil {
			s.log.Warn("persisting selected trip preference failed", "error", err)
		}
	}
	s.engine.OnTripSelected(ctx, tripID)
}

// RestoreSelectedTrip loads the persisted selection, if any, and applies it
// to the engine. Preference failures are logged and treated as "no selection".
func (s *Service) RestoreSelectedTrip(ctx context.Context) (domain.TripID, bool) {
	v, ok, err := s.prefs.Get(ctx, selectedTripKey)
	if err != nil {
		s.log.Warn("reading selected trip preference failed", "error", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	id := domain.TripID(v)
	s.engine.OnTripSelected(ctx, id)
	return id, true
}
