package tripstore

import (
	"context"

	"github.com/tripdeck/tripsync/internal/domain"
)

// NewTrip carries the caller-supplied fields for trip creation; the store
// allocates the identifier and writes an empty item set.
type NewTrip struct {
	Name        string
	Description string
}

// Store provides access to the remote hierarchical trip store.
//
// Not-found semantics:
//   - ListTripsForUser and ListItems treat an absent user/trip/item set as a
//     valid empty result, never an error.
//   - GetTrip and GetUserData return ErrNotFound for point lookups on absent
//     records; callers treat that as "absent", not a failure.
//
// Items returned by ListItems carry the store key as their ID but do not
// self-report the owning trip; the aggregation layer tags them.
type Store interface {
	// ListTripsForUser returns every trip referenced by the user's trip-id
	// list. A user with no trips (or no user record) yields an empty slice.
	// Trip ids that no longer resolve are skipped.
	ListTripsForUser(ctx context.Context, userID domain.UserID) ([]domain.Trip, error)

	GetTrip(ctx context.Context, tripID domain.TripID) (domain.Trip, error)

	ListItems(ctx context.Context, tripID domain.TripID) ([]domain.TripItem, error)

	// CreateTrip allocates a new unique trip id, writes the trip record with
	// an empty item set, and appends the id to the user's trip-id list.
	// The two writes are not guaranteed atomic on every backend.
	CreateTrip(ctx context.Context, userID domain.UserID, t NewTrip) (domain.TripID, error)

	CreateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) (domain.ItemID, error)

	// UpdateItem replaces the entire record at the item's key.
	UpdateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) error

	DeleteItem(ctx context.Context, tripID domain.TripID, itemID domain.ItemID) error

	GetUserData(ctx context.Context, userID domain.UserID) (domain.UserData, error)
}
