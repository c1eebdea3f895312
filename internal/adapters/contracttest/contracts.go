// Package contracttest holds behavioral contracts every tripstore.Store
// implementation must satisfy. Adapter packages run them against their own
// constructor.
package contracttest

import (
	"context"
	"errors"
	"testing"

	"github.com/tripdeck/tripsync/internal/domain"
	tripstoreport "github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

type CleanupFunc = func()

// Seeder seeds records directly, bypassing the store API. Adapters expose
// whatever backdoor their backend needs.
type Seeder interface {
	PutUser(u domain.UserData)
	PutTrip(t domain.Trip)
}

type TripStoreFactory func(t *testing.T) (tripstoreport.Store, Seeder, CleanupFunc)

func RunTripStore(t *testing.T, newStore TripStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, seed, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Absent user lists empty, never errors.
	trips, err := store.ListTripsForUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListTripsForUser absent user: %v", err)
	}
	if len(trips) != 0 {
		t.Fatalf("expected no trips, got %d", len(trips))
	}

	// Absent trip lists empty items but point lookup reports not found.
	items, err := store.ListItems(ctx, "no-such-trip")
	if err != nil {
		t.Fatalf("ListItems absent trip: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
	if _, err := store.GetTrip(ctx, "no-such-trip"); !errors.Is(err, tripstoreport.ErrNotFound) {
		t.Fatalf("GetTrip absent trip: want ErrNotFound, got %v", err)
	}
	if _, err := store.GetUserData(ctx, "nobody"); !errors.Is(err, tripstoreport.ErrNotFound) {
		t.Fatalf("GetUserData absent user: want ErrNotFound, got %v", err)
	}

	// Create a trip; the id must land on the user's trip list.
	uid := domain.UserID("u-1")
	seed.PutUser(domain.UserData{UID: uid, Name: "Ana", Email: "ana@example.com", Role: domain.RoleClient})
	tripID, err := store.CreateTrip(ctx, uid, tripstoreport.NewTrip{Name: "Summer", Description: "two weeks"})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if tripID == "" {
		t.Fatalf("CreateTrip returned empty id")
	}
	u, err := store.GetUserData(ctx, uid)
	if err != nil {
		t.Fatalf("GetUserData: %v", err)
	}
	if len(u.Trips) != 1 || u.Trips[0] != tripID {
		t.Fatalf("expected trip list [%s], got %v", tripID, u.Trips)
	}
	trips, err = store.ListTripsForUser(ctx, uid)
	if err != nil {
		t.Fatalf("ListTripsForUser: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != tripID || trips[0].Name != "Summer" {
		t.Fatalf("unexpected trips: %+v", trips)
	}

	// CreateItem against an absent trip reports not found.
	if _, err := store.CreateItem(ctx, "no-such-trip", domain.TripItem{Type: domain.ItemTypeOther}); !errors.Is(err, tripstoreport.ErrNotFound) {
		t.Fatalf("CreateItem absent trip: want ErrNotFound, got %v", err)
	}

	// Item lifecycle: create, list, update (full replace), delete.
	itemID, err := store.CreateItem(ctx, tripID, domain.TripItem{
		Type:         domain.ItemTypeFlight,
		Description:  "MAD-JFK",
		StartDateRaw: "01/06/2025",
		StartTimeRaw: "10:00",
		FlightNumber: "IB6251",
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if itemID == "" {
		t.Fatalf("CreateItem returned empty id")
	}
	items, err = store.ListItems(ctx, tripID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != itemID || items[0].Description != "MAD-JFK" {
		t.Fatalf("unexpected items: %+v", items)
	}

	updated := items[0]
	updated.Description = "MAD-JFK (rebooked)"
	updated.FlightNumber = ""
	if err := store.UpdateItem(ctx, tripID, updated); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	items, err = store.ListItems(ctx, tripID)
	if err != nil {
		t.Fatalf("ListItems after update: %v", err)
	}
	if len(items) != 1 || items[0].Description != "MAD-JFK (rebooked)" {
		t.Fatalf("expected replaced item, got %+v", items)
	}
	// Full replace: the cleared field must not survive.
	if items[0].FlightNumber != "" {
		t.Fatalf("expected flight number cleared, got %q", items[0].FlightNumber)
	}

	// Updating an absent item reports not found.
	ghost := updated
	ghost.ID = "no-such-item"
	if err := store.UpdateItem(ctx, tripID, ghost); !errors.Is(err, tripstoreport.ErrNotFound) {
		t.Fatalf("UpdateItem absent item: want ErrNotFound, got %v", err)
	}

	if err := store.DeleteItem(ctx, tripID, itemID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	items, err = store.ListItems(ctx, tripID)
	if err != nil {
		t.Fatalf("ListItems after delete: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty item set, got %+v", items)
	}
	// Deleting an already-absent item is a no-op.
	if err := store.DeleteItem(ctx, tripID, itemID); err != nil {
		t.Fatalf("DeleteItem absent item: %v", err)
	}

	// Deterministic list ordering by item key.
	seed.PutTrip(domain.Trip{
		ID:      "t-ordered",
		Name:    "Ordered",
		OwnerID: uid,
		Items: map[domain.ItemID]domain.TripItem{
			"c": {Type: domain.ItemTypeOther, Description: "third"},
			"a": {Type: domain.ItemTypeOther, Description: "first"},
			"b": {Type: domain.ItemTypeOther, Description: "second"},
		},
	})
	items, err = store.ListItems(ctx, "t-ordered")
	if err != nil {
		t.Fatalf("ListItems seeded trip: %v", err)
	}
	if len(items) != 3 || items[0].ID != "a" || items[1].ID != "b" || items[2].ID != "c" {
		t.Fatalf("expected key-ordered items, got %+v", items)
	}

	// Dangling trip ids on the user record are skipped, not errors.
	seed.PutUser(domain.UserData{UID: "u-dangling", Trips: []domain.TripID{"t-ordered", "t-gone"}})
	trips, err = store.ListTripsForUser(ctx, "u-dangling")
	if err != nil {
		t.Fatalf("ListTripsForUser dangling: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != "t-ordered" {
		t.Fatalf("expected dangling id skipped, got %+v", trips)
	}
}
