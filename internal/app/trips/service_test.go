package trips

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memprefstore "github.com/tripdeck/tripsync/internal/adapters/memory/prefstore"
	memtripstore "github.com/tripdeck/tripsync/internal/adapters/memory/tripstore"
	"github.com/tripdeck/tripsync/internal/domain"
)

type fakeInvalidator struct {
	refetches int
	selected  []domain.TripID
}

func (f *fakeInvalidator) Refetch(ctx context.Context) { _ = ctx; f.refetches++ }
func (f *fakeInvalidator) OnTripSelected(ctx context.Context, tripID domain.TripID) {
	_ = ctx
	f.selected = append(f.selected, tripID)
}

func newTestService(t *testing.T) (*Service, *memtripstore.Store, *memprefstore.Store, *fakeInvalidator) {
	t.Helper()
	store := memtripstore.NewStore()
	prefs := memprefstore.NewStore()
	inv := &fakeInvalidator{}
	return NewService(store, prefs, inv, nil), store, prefs, inv
}

func TestCreateTrip(t *testing.T) {
	ctx := context.Background()
	svc, store, _, inv := newTestService(t)

	id, err := svc.CreateTrip(ctx, "u-1", "  Summer   Trip ", "two weeks")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, inv.refetches)

	got, err := store.GetTrip(ctx, id)
	require.NoError(t, err)
	// The name is normalized before it is written.
	assert.Equal(t, "Summer Trip", got.Name)
	assert.Equal(t, "two weeks", got.Description)
}

func TestCreateTripValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, inv := newTestService(t)

	_, err := svc.CreateTrip(ctx, "u-1", "   ", "desc")
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = svc.CreateTrip(ctx, "", "Summer", "desc")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	// Failed writes never trigger a refetch.
	assert.Equal(t, 0, inv.refetches)
}

func TestItemLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, store, _, inv := newTestService(t)
	store.PutTrip(domain.Trip{ID: "t-1", Name: "Summer", OwnerID: "u-1"})

	itemID, err := svc.CreateItem(ctx, "t-1", domain.TripItem{
		Type:        domain.ItemType("Vuelo"),
		Description: "MAD-JFK",
	})
	require.NoError(t, err)
	require.NotEmpty(t, itemID)

	items, err := store.ListItems(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	// Legacy type labels normalize onto the enum at the write boundary.
	assert.Equal(t, domain.ItemTypeFlight, items[0].Type)

	err = svc.UpdateItem(ctx, "t-1", domain.TripItem{
		ID:          itemID,
		Type:        domain.ItemTypeFlight,
		Description: "MAD-JFK (rebooked)",
	})
	require.NoError(t, err)

	err = svc.DeleteItem(ctx, "t-1", itemID)
	require.NoError(t, err)

	items, err = store.ListItems(ctx, "t-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	// Create, update, and delete each trigger exactly one refetch.
	assert.Equal(t, 3, inv.refetches)
}

func TestItemWriteErrors(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t)
	store.PutTrip(domain.Trip{ID: "t-1", Name: "Summer", OwnerID: "u-1"})

	var appErr *Error

	_, err := svc.CreateItem(ctx, "t-missing", domain.TripItem{Type: domain.ItemTypeOther})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TRIP_NOT_FOUND", appErr.Code)

	err = svc.UpdateItem(ctx, "t-1", domain.TripItem{Type: domain.ItemTypeOther})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	err = svc.UpdateItem(ctx, "t-1", domain.TripItem{ID: "i-missing", Type: domain.ItemTypeOther})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ITEM_NOT_FOUND", appErr.Code)

	err = svc.DeleteItem(ctx, "t-missing", "i-1")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TRIP_NOT_FOUND", appErr.Code)
}

func TestSelectTripPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	svc, _, prefs, inv := newTestService(t)

	svc.SelectTrip(ctx, "t-1")
	assert.Equal(t, []domain.TripID{"t-1"}, inv.selected)
	v, ok, err := prefs.Get(ctx, "current_trip_id")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t-1", v)

	// A fresh service over the same prefs restores the selection.
	inv2 := &fakeInvalidator{}
	svc2 := NewService(memtripstore.NewStore(), prefs, inv2, nil)
	id, ok := svc2.RestoreSelectedTrip(ctx)
	require.True(t, ok)
	assert.Equal(t, domain.TripID("t-1"), id)
	assert.Equal(t, []domain.TripID{"t-1"}, inv2.selected)

	// Clearing the selection removes the persisted key.
	svc.SelectTrip(ctx, "")
	assert.Equal(t, []domain.TripID{"t-1", ""}, inv.selected)
	_, ok, err = prefs.Get(ctx, "current_trip_id")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok = svc.RestoreSelectedTrip(ctx)
	assert.False(t, ok)
}
