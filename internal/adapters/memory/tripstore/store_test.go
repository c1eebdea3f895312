package tripstore

import (
	"context"
	"testing"

	"github.com/tripdeck/tripsync/internal/domain"
	tripstoreport "github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

func TestCloneOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.PutTrip(domain.Trip{
		ID:      "t-1",
		Name:    "Summer",
		OwnerID: "u-1",
		Items: map[domain.ItemID]domain.TripItem{
			"i-1": {Type: domain.ItemTypeHotel, Description: "Hotel Central", Participants: []domain.ParticipantID{"p-1"}},
		},
		Participants: map[domain.ParticipantID]domain.Participant{
			"p-1": {Name: "Ana"},
		},
	})
	s.PutUser(domain.UserData{UID: "u-1", Trips: []domain.TripID{"t-1"}})

	got, err := s.GetTrip(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	// Mutating the returned value must not leak back into the store.
	got.Items["i-1"] = domain.TripItem{Description: "tampered"}
	got.Participants["p-1"] = domain.Participant{Name: "tampered"}

	again, err := s.GetTrip(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetTrip again: %v", err)
	}
	if again.Items["i-1"].Description != "Hotel Central" {
		t.Fatalf("item mutated through returned clone: %+v", again.Items["i-1"])
	}
	if again.Participants["p-1"].Name != "Ana" {
		t.Fatalf("participant mutated through returned clone: %+v", again.Participants["p-1"])
	}

	items, err := s.ListItems(ctx, "t-1")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	items[0].Participants[0] = "tampered"
	items, err = s.ListItems(ctx, "t-1")
	if err != nil {
		t.Fatalf("ListItems again: %v", err)
	}
	if items[0].Participants[0] != "p-1" {
		t.Fatalf("participant slice shared with caller: %+v", items[0].Participants)
	}
}

func TestCreateTripUsesInjectedIDs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	ids := []string{"t-a", "t-b"}
	s.SetNewIDForTest(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	})

	first, err := s.CreateTrip(ctx, "u-1", tripstoreport.NewTrip{Name: "One"})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	second, err := s.CreateTrip(ctx, "u-1", tripstoreport.NewTrip{Name: "Two"})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if first != "t-a" || second != "t-b" {
		t.Fatalf("unexpected ids: %s, %s", first, second)
	}

	u, err := s.GetUserData(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetUserData: %v", err)
	}
	// Trip list preserves creation order.
	if len(u.Trips) != 2 || u.Trips[0] != "t-a" || u.Trips[1] != "t-b" {
		t.Fatalf("unexpected trip list: %v", u.Trips)
	}
}
