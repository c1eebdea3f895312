// Package rtdb implements the trip store gateway against Firebase Realtime
// Database, the backend the production mobile clients sync with. Paths:
// /trips/{tripId}, /trips/{tripId}/items/{itemId}, /users/{userId},
// /users/{userId}/trips.
package rtdb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/tripdeck/tripsync/internal/domain"
	"github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

// Store is a Firebase RTDB implementation of tripstore.Store.
type Store struct {
	db *db.Client
}

// NewStore opens an RTDB client. credentialsFile may be empty when ambient
// application-default credentials are available.
func NewStore(ctx context.Context, databaseURL, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: databaseURL}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("open database client: %w", err)
	}
	return &Store{db: client}, nil
}

// tripRecord is the wire shape of /trips/{tripId}.
type tripRecord struct {
	Name         string                       `json:"name"`
	Description  string                       `json:"description"`
	UserID       string                       `json:"userId"`
	Items        map[string]itemRecord        `json:"items"`
	Participants map[string]participantRecord `json:"participants"`
}

type participantRecord struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	AvatarURL string `json:"avatar_url"`
}

// itemRecord is the wire shape of /trips/{tripId}/items/{itemId}. Field names
// follow the keys the mobile clients write.
type itemRecord struct {
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	InitialDate  string   `json:"initial_date"`
	InitialTime  string   `json:"initial_time"`
	EndDate      string   `json:"end_date"`
	EndTime      string   `json:"end_time"`
	InitialPlace string   `json:"initial_place"`
	FinalPlace   string   `json:"final_place"`
	Geolocation  string   `json:"geolocation"`
	Participants []string `json:"participants"`
	Info         string   `json:"info"`
	File         string   `json:"file"`
	Map          string   `json:"map"`
	Flight       string   `json:"flight"`
	Reservation  string   `json:"reservation"`
	HandBag      string   `json:"hand_equipment"`
	CheckedBag   string   `json:"facturation_equipment"`
	Price        string   `json:"price"`
	Paid         string   `json:"paid"`
	AltPrice     string   `json:"price_alt"`
	AltPaid      string   `json:"paid_alt"`
}

type userRecord struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  string   `json:"role"`
	Trips []string `json:"trips"`
}

func (s *Store) ListTripsForUser(ctx context.Context, userID domain.UserID) ([]domain.Trip, error) {
	u, err := s.GetUserData(ctx, userID)
	if err != nil {
		if errors.Is(err, tripstore.ErrNotFound) {
			return []domain.Trip{}, nil
		}
		return nil, err
	}
	out := make([]domain.Trip, 0, len(u.Trips))
	for _, id := range u.Trips {
		t, err := s.GetTrip(ctx, id)
		if errors.Is(err, tripstore.ErrNotFound) {
			continue // dangling trip id, skip
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) GetTrip(ctx context.Context, tripID domain.TripID) (domain.Trip, error) {
	var rec *tripRecord
	if err := s.db.NewRef("trips/"+string(tripID)).Get(ctx, &rec); err != nil {
		return domain.Trip{}, fmt.Errorf("get trip %s: %w", tripID, err)
	}
	if rec == nil {
		return domain.Trip{}, tripstore.ErrNotFound
	}
	return decodeTrip(tripID, *rec), nil
}

func (s *Store) ListItems(ctx context.Context, tripID domain.TripID) ([]domain.TripItem, error) {
	var recs map[string]itemRecord
	if err := s.db.NewRef("trips/"+string(tripID)+"/items").Get(ctx, &recs); err != nil {
		return nil, fmt.Errorf("list items for trip %s: %w", tripID, err)
	}
	out := make([]domain.TripItem, 0, len(recs))
	for key, rec := range recs {
		out = append(out, decodeItem(domain.ItemID(key), rec))
	}
	// Snapshot decoding loses the store's key order; re-establish it.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateTrip(ctx context.Context, userID domain.UserID, nt tripstore.NewTrip) (domain.TripID, error) {
	ref, err := s.db.NewRef("trips").Push(ctx, map[string]any{
		"name":        nt.Name,
		"description": nt.Description,
		"userId":      string(userID),
		"items":       map[string]any{},
	})
	if err != nil {
		return "", fmt.Errorf("create trip: %w", err)
	}
	id := domain.TripID(ref.Key)

	// Second related write: append the new id to the user's trip-id list.
	// The two writes are not atomic; a crash in between leaves an orphan
	// trip record that no listing will surface.
	listRef := s.db.NewRef("users/" + string(userID) + "/trips")
	var current []string
	if err := listRef.Get(ctx, &current); err != nil {
		return "", fmt.Errorf("read user trip list: %w", err)
	}
	if err := listRef.Set(ctx, append(current, string(id))); err != nil {
		return "", fmt.Errorf("append to user trip list: %w", err)
	}
	return id, nil
}

func (s *Store) CreateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) (domain.ItemID, error) {
	// The tree would happily accept a push under an absent trip; check first
	// so the gateway's not-found semantics hold.
	if err := s.requireTrip(ctx, tripID); err != nil {
		return "", err
	}
	ref, err := s.db.NewRef("trips/"+string(tripID)+"/items").Push(ctx, encodeItem(item))
	if err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}
	return domain.ItemID(ref.Key), nil
}

func (s *Store) UpdateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) error {
	// A blind Set would upsert; update must fail on an absent item.
	ref := s.db.NewRef("trips/" + string(tripID) + "/items/" + string(item.ID))
	var existing map[string]any
	if err := ref.GetShallow(ctx, &existing); err != nil {
		return fmt.Errorf("check item %s: %w", item.ID, err)
	}
	if len(existing) == 0 {
		return tripstore.ErrNotFound
	}
	if err := ref.Set(ctx, encodeItem(item)); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, tripID domain.TripID, itemID domain.ItemID) error {
	if err := s.requireTrip(ctx, tripID); err != nil {
		return err
	}
	// Deleting an absent item under an existing trip is a no-op.
	ref := s.db.NewRef("trips/" + string(tripID) + "/items/" + string(itemID))
	if err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *Store) requireTrip(ctx context.Context, tripID domain.TripID) error {
	var keys map[string]any
	if err := s.db.NewRef("trips/"+string(tripID)).GetShallow(ctx, &keys); err != nil {
		return fmt.Errorf("check trip %s: %w", tripID, err)
	}
	if len(keys) == 0 {
		return tripstore.ErrNotFound
	}
	return nil
}

func (s *Store) GetUserData(ctx context.Context, userID domain.UserID) (domain.UserData, error) {
	var rec *userRecord
	if err := s.db.NewRef("users/"+string(userID)).Get(ctx, &rec); err != nil {
		return domain.UserData{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	if rec == nil {
		return domain.UserData{}, tripstore.ErrNotFound
	}
	u := domain.UserData{
		UID:   userID,
		Name:  rec.Name,
		Email: rec.Email,
		Role:  domain.Role(rec.Role),
	}
	for _, id := range rec.Trips {
		u.Trips = append(u.Trips, domain.TripID(id))
	}
	return u, nil
}

func decodeTrip(id domain.TripID, rec tripRecord) domain.Trip {
	t := domain.Trip{
		ID:           id,
		Name:         rec.Name,
		Description:  rec.Description,
		OwnerID:      domain.UserID(rec.UserID),
		Items:        map[domain.ItemID]domain.TripItem{},
		Participants: map[domain.ParticipantID]domain.Participant{},
	}
	for key, ir := range rec.Items {
		itemID := domain.ItemID(key)
		t.Items[itemID] = decodeItem(itemID, ir)
	}
	for key, pr := range rec.Participants {
		pid := domain.ParticipantID(key)
		t.Participants[pid] = domain.Participant{
			ID:        pid,
			Name:      pr.Name,
			Color:     pr.Color,
			AvatarURL: pr.AvatarURL,
		}
	}
	return t
}

func decodeItem(id domain.ItemID, rec itemRecord) domain.TripItem {
	it := domain.TripItem{
		ID:             id,
		Type:           domain.NormalizeItemType(rec.Type),
		Description:    rec.Description,
		StartDateRaw:   rec.InitialDate,
		StartTimeRaw:   rec.InitialTime,
		EndDateRaw:     rec.EndDate,
		EndTimeRaw:     rec.EndTime,
		StartPlace:     rec.InitialPlace,
		EndPlace:       rec.FinalPlace,
		Geolocation:    rec.Geolocation,
		InfoURL:        rec.Info,
		FileURL:        rec.File,
		MapURL:         rec.Map,
		FlightNumber:   rec.Flight,
		Reservation:    rec.Reservation,
		HandBaggage:    rec.HandBag,
		CheckedBaggage: rec.CheckedBag,
		Price:          rec.Price,
		Paid:           rec.Paid,
		AltPrice:       rec.AltPrice,
		AltPaid:        rec.AltPaid,
	}
	for _, p := range rec.Participants {
		it.Participants = append(it.Participants, domain.ParticipantID(p))
	}
	return it
}

func encodeItem(it domain.TripItem) itemRecord {
	rec := itemRecord{
		Type:         string(it.Type),
		Description:  it.Description,
		InitialDate:  it.StartDateRaw,
		InitialTime:  it.StartTimeRaw,
		EndDate:      it.EndDateRaw,
		EndTime:      it.EndTimeRaw,
		InitialPlace: it.StartPlace,
		FinalPlace:   it.EndPlace,
		Geolocation:  it.Geolocation,
		Info:         it.InfoURL,
		File:         it.FileURL,
		Map:          it.MapURL,
		Flight:       it.FlightNumber,
		Reservation:  it.Reservation,
		HandBag:      it.HandBaggage,
		CheckedBag:   it.CheckedBaggage,
		Price:        it.Price,
		Paid:         it.Paid,
		AltPrice:     it.AltPrice,
		AltPaid:      it.AltPaid,
	}
	for _, p := range it.Participants {
		rec.Participants = append(rec.Participants, string(p))
	}
	return rec
}
