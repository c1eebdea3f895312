package tripstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripdeck/tripsync/internal/domain"
	"github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

// Store is an in-memory implementation of tripstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	trips map[domain.TripID]domain.Trip
	users map[domain.UserID]domain.UserData

	newID func() string
}

func NewStore() *Store {
	return &Store{
		trips: make(map[domain.TripID]domain.Trip),
		users: make(map[domain.UserID]domain.UserData),
		newID: uuid.NewString,
	}
}

// SetNewIDForTest overrides key generation for deterministic tests.
// It should not be used in production code.
func (s *Store) SetNewIDForTest(fn func() string) {
	if fn != nil {
		s.newID = fn
	}
}

// PutUser seeds or replaces a user record. Used by wiring and tests; the
// gateway contract itself never creates users.
func (s *Store) PutUser(u domain.UserData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UID] = cloneUser(u)
}

// PutTrip seeds or replaces a whole trip record, items included.
func (s *Store) PutTrip(t domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[t.ID] = cloneTrip(t)
}

func (s *Store) ListTripsForUser(ctx context.Context, userID domain.UserID) ([]domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return []domain.Trip{}, nil
	}
	out := make([]domain.Trip, 0, len(u.Trips))
	for _, id := range u.Trips {
		t, ok := s.trips[id]
		if !ok {
			continue // dangling trip id, skip
		}
		out = append(out, cloneTrip(t))
	}
	return out, nil
}

func (s *Store) GetTrip(ctx context.Context, tripID domain.TripID) (domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[tripID]
	if !ok {
		return domain.Trip{}, tripstore.ErrNotFound
	}
	return cloneTrip(t), nil
}

func (s *Store) ListItems(ctx context.Context, tripID domain.TripID) ([]domain.TripItem, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[tripID]
	if !ok {
		return []domain.TripItem{}, nil
	}
	out := make([]domain.TripItem, 0, len(t.Items))
	for id, it := range t.Items {
		it.ID = id
		out = append(out, cloneItem(it))
	}
	// Map iteration order is random; emulate the remote store's stable key
	// order so repeated lists agree.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateTrip(ctx context.Context, userID domain.UserID, nt tripstore.NewTrip) (domain.TripID, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	id := domain.TripID(s.newID())
	if _, ok := s.trips[id]; ok {
		return "", tripstore.ErrAlreadyExists
	}
	s.trips[id] = domain.Trip{
		ID:           id,
		Name:         nt.Name,
		Description:  nt.Description,
		OwnerID:      userID,
		Items:        map[domain.ItemID]domain.TripItem{},
		Participants: map[domain.ParticipantID]domain.Participant{},
	}

	u := s.users[userID]
	u.UID = userID
	u.Trips = append(u.Trips, id)
	s.users[userID] = u

	return id, nil
}

func (s *Store) CreateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) (domain.ItemID, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	if !ok {
		return "", tripstore.ErrNotFound
	}
	id := domain.ItemID(s.newID())
	item.ID = id
	if t.Items == nil {
		t.Items = map[domain.ItemID]domain.TripItem{}
	}
	t.Items[id] = cloneItem(item)
	s.trips[tripID] = t
	return id, nil
}

func (s *Store) UpdateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	if !ok {
		return tripstore.ErrNotFound
	}
	if _, ok := t.Items[item.ID]; !ok {
		return tripstore.ErrNotFound
	}
	t.Items[item.ID] = cloneItem(item)
	s.trips[tripID] = t
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, tripID domain.TripID, itemID domain.ItemID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	if !ok {
		return tripstore.ErrNotFound
	}
	delete(t.Items, itemID)
	s.trips[tripID] = t
	return nil
}

func (s *Store) GetUserData(ctx context.Context, userID domain.UserID) (domain.UserData, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.UserData{}, tripstore.ErrNotFound
	}
	return cloneUser(u), nil
}

func cloneTrip(t domain.Trip) domain.Trip {
	cp := t
	if t.Items != nil {
		cp.Items = make(map[domain.ItemID]domain.TripItem, len(t.Items))
		for id, it := range t.Items {
			cp.Items[id] = cloneItem(it)
		}
	}
	if t.Participants != nil {
		cp.Participants = make(map[domain.ParticipantID]domain.Participant, len(t.Participants))
		for id, p := range t.Participants {
			cp.Participants[id] = p
		}
	}
	return cp
}

func cloneItem(it domain.TripItem) domain.TripItem {
	cp := it
	if it.Participants != nil {
		cp.Participants = append([]domain.ParticipantID(nil), it.Participants...)
	}
	cp.StartAt = cloneTimePtr(it.StartAt)
	cp.EndAt = cloneTimePtr(it.EndAt)
	return cp
}

func cloneUser(u domain.UserData) domain.UserData {
	cp := u
	if u.Trips != nil {
		cp.Trips = append([]domain.TripID(nil), u.Trips...)
	}
	return cp
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
