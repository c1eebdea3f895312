// Package tripstore is a Postgres implementation of the trip store gateway.
// It maps the remote tree's paths onto relational tables: /users/{id} ->
// users, /users/{id}/trips -> user_trips, /trips/{id} -> trips, and
// /trips/{id}/items/{itemId} -> trip_items.
package tripstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripdeck/tripsync/internal/domain"
	"github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

// Store is a Postgres implementation of tripstore.Store.
type Store struct {
	pool *pgxpool.Pool
}

// execer is satisfied by both the pool and a transaction, so writes can run
// inside or outside an explicit transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const itemColumns = `id, type, description,
	start_date, start_time, end_date, end_time,
	start_place, end_place, geolocation, participants,
	info_url, file_url, map_url,
	flight_number, reservation, hand_baggage, checked_baggage,
	price, paid, alt_price, alt_paid`

func (s *Store) ListTripsForUser(ctx context.Context, userID domain.UserID) ([]domain.Trip, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.name, t.description, t.owner_id
		FROM user_trips ut
		JOIN trips t ON t.id = ut.trip_id
		WHERE ut.user_id = $1
		ORDER BY ut.position
	`, string(userID))
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	trips, err := scanTrips(rows)
	if err != nil {
		return nil, err
	}
	if len(trips) == 0 {
		return []domain.Trip{}, nil
	}

	ids := make([]string, len(trips))
	byID := make(map[domain.TripID]*domain.Trip, len(trips))
	for i := range trips {
		ids[i] = string(trips[i].ID)
		byID[trips[i].ID] = &trips[i]
	}
	if err := s.attachParticipants(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, ids, byID); err != nil {
		return nil, err
	}
	return trips, nil
}

func (s *Store) GetTrip(ctx context.Context, tripID domain.TripID) (domain.Trip, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, owner_id FROM trips WHERE id = $1
	`, string(tripID))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("get trip: %w", err)
	}
	trips, err := scanTrips(rows)
	if err != nil {
		return domain.Trip{}, err
	}
	if len(trips) == 0 {
		return domain.Trip{}, tripstore.ErrNotFound
	}
	t := trips[0]
	byID := map[domain.TripID]*domain.Trip{t.ID: &t}
	ids := []string{string(t.ID)}
	if err := s.attachParticipants(ctx, ids, byID); err != nil {
		return domain.Trip{}, err
	}
	if err := s.attachItems(ctx, ids, byID); err != nil {
		return domain.Trip{}, err
	}
	return t, nil
}

func (s *Store) ListItems(ctx context.Context, tripID domain.TripID) ([]domain.TripItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM trip_items WHERE trip_id = $1 ORDER BY id
	`, string(tripID))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := []domain.TripItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) CreateTrip(ctx context.Context, userID domain.UserID, nt tripstore.NewTrip) (domain.TripID, error) {
	id := domain.TripID(uuid.NewString())
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING
		`, string(userID)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO trips (id, name, description, owner_id) VALUES ($1, $2, $3, $4)
		`, string(id), nt.Name, nt.Description, string(userID)); err != nil {
			return err
		}
		// Append to the user's ordered trip-id list.
		_, err := tx.Exec(ctx, `
			INSERT INTO user_trips (user_id, trip_id, position)
			VALUES ($1, $2, COALESCE((SELECT MAX(position) + 1 FROM user_trips WHERE user_id = $1), 0))
		`, string(userID), string(id))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create trip: %w", err)
	}
	return id, nil
}

func (s *Store) CreateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) (domain.ItemID, error) {
	if err := s.requireTrip(ctx, tripID); err != nil {
		return "", err
	}
	item.ID = domain.ItemID(uuid.NewString())
	if err := writeItem(ctx, s.pool, tripID, item); err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}
	return item.ID, nil
}

func (s *Store) UpdateItem(ctx context.Context, tripID domain.TripID, item domain.TripItem) error {
	// Full-record replacement: delete and re-insert in one transaction so a
	// failed insert cannot leave the item missing, and concurrent readers
	// never observe the gap between the two statements.
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM trip_items WHERE trip_id = $1 AND id = $2
		`, string(tripID), string(item.ID))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return tripstore.ErrNotFound
		}
		return writeItem(ctx, tx, tripID, item)
	})
	if err != nil {
		if errors.Is(err, tripstore.ErrNotFound) {
			return tripstore.ErrNotFound
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, tripID domain.TripID, itemID domain.ItemID) error {
	if err := s.requireTrip(ctx, tripID); err != nil {
		return err
	}
	// Deleting an absent item is a no-op, matching the remote tree.
	_, err := s.pool.Exec(ctx, `
		DELETE FROM trip_items WHERE trip_id = $1 AND id = $2
	`, string(tripID), string(itemID))
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *Store) GetUserData(ctx context.Context, userID domain.UserID) (domain.UserData, error) {
	var u domain.UserData
	var id, name, email, role string
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, role FROM users WHERE id = $1
	`, string(userID)).Scan(&id, &name, &email, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserData{}, tripstore.ErrNotFound
	}
	if err != nil {
		return domain.UserData{}, fmt.Errorf("get user: %w", err)
	}
	u.UID = domain.UserID(id)
	u.Name = name
	u.Email = email
	u.Role = domain.Role(role)

	rows, err := s.pool.Query(ctx, `
		SELECT trip_id FROM user_trips WHERE user_id = $1 ORDER BY position
	`, string(userID))
	if err != nil {
		return domain.UserData{}, fmt.Errorf("get user trips: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tid string
		if err := rows.Scan(&tid); err != nil {
			return domain.UserData{}, err
		}
		u.Trips = append(u.Trips, domain.TripID(tid))
	}
	return u, rows.Err()
}

func (s *Store) requireTrip(ctx context.Context, tripID domain.TripID) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)
	`, string(tripID)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check trip: %w", err)
	}
	if !exists {
		return tripstore.ErrNotFound
	}
	return nil
}

func writeItem(ctx context.Context, db execer, tripID domain.TripID, it domain.TripItem) error {
	participants := make([]string, len(it.Participants))
	for i, p := range it.Participants {
		participants[i] = string(p)
	}
	_, err := db.Exec(ctx, `
		INSERT INTO trip_items (
			trip_id, id, type, description,
			start_date, start_time, end_date, end_time,
			start_place, end_place, geolocation, participants,
			info_url, file_url, map_url,
			flight_number, reservation, hand_baggage, checked_baggage,
			price, paid, alt_price, alt_paid
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23
		)
	`,
		string(tripID), string(it.ID), string(it.Type), it.Description,
		it.StartDateRaw, it.StartTimeRaw, it.EndDateRaw, it.EndTimeRaw,
		it.StartPlace, it.EndPlace, it.Geolocation, participants,
		it.InfoURL, it.FileURL, it.MapURL,
		it.FlightNumber, it.Reservation, it.HandBaggage, it.CheckedBaggage,
		it.Price, it.Paid, it.AltPrice, it.AltPaid,
	)
	return err
}

func (s *Store) attachParticipants(ctx context.Context, tripIDs []string, byID map[domain.TripID]*domain.Trip) error {
	rows, err := s.pool.Query(ctx, `
		SELECT trip_id, id, name, color, avatar_url
		FROM trip_participants WHERE trip_id = ANY($1)
	`, tripIDs)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tripID, id, name, color, avatarURL string
		if err := rows.Scan(&tripID, &id, &name, &color, &avatarURL); err != nil {
			return err
		}
		t := byID[domain.TripID(tripID)]
		if t == nil {
			continue
		}
		if t.Participants == nil {
			t.Participants = map[domain.ParticipantID]domain.Participant{}
		}
		t.Participants[domain.ParticipantID(id)] = domain.Participant{
			ID:        domain.ParticipantID(id),
			Name:      name,
			Color:     color,
			AvatarURL: avatarURL,
		}
	}
	return rows.Err()
}

func (s *Store) attachItems(ctx context.Context, tripIDs []string, byID map[domain.TripID]*domain.Trip) error {
	rows, err := s.pool.Query(ctx, `
		SELECT trip_id, `+itemColumns+`
		FROM trip_items WHERE trip_id = ANY($1) ORDER BY id
	`, tripIDs)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tripID string
		it, err := scanItemWithTrip(rows, &tripID)
		if err != nil {
			return err
		}
		t := byID[domain.TripID(tripID)]
		if t == nil {
			continue
		}
		if t.Items == nil {
			t.Items = map[domain.ItemID]domain.TripItem{}
		}
		t.Items[it.ID] = it
	}
	return rows.Err()
}

func scanTrips(rows pgx.Rows) ([]domain.Trip, error) {
	defer rows.Close()
	out := []domain.Trip{}
	for rows.Next() {
		var id, name, description, ownerID string
		if err := rows.Scan(&id, &name, &description, &ownerID); err != nil {
			return nil, err
		}
		out = append(out, domain.Trip{
			ID:           domain.TripID(id),
			Name:         name,
			Description:  description,
			OwnerID:      domain.UserID(ownerID),
			Items:        map[domain.ItemID]domain.TripItem{},
			Participants: map[domain.ParticipantID]domain.Participant{},
		})
	}
	return out, rows.Err()
}

func scanItem(rows pgx.Rows) (domain.TripItem, error) {
	var it domain.TripItem
	var id, typ string
	var participants []string
	err := rows.Scan(
		&id, &typ, &it.Description,
		&it.StartDateRaw, &it.StartTimeRaw, &it.EndDateRaw, &it.EndTimeRaw,
		&it.StartPlace, &it.EndPlace, &it.Geolocation, &participants,
		&it.InfoURL, &it.FileURL, &it.MapURL,
		&it.FlightNumber, &it.Reservation, &it.HandBaggage, &it.CheckedBaggage,
		&it.Price, &it.Paid, &it.AltPrice, &it.AltPaid,
	)
	if err != nil {
		return domain.TripItem{}, err
	}
	it.ID = domain.ItemID(id)
	it.Type = domain.NormalizeItemType(typ)
	it.Participants = make([]domain.ParticipantID, len(participants))
	for i, p := range participants {
		it.Participants[i] = domain.ParticipantID(p)
	}
	return it, nil
}

func scanItemWithTrip(rows pgx.Rows, tripID *string) (domain.TripItem, error) {
	var it domain.TripItem
	var id, typ string
	var participants []string
	err := rows.Scan(
		tripID,
		&id, &typ, &it.Description,
		&it.StartDateRaw, &it.StartTimeRaw, &it.EndDateRaw, &it.EndTimeRaw,
		&it.StartPlace, &it.EndPlace, &it.Geolocation, &participants,
		&it.InfoURL, &it.FileURL, &it.MapURL,
		&it.FlightNumber, &it.Reservation, &it.HandBaggage, &it.CheckedBaggage,
		&it.Price, &it.Paid, &it.AltPrice, &it.AltPaid,
	)
	if err != nil {
		return domain.TripItem{}, err
	}
	it.ID = domain.ItemID(id)
	it.TripID = domain.TripID(*tripID)
	it.Type = domain.NormalizeItemType(typ)
	it.Participants = make([]domain.ParticipantID, len(participants))
	for i, p := range participants {
		it.Participants[i] = domain.ParticipantID(p)
	}
	return it, nil
}
