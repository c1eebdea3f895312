package tripstore

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripdeck/tripsync/internal/adapters/contracttest"
	"github.com/tripdeck/tripsync/internal/adapters/postgres/testutil"
	"github.com/tripdeck/tripsync/internal/domain"
	tripstoreport "github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

func TestContract_PostgresTripStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunTripStore(t, func(t *testing.T) (tripstoreport.Store, contracttest.Seeder, func()) {
		t.Helper()
		return NewStore(pool), sqlSeeder{t: t, pool: pool}, nil
	})
}

// sqlSeeder writes records straight into the tables, bypassing the store API.
type sqlSeeder struct {
	t    *testing.T
	pool *pgxpool.Pool
}

func (s sqlSeeder) PutUser(u domain.UserData) {
	s.t.Helper()
	ctx := context.Background()
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, email = $3, role = $4
	`, string(u.UID), u.Name, u.Email, string(u.Role)); err != nil {
		s.t.Fatalf("seed user: %v", err)
	}
	if _, err := s.pool.Exec(ctx, `
		DELETE FROM user_trips WHERE user_id = $1
	`, string(u.UID)); err != nil {
		s.t.Fatalf("reset user trip list: %v", err)
	}
	for i, id := range u.Trips {
		// The foreign key keeps user_trips consistent, so trip ids that do
		// not resolve cannot be represented here; they are skipped, which is
		// also how listings treat dangling ids.
		if _, err := s.pool.Exec(ctx, `
			INSERT INTO user_trips (user_id, trip_id, position)
			SELECT $1, $2, $3 WHERE EXISTS (SELECT 1 FROM trips WHERE id = $2)
		`, string(u.UID), string(id), i); err != nil {
			s.t.Fatalf("seed user trip %s: %v", id, err)
		}
	}
}

func (s sqlSeeder) PutTrip(tr domain.Trip) {
	s.t.Helper()
	ctx := context.Background()
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING
	`, string(tr.OwnerID)); err != nil {
		s.t.Fatalf("seed trip owner: %v", err)
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO trips (id, name, description, owner_id) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, description = $3, owner_id = $4
	`, string(tr.ID), tr.Name, tr.Description, string(tr.OwnerID)); err != nil {
		s.t.Fatalf("seed trip: %v", err)
	}
	if _, err := s.pool.Exec(ctx, `
		DELETE FROM trip_items WHERE trip_id = $1
	`, string(tr.ID)); err != nil {
		s.t.Fatalf("reset trip items: %v", err)
	}
	if _, err := s.pool.Exec(ctx, `
		DELETE FROM trip_participants WHERE trip_id = $1
	`, string(tr.ID)); err != nil {
		s.t.Fatalf("reset trip participants: %v", err)
	}
	for id, p := range tr.Participants {
		if _, err := s.pool.Exec(ctx, `
			INSERT INTO trip_participants (trip_id, id, name, color, avatar_url)
			VALUES ($1, $2, $3, $4, $5)
		`, string(tr.ID), string(id), p.Name, p.Color, p.AvatarURL); err != nil {
			s.t.Fatalf("seed participant %s: %v", id, err)
		}
	}
	for id, it := range tr.Items {
		it.ID = id
		if err := writeItem(ctx, s.pool, tr.ID, it); err != nil {
			s.t.Fatalf("seed item %s: %v", id, err)
		}
	}
}
