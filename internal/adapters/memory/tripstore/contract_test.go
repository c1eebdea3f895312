package tripstore

import (
	"testing"

	"github.com/tripdeck/tripsync/internal/adapters/contracttest"
	tripstoreport "github.com/tripdeck/tripsync/internal/ports/out/tripstore"
)

func TestContract_TripStore(t *testing.T) {
	contracttest.RunTripStore(t, func(t *testing.T) (tripstoreport.Store, contracttest.Seeder, func()) {
		t.Helper()
		s := NewStore()
		return s, s, nil
	})
}
