// Package httpops exposes the operational HTTP surface: liveness and a
// read-only view of the engine's sync status. It is infra-facing; there is
// no product API here.
package httpops

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tripdeck/tripsync/internal/app/syncer"
	"github.com/tripdeck/tripsync/internal/domain"
)

// SnapshotSource is the read-only slice of the engine the ops surface needs.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
	State() syncer.State
	Err() error
}

// NewRouter constructs the ops HTTP router.
func NewRouter(src SnapshotSource, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(newSlogLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/debug/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		snap := src.Snapshot()
		body := struct {
			State        string `json:"state"`
			Error        string `json:"error,omitempty"`
			Trips        int    `json:"trips"`
			Items        int    `json:"items"`
			Participants int    `json:"participants"`
		}{
			State:        string(src.State()),
			Trips:        len(snap.Trips),
			Items:        len(snap.TripItems),
			Participants: len(snap.Participants),
		}
		if err := src.Err(); err != nil {
			body.Error = err.Error()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	return r
}
