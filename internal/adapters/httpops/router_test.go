package httpops

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdeck/tripsync/internal/app/syncer"
	"github.com/tripdeck/tripsync/internal/domain"
)

type fakeSource struct {
	snap  domain.Snapshot
	state syncer.State
	err   error
}

func (f *fakeSource) Snapshot() domain.Snapshot { return f.snap }
func (f *fakeSource) State() syncer.State       { return f.state }
func (f *fakeSource) Err() error                { return f.err }

func TestHealthz(t *testing.T) {
	r := NewRouter(&fakeSource{state: syncer.StateIdle, snap: domain.EmptySnapshot()}, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestDebugSnapshot(t *testing.T) {
	snap := domain.EmptySnapshot()
	snap.Trips = []domain.Trip{{ID: "t-1"}, {ID: "t-2"}}
	snap.TripItems = []domain.TripItem{{ID: "i-1"}, {ID: "i-2"}, {ID: "i-3"}}
	snap.Participants = map[domain.ParticipantID]domain.Participant{"p-1": {}}

	r := NewRouter(&fakeSource{state: syncer.StateReady, snap: snap}, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/snapshot", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		State        string `json:"state"`
		Error        string `json:"error"`
		Trips        int    `json:"trips"`
		Items        int    `json:"items"`
		Participants int    `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.State)
	assert.Empty(t, body.Error)
	assert.Equal(t, 2, body.Trips)
	assert.Equal(t, 3, body.Items)
	assert.Equal(t, 1, body.Participants)
}

func TestDebugSnapshotCarriesError(t *testing.T) {
	r := NewRouter(&fakeSource{
		state: syncer.StateFailed,
		snap:  domain.EmptySnapshot(),
		err:   errors.New("backend unavailable"),
	}, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/snapshot", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed", body["state"])
	assert.Equal(t, "backend unavailable", body["error"])
}
