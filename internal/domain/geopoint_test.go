package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeopoint(t *testing.T) {
	p, ok := ParseGeopoint("[40.4168, -3.7038]")
	require.True(t, ok)
	assert.InDelta(t, 40.4168, p.Latitude, 1e-9)
	assert.InDelta(t, -3.7038, p.Longitude, 1e-9)

	p, ok = ParseGeopoint(`{"latitude": 48.8566, "longitude": 2.3522}`)
	require.True(t, ok)
	assert.InDelta(t, 48.8566, p.Latitude, 1e-9)
	assert.InDelta(t, 2.3522, p.Longitude, 1e-9)

	p, ok = ParseGeopoint(`{"lat": 51.5074, "lng": -0.1278}`)
	require.True(t, ok)
	assert.InDelta(t, 51.5074, p.Latitude, 1e-9)
	assert.InDelta(t, -0.1278, p.Longitude, 1e-9)
}

func TestParseGeopointRejectsMalformedInput(t *testing.T) {
	for _, s := range []string{
		"",
		"not json",
		"[40.4168]",
		`{"latitude": 40.4168}`,
		`{"lat": 40.4168}`,
		`{"x": 1, "y": 2}`,
	} {
		_, ok := ParseGeopoint(s)
		assert.False(t, ok, "input %q", s)
	}
}
