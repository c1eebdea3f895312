package domain

import "encoding/json"

// Geopoint is a parsed item geolocation used by map consumers.
type Geopoint struct {
	Latitude  float64
	Longitude float64
}

// ParseGeopoint decodes the free-form geolocation string attached to items.
// Accepted encodings, in order of preference:
//   - JSON array: [lat, lng]
//   - JSON object: {"latitude": .., "longitude": ..}
//   - JSON object: {"lat": .., "lng": ..}
//
// Anything else yields false. Malformed input is never an error.
func ParseGeopoint(s string) (Geopoint, bool) {
	if s == "" {
		return Geopoint{}, false
	}

	var arr []float64
	if err := json.Unmarshal([]byte(s), &arr); err == nil && len(arr) >= 2 {
		return Geopoint{Latitude: arr[0], Longitude: arr[1]}, true
	}

	var obj struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return Geopoint{}, false
	}
	if obj.Latitude != nil && obj.Longitude != nil {
		return Geopoint{Latitude: *obj.Latitude, Longitude: *obj.Longitude}, true
	}
	if obj.Lat != nil && obj.Lng != nil {
		return Geopoint{Latitude: *obj.Lat, Longitude: *obj.Lng}, true
	}
	return Geopoint{}, false
}
