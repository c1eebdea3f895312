// Package view derives display ordering, filtering, and the next-event
// countdown from a published snapshot. Everything here is pure over its
// inputs and never mutates the snapshot or performs I/O.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/tripdeck/tripsync/internal/domain"
)

// SortChronological returns a new slice ordered by ascending composed start
// instant. Items with an absent instant sort to the end. The sort is stable:
// ties keep their relative input order.
func SortChronological(items []domain.TripItem) []domain.TripItem {
	out := append([]domain.TripItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].StartAt, out[j].StartAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
	return out
}

// Filter returns the items whose field values contain the query as a
// case-insensitive substring. List-valued fields are joined with ", " before
// the test. The empty query matches everything.
func Filter(items []domain.TripItem, query string) []domain.TripItem {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	out := make([]domain.TripItem, 0, len(items))
	for _, it := range items {
		if matchesQuery(it, q) {
			out = append(out, it)
		}
	}
	return out
}

// NextEventAfter returns the first item in the chronologically ordered list
// whose start instant is strictly later than now.
func NextEventAfter(sorted []domain.TripItem, now time.Time) (domain.TripItem, bool) {
	for _, it := range sorted {
		if it.StartAt != nil && it.StartAt.After(now) {
			return it, true
		}
	}
	return domain.TripItem{}, false
}

// Countdown is a remaining duration decomposed for display.
type Countdown struct {
	Days    int
	Hours   int // 0–23
	Minutes int // 0–59
	Seconds int // 0–59
}

// Remaining decomposes the duration from now until the given instant.
// It reports false once the instant is reached or passed.
func Remaining(until, now time.Time) (Countdown, bool) {
	d := until.Sub(now)
	if d <= 0 {
		return Countdown{}, false
	}
	secs := int(d / time.Second)
	return Countdown{
		Days:    secs / 86400,
		Hours:   (secs / 3600) % 24,
		Minutes: (secs / 60) % 60,
		Seconds: secs % 60,
	}, true
}

func matchesQuery(it domain.TripItem, q string) bool {
	for _, f := range searchableFields(it) {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func searchableFields(it domain.TripItem) []string {
	fields := []string{
		string(it.ID),
		string(it.TripID),
		string(it.Type),
		it.Description,
		it.StartDateRaw,
		it.StartTimeRaw,
		it.EndDateRaw,
		it.EndTimeRaw,
		it.StartPlace,
		it.EndPlace,
		it.Geolocation,
		it.InfoURL,
		it.FileURL,
		it.MapURL,
		it.FlightNumber,
		it.Reservation,
		it.HandBaggage,
		it.CheckedBaggage,
		it.Price,
		it.Paid,
		it.AltPrice,
		it.AltPaid,
	}
	if len(it.Participants) > 0 {
		ids := make([]string, len(it.Participants))
		for i, p := range it.Participants {
			ids[i] = string(p)
		}
		fields = append(fields, strings.Join(ids, ", "))
	}
	return fields
}
