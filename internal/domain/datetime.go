package domain

import (
	"strconv"
	"strings"
	"time"
)

// ComposeInstant combines a DD/MM/YYYY date string and an HH:MM[:SS] time
// string into a single local instant. It reports false when either component
// is empty or malformed; callers treat an absent instant as "unknown", never
// as an error.
func ComposeInstant(dateStr, timeStr string) (time.Time, bool) {
	if dateStr == "" || timeStr == "" {
		return time.Time{}, false
	}

	dp := strings.Split(dateStr, "/")
	if len(dp) != 3 {
		return time.Time{}, false
	}
	day, ok1 := atoiStrict(dp[0])
	month, ok2 := atoiStrict(dp[1])
	year, ok3 := atoiStrict(dp[2])
	if !ok1 || !ok2 || !ok3 {
		return time.Time{}, false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1 {
		return time.Time{}, false
	}

	tp := strings.Split(timeStr, ":")
	if len(tp) != 2 && len(tp) != 3 {
		return time.Time{}, false
	}
	hour, ok1 := atoiStrict(tp[0])
	minute, ok2 := atoiStrict(tp[1])
	if !ok1 || !ok2 {
		return time.Time{}, false
	}
	second := 0
	if len(tp) == 3 {
		second, ok1 = atoiStrict(tp[2])
		if !ok1 {
			return time.Time{}, false
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), true
}

// WithDerivedInstants returns a copy of the item with StartAt/EndAt computed
// from the raw date/time pairs.
func WithDerivedInstants(it TripItem) TripItem {
	if at, ok := ComposeInstant(it.StartDateRaw, it.StartTimeRaw); ok {
		it.StartAt = &at
	} else {
		it.StartAt = nil
	}
	if at, ok := ComposeInstant(it.EndDateRaw, it.EndTimeRaw); ok {
		it.EndAt = &at
	} else {
		it.EndAt = nil
	}
	return it
}

func atoiStrict(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
