package service

import "time"

const (
	// Seconds values above this are past the year 2286, so anything larger
	// is a millisecond timestamp.
	millisecondThreshold = 10_000_000_000

	defaultBillingPeriod = 30 * 24 * time.Hour
)

// PeriodTime converts a processor timestamp to UTC time. Zero, negative and
// out-of-range values report false.
func PeriodTime(raw int64) (time.Time, bool) {
	if raw <= 0 {
		return time.Time{}, false
	}
	if raw > millisecondThreshold {
		raw /= 1000
	}
	t := time.Unix(raw, 0).UTC()
	if t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}
