package digest

import (
	"fmt"
	"time"
)

// Kind selects which reporting window a digest covers.
type Kind string

const (
	KindMorning Kind = "morning"
	KindDay     Kind = "day"
	KindWeekly  Kind = "weekly"
)

// ParseKind maps a digest mode suffix ("morning", "day", "weekly") to
// its Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMorning, KindDay, KindWeekly:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown digest kind: %q", s)
	}
}

// WindowFor returns the half-open interval [start, end) a digest of the
// given kind covers at now, computed in the reference timezone.
//
// Boundaries are built with calendar arithmetic rather than duration
// math so DST transitions keep them pinned to wall-clock times:
//
//	morning: [yesterday 06:00, today 06:00)
//	day:     [today 00:00, now)
//	weekly:  [previous Monday 00:00, most recent Monday 00:00)
func WindowFor(kind Kind, now time.Time, location *time.Location) (start, end time.Time) {
	local := now.In(location)
	year, month, day := local.Date()

	switch kind {
	case KindMorning:
		end = time.Date(year, month, day, 6, 0, 0, 0, location)
		start = time.Date(year, month, day-1, 6, 0, 0, 0, location)
	case KindDay:
		start = time.Date(year, month, day, 0, 0, 0, 0, location)
		end = local
	case KindWeekly:
		// Monday-based weeks; Sunday counts as the tail of the
		// preceding week.
		offset := (int(local.Weekday()) + 6) % 7
		end = time.Date(year, month, day-offset, 0, 0, 0, 0, location)
		start = time.Date(year, month, day-offset-7, 0, 0, 0, 0, location)
	}

	return start, end
}

// Stamp returns the ledger day under which a delivered digest is
// recorded: the calendar date of the window's end in the reference
// timezone.
func Stamp(end time.Time, location *time.Location) string {
	return end.In(location).Format("2006-01-02")
}
