// Package timeslot turns a session's start time and duration pair into its
// bookable slot list, and decides whether a session is past its expiry
// cutoff. All clock strings leaving this package are zero-padded 24-hour
// "HH:MM" regardless of the input form.
package timeslot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidClock    = errors.New("invalid clock time")
	ErrInvalidSlotPlan = errors.New("slot duration must be positive and total duration non-negative")
)

const minutesPerDay = 24 * 60

// ParseClock accepts "HH:MM" 24-hour form and "H:MMam"/"H:MMpm" form and
// returns minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, ErrInvalidClock
	}

	meridiem := ""
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	switch meridiem {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}

	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as "HH:MM", wrapping past
// midnight.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Materialize computes the slot times for a one-to-one session: exactly
// floor(totalDuration/slotDuration) entries, slotDuration minutes apart,
// starting at startTime. A remainder shorter than one slot is dropped.
func Materialize(startTime string, totalDuration, slotDuration int) ([]string, error) {
	if slotDuration <= 0 || totalDuration < 0 {
		return nil, ErrInvalidSlotPlan
	}
	start, err := ParseClock(startTime)
	if err != nil {
		return nil, err
	}

	count := totalDuration / slotDuration
	times := make([]string, 0, count)
	for i := 0; i < count; i++ {
		times = append(times, FormatClock(start+i*slotDuration))
	}
	return times, nil
}

// ExpiresAt combines an expiry date ("2006-01-02") and clock time into a
// cutoff instant in loc. ok is false when either part is absent or
// malformed, which means the session never expires.
func ExpiresAt(expiryDate, expiryTime string, loc *time.Location) (time.Time, bool) {
	if expiryDate == "" || expiryTime == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", expiryDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	minutes, err := ParseClock(expiryTime)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(minutes) * time.Minute), true
}

// IsExpired reports whether now is past the session's configured cutoff.
// Sessions without a complete cutoff never expire.
func IsExpired(expiryDate, expiryTime *string, now time.Time) bool {
	if expiryDate == nil || expiryTime == nil {
		return false
	}
	cutoff, ok := ExpiresAt(*expiryDate, *expiryTime, now.Location())
	if !ok {
		return false
	}
	return now.After(cutoff)
}
