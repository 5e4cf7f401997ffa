package model

import (
	"fmt"
	"strings"
	"time"
)

// Overlaps is the half-open interval test used everywhere a conflict
// decision is made: [aStart, aEnd) and [bStart, bEnd) overlap when
// max(start) < min(end). The slot generator and the booking path must
// agree on this predicate, so neither defines its own.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	maxStart := aStart
	if bStart.After(maxStart) {
		maxStart = bStart
	}
	minEnd := aEnd
	if bEnd.Before(minEnd) {
		minEnd = bEnd
	}
	return maxStart.Before(minEnd)
}

// TimeWindow is a concrete working window on a single date.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Slot is a candidate bookable interval of fixed duration. It is a
// snapshot, not a reservation; availability must be re-checked at
// booking time.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// ParseClock parses a time-of-day string as stored in schedule rows.
// Postgres TIME columns scan as "15:04:05"; API clients send "15:04".
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, fmt.Errorf("invalid clock value %q", s)
	}
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock value %q out of range", s)
	}
	return hour, minute, nil
}

// ClockOnDate anchors a time-of-day string on the given calendar date.
func ClockOnDate(clock string, date time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
