// Package schedule computes daily run instants for "HH:mm in an IANA timezone" schedules.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotMinutes is the granularity schedules are snapped to.
const SlotMinutes = 30

// ParseClock parses "HH:mm" into hour and minute.
func ParseClock(hhmm string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: expected HH:mm", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return hour, minute, nil
}

// SnapToSlot rounds hhmm down to the nearest 30-minute slot and returns it as "HH:mm".
func SnapToSlot(hhmm string) (string, error) {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return "", err
	}
	minute = (minute / SlotMinutes) * SlotMinutes
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// LoadZone resolves an IANA timezone name.
func LoadZone(tz string) (*time.Location, error) {
	if strings.TrimSpace(tz) == "" {
		return nil, fmt.Errorf("timezone is required")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return loc, nil
}

// NextRunAt returns the first instant at or after from whose wall clock in tz
// equals hhmm. Today's occurrence is returned when it has not passed yet,
// otherwise tomorrow's.
func NextRunAt(hhmm, tz string, from time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := LoadZone(tz)
	if err != nil {
		return time.Time{}, err
	}

	local := from.In(loc)
	candidate := wallClock(local.Year(), local.Month(), local.Day(), hour, minute, loc)
	if candidate.Before(from) {
		candidate = wallClock(local.Year(), local.Month(), local.Day()+1, hour, minute, loc)
	}
	return candidate.UTC(), nil
}

// NextRunAfter advances exactly one calendar day from prev's date in tz, keeping
// the wall clock at hhmm. The caller's current time plays no part, so a late
// sweep does not shift the daily cadence.
func NextRunAfter(prev time.Time, hhmm, tz string) (time.Time, error) {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := LoadZone(tz)
	if err != nil {
		return time.Time{}, err
	}

	local := prev.In(loc)
	return wallClock(local.Year(), local.Month(), local.Day()+1, hour, minute, loc).UTC(), nil
}

// LocalTime converts t to tz. Unknown zones fall back to UTC.
func LocalTime(t time.Time, tz string) time.Time {
	loc, err := LoadZone(tz)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc)
}

// LocalDate formats t as YYYY-MM-DD in tz. Unknown zones fall back to UTC.
func LocalDate(t time.Time, tz string) string {
	return LocalTime(t, tz).Format("2006-01-02")
}

// wallClock builds the instant for a local date and time. time.Date already
// normalizes day overflow and resolves DST: a wall clock that falls in a
// spring-forward gap is shifted forward by the gap length.
func wallClock(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}
