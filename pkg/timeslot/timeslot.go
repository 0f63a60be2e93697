// Package timeslot contains the pure interval arithmetic behind slot
// allocation. Nothing here touches the store; callers are expected to have
// validated the "HH:MM" strings before asking about overlap.
package timeslot

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/MNhat168/sport-zone-sub002/pkg/model"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ToMinutes converts an "HH:MM" clock string to its minute offset since
// midnight.
func ToMinutes(clock string) (int, error) {
	if !clockPattern.MatchString(clock) {
		return 0, fmt.Errorf("invalid clock time %q, expected HH:MM", clock)
	}
	h, _ := strconv.Atoi(clock[:2])
	m, _ := strconv.Atoi(clock[3:])
	return h*60 + m, nil
}

// Valid reports whether clock is a well-formed "HH:MM" string.
func Valid(clock string) bool {
	return clockPattern.MatchString(clock)
}

// Overlaps reports half-open interval overlap in minute offsets. Touching
// endpoints (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// Conflicts reports whether the requested interval overlaps any booked slot.
func Conflicts(start, end string, booked []model.TimeSlot) (bool, error) {
	reqStart, err := ToMinutes(start)
	if err != nil {
		return false, err
	}
	reqEnd, err := ToMinutes(end)
	if err != nil {
		return false, err
	}
	for _, s := range booked {
		bStart, err := ToMinutes(s.StartTime)
		if err != nil {
			return false, fmt.Errorf("booked slot: %w", err)
		}
		bEnd, err := ToMinutes(s.EndTime)
		if err != nil {
			return false, fmt.Errorf("booked slot: %w", err)
		}
		if Overlaps(reqStart, reqEnd, bStart, bEnd) {
			return true, nil
		}
	}
	return false, nil
}

// Duration returns the interval length in minutes. The end must be after the
// start.
func Duration(start, end string) (int, error) {
	s, err := ToMinutes(start)
	if err != nil {
		return 0, err
	}
	e, err := ToMinutes(end)
	if err != nil {
		return 0, err
	}
	if e <= s {
		return 0, fmt.Errorf("end time %s must be after start time %s", end, start)
	}
	return e - s, nil
}

// Within reports whether [start, end) lies inside the [open, close) window.
func Within(start, end, open, close string) (bool, error) {
	s, err := ToMinutes(start)
	if err != nil {
		return false, err
	}
	e, err := ToMinutes(end)
	if err != nil {
		return false, err
	}
	o, err := ToMinutes(open)
	if err != nil {
		return false, err
	}
	c, err := ToMinutes(close)
	if err != nil {
		return false, err
	}
	return s >= o && e <= c, nil
}
