package scheduling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clinicbook/clinicbook/internal/domain/doctors"
)

// slotStepMinutes is the fixed slot length. Every bookable time is a multiple
// of this step from the day's start time.
const slotStepMinutes = 30

// minutesOf parses a 24-hour "HH:MM" string into minutes since midnight.
func minutesOf(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// GenerateSlots enumerates the bookable slots for one day of a doctor's
// schedule. Slots start at StartTime and step forward 30 minutes at a time;
// a slot starting at or after EndTime is not produced. Slots falling inside
// [BreakStart, BreakEnd) are omitted entirely rather than marked unavailable.
// Each emitted slot is available unless its time is in the occupied set.
//
// Malformed schedule data never fails slot listing: an unavailable day or an
// unparseable working window yields an empty list (with a non-nil error
// describing the defect for the caller to log), and a malformed or inverted
// break window is ignored.
func GenerateSlots(day doctors.DaySchedule, occupied map[string]bool) ([]Slot, error) {
	slots := []Slot{}
	if !day.Available || day.StartTime == "" || day.EndTime == "" {
		return slots, nil
	}

	start, err := minutesOf(day.StartTime)
	if err != nil {
		return slots, fmt.Errorf("start time: %w", err)
	}
	end, err := minutesOf(day.EndTime)
	if err != nil {
		return slots, fmt.Errorf("end time: %w", err)
	}
	if start >= end {
		return slots, fmt.Errorf("start %s is not before end %s", day.StartTime, day.EndTime)
	}

	breakStart, breakEnd := -1, -1
	if day.BreakStart != "" && day.BreakEnd != "" {
		bs, errS := minutesOf(day.BreakStart)
		be, errE := minutesOf(day.BreakEnd)
		if errS == nil && errE == nil && bs < be {
			breakStart, breakEnd = bs, be
		}
	}

	for m := start; m < end; m += slotStepMinutes {
		if breakStart >= 0 && m >= breakStart && m < breakEnd {
			continue
		}
		t := formatMinutes(m)
		slots = append(slots, Slot{Time: t, Available: !occupied[t]})
	}
	return slots, nil
}
