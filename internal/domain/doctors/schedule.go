package doctors

import (
	"strconv"
	"strings"
	"time"
)

// dayNames is indexed by time.Weekday: Sunday is 0.
var dayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// DayName returns the lowercase schedule key for a calendar date.
func DayName(t time.Time) string {
	return dayNames[int(t.Weekday())]
}

func defaultDay(name string) DaySchedule {
	if name == "saturday" || name == "sunday" {
		return DaySchedule{Available: false}
	}
	return DaySchedule{Available: true, StartTime: "09:00", EndTime: "17:00"}
}

// canonicalDay resolves a raw schedule key to a day name. It accepts the
// seven day names in any case and numeric weekday indexes 0-6 (0 = Sunday).
// Anything else resolves to "".
func canonicalDay(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if n, err := strconv.Atoi(k); err == nil {
		if n >= 0 && n <= 6 {
			return dayNames[n]
		}
		return ""
	}
	for _, name := range dayNames {
		if k == name {
			return name
		}
	}
	return ""
}

// NormalizeSchedule turns a loosely structured weekly schedule into a complete
// seven-day one. Missing weekdays default to available 09:00-17:00 with no
// break, missing weekend days to unavailable. Days marked unavailable have all
// time fields cleared, and a break with only one endpoint set is dropped.
// Unrecognized keys are discarded. A nil input yields the full default week.
//
// Schedules are edited by clinic staff through a form, so this never fails:
// every malformed fragment degrades to the nearest sensible value.
func NormalizeSchedule(raw WeeklySchedule) WeeklySchedule {
	out := make(WeeklySchedule, 7)
	for key, day := range raw {
		name := canonicalDay(key)
		if name == "" {
			continue
		}
		out[name] = normalizeDay(day)
	}
	for _, name := range dayNames {
		if _, ok := out[name]; !ok {
			out[name] = defaultDay(name)
		}
	}
	return out
}

func normalizeDay(d DaySchedule) DaySchedule {
	d.StartTime = strings.TrimSpace(d.StartTime)
	d.EndTime = strings.TrimSpace(d.EndTime)
	d.BreakStart = strings.TrimSpace(d.BreakStart)
	d.BreakEnd = strings.TrimSpace(d.BreakEnd)

	if !d.Available {
		return DaySchedule{Available: false}
	}
	if (d.BreakStart == "") != (d.BreakEnd == "") {
		d.BreakStart = ""
		d.BreakEnd = ""
	}
	return d
}
