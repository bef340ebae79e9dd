package domain

import (
	"fmt"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight, independent
// of any calendar date. It is the unit the night-window boundaries are
// configured in.
type TimeOfDay int

// ParseTimeOfDay parses a "HH:MM" string (24-hour clock) into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// String renders the TimeOfDay back as "HH:MM".
func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(d)/60, int(d)%60)
}

// clockMinutes projects a timestamp onto minutes-since-midnight in its own
// location.
func clockMinutes(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// NightWindow is the configured nighttime band, e.g. 21:00 to 06:00.
// Start is the evening boundary, End the morning one; the window is assumed
// to wrap past midnight.
type NightWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Classify reports whether the interval [start, end] counts as night driving.
//
// The interval is night when any of the following holds:
//   - it begins at or after the evening boundary;
//   - it begins before the evening boundary and ends strictly after it on
//     the same calendar day;
//   - it crosses midnight (an interval over midnight necessarily overlaps
//     the window);
//   - it begins before the morning boundary (pre-dawn driving).
//
// The rule is a pure function of the two timestamps and the window; it never
// consults the clock or any stored state.
func (w NightWindow) Classify(start, end time.Time) bool {
	startClock := clockMinutes(start)
	endClock := clockMinutes(end)

	if startClock >= w.Start {
		return true
	}
	if startClock < w.End {
		return true
	}

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return true
	}

	return startClock < w.Start && w.Start < endClock
}
