package domain

import "math"

// Summary is the hours-accounting rollup over a set of countable trips.
// All totals are whole minutes; the hour accessors exist for display only.
type Summary struct {
	TotalMinutes int `json:"total_minutes"`
	NightMinutes int `json:"night_minutes"`
	DayMinutes   int `json:"day_minutes"`
	Count        int `json:"count"`
}

// Summarize rolls the countable trips in the given set up into a Summary.
// Trips that are not countable (unapproved, or still running) are skipped,
// so callers can pass a student's full trip list unfiltered.
// DayMinutes is defined as TotalMinutes - NightMinutes, so the two splits
// always sum to the total.
func Summarize(trips []Trip) Summary {
	var s Summary
	for _, t := range trips {
		if !t.Countable() {
			continue
		}
		s.Count++
		s.TotalMinutes += t.Duration
		if t.IsNight {
			s.NightMinutes += t.Duration
		}
	}
	s.DayMinutes = s.TotalMinutes - s.NightMinutes
	return s
}

// TotalHours returns the total as hours rounded to two decimal places.
func (s Summary) TotalHours() float64 { return roundHours(s.TotalMinutes) }

// NightHours returns the night split as hours rounded to two decimal places.
func (s Summary) NightHours() float64 { return roundHours(s.NightMinutes) }

// DayHours returns the day split as hours rounded to two decimal places.
func (s Summary) DayHours() float64 { return roundHours(s.DayMinutes) }

func roundHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}
