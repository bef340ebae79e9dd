// Package domain contains the core data types and pure business rules for the
// Permit Log application: the trip record, the night-window classifier, and
// the hours aggregator. This package has zero external collaborators beyond
// uuid and is imported by every other internal package (repo, service,
// handler).
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Trip represents a single supervised driving interval logged against a
// student by the parent who supervised it.
//
// A trip is either running (IsActive true, EndTime nil) or finished
// (IsActive false, EndTime set); no other combination is valid. Duration and
// IsNight are derived from the two timestamps by Finalize and are never set
// by callers directly.
type Trip struct {
	ID         uuid.UUID       `json:"id"`
	ParentID   uuid.UUID       `json:"parent_id"`
	StudentID  uuid.UUID       `json:"student_id"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    *time.Time      `json:"end_time,omitempty"` // nil while the timer is running
	IsActive   bool            `json:"is_active"`
	IsNight    bool            `json:"is_night"`
	IsApproved bool            `json:"is_approved"`
	Duration   int             `json:"duration_minutes"`   // whole minutes, derived
	GPSData    json.RawMessage `json:"gps_data,omitempty"` // opaque, never inspected
	CreatedAt  time.Time       `json:"created_at"`
}

// Finalize recomputes the derived fields from the current timestamps.
// With both timestamps set, Duration becomes the floor of the elapsed minutes
// and IsNight is reclassified against the given window; otherwise both reset
// to their zero values. Call this before every persist that touched a
// timestamp so the stored record can never go stale.
func (t *Trip) Finalize(w NightWindow) {
	if t.EndTime == nil || t.StartTime.IsZero() {
		t.Duration = 0
		t.IsNight = false
		return
	}
	t.Duration = int(t.EndTime.Sub(t.StartTime).Seconds() / 60)
	t.IsNight = w.Classify(t.StartTime, *t.EndTime)
}

// Countable reports whether the trip contributes to official hour totals:
// approved and no longer running.
func (t Trip) Countable() bool {
	return t.IsApproved && !t.IsActive
}

// Elapsed returns the whole minutes between StartTime and now.
// Only meaningful for a running trip.
func (t Trip) Elapsed(now time.Time) int {
	return int(now.Sub(t.StartTime).Seconds() / 60)
}
