package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actions, one per lifecycle transition.
const (
	AuditStarted   = "started"
	AuditLogged    = "logged"
	AuditStopped   = "stopped"
	AuditCancelled = "cancelled"
	AuditEdited    = "edited"
	AuditApproved  = "approved"
	AuditDeleted   = "deleted"
)

// TripAudit records one lifecycle transition of a trip: who did what, and a
// JSON snapshot of the trip after the transition. Audits are append-only.
type TripAudit struct {
	ID          uuid.UUID       `json:"id"`
	TripID      uuid.UUID       `json:"trip_id"`
	Action      string          `json:"action"`
	PerformedBy uuid.UUID       `json:"performed_by"`
	Snapshot    json.RawMessage `json:"snapshot"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewTripAudit builds an audit entry for a transition, snapshotting the trip
// as JSON. A marshal failure is impossible for Trip (all fields are
// marshalable), so the error is folded into an empty snapshot.
func NewTripAudit(trip Trip, action string, performedBy uuid.UUID) TripAudit {
	snap, err := json.Marshal(trip)
	if err != nil {
		snap = []byte("{}")
	}
	return TripAudit{
		TripID:      trip.ID,
		Action:      action,
		PerformedBy: performedBy,
		Snapshot:    snap,
	}
}
