package domain

import (
	"time"

	"github.com/google/uuid"
)

// Student is the learner whose practice hours are being logged.
// Students do not log in; parents with a granted relationship act on their
// behalf. Permit and test fields feed the report header only.
type Student struct {
	ID                 uuid.UUID  `json:"id"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	PermitNumber       string     `json:"permit_number,omitempty"`
	DriversEdCompleted bool       `json:"drivers_ed_completed"`
	DriversEdDate      *time.Time `json:"drivers_ed_date,omitempty"`
	RoadTestTaken      *time.Time `json:"road_test_taken,omitempty"`
	RoadTestPassed     bool       `json:"road_test_passed"`
	CreatedAt          time.Time  `json:"created_at"`
}

// DisplayName returns "First Last" for report headers.
func (s Student) DisplayName() string {
	return s.FirstName + " " + s.LastName
}

// Parent is the supervising adult profile tied to an identity-provider user.
type Parent struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"` // opaque handle issued by the identity provider
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns "First Last" for report rows.
func (p Parent) DisplayName() string {
	return p.FirstName + " " + p.LastName
}
