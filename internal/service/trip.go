// Package service contains the business logic for the Permit Log API: the
// trip lifecycle state machine, the authorization guard, and report assembly.
// Services validate inputs, enforce transition rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/permit-log/backend/internal/auth"
	"github.com/pkordes/permit-log/backend/internal/domain"
	"github.com/pkordes/permit-log/backend/internal/repo"
)

// Rules is the process-wide trip policy, parsed once from configuration at
// startup and injected here and into the classifier — never read from
// ambient globals.
type Rules struct {
	// Window is the configured night-driving band.
	Window domain.NightWindow
	// MinTripMinutes is the shortest timer run that may be stopped.
	MinTripMinutes int
}

// TripService owns the lifecycle of trip records: creation (manual or timed),
// stopping, editing, approval, and deletion. Every operation authorizes the
// caller against the student before touching anything.
type TripService struct {
	trips   repo.TripRepo
	parents repo.ParentRepo
	rels    repo.RelationshipRepo
	audits  repo.AuditRepo
	rules   Rules
	log     *slog.Logger
}

// NewTripService constructs a TripService backed by the provided repos.
func NewTripService(trips repo.TripRepo, parents repo.ParentRepo, rels repo.RelationshipRepo, audits repo.AuditRepo, rules Rules, log *slog.Logger) *TripService {
	if log == nil {
		log = slog.Default()
	}
	return &TripService{trips: trips, parents: parents, rels: rels, audits: audits, rules: rules, log: log}
}

// Start begins a live-timed trip for the student: start time is now, no end
// time, timer running. At most one trip may be running per (parent, student);
// a second Start surfaces domain.ErrConflict carrying when the running trip
// began. The one_active_trip index catches the losing side of a concurrent
// Start that slips past this check.
func (s *TripService) Start(ctx context.Context, identity auth.Identity, studentID uuid.UUID, now time.Time) (domain.Trip, error) {
	parent, err := s.authorize(ctx, identity, studentID)
	if err != nil {
		return domain.Trip{}, err
	}

	running, err := s.trips.FindActive(ctx, parent.ID, studentID)
	switch {
	case err == nil:
		return domain.Trip{}, domain.Errorf(domain.ErrConflict,
			"a trip is already running for this student (started %s)", running.StartTime.Format(time.RFC3339))
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
	}

	trip := domain.Trip{
		ParentID:  parent.ID,
		StudentID: studentID,
		StartTime: now,
		IsActive:  true,
	}
	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
	}

	s.audit(ctx, created, domain.AuditStarted, identity)
	return created, nil
}

// LogManual records a completed trip with both timestamps supplied up front.
// The end must be after the start and the start must not be in the future.
// Duration and the night flag are derived before the insert.
func (s *TripService) LogManual(ctx context.Context, identity auth.Identity, studentID uuid.UUID, start, end time.Time, gps json.RawMessage, now time.Time) (domain.Trip, error) {
	parent, err := s.authorize(ctx, identity, studentID)
	if err != nil {
		return domain.Trip{}, err
	}

	if !end.After(start) {
		return domain.Trip{}, domain.Errorf(domain.ErrValidation, "end time must be after start time")
	}
	if start.After(now) {
		return domain.Trip{}, domain.Errorf(domain.ErrValidation, "start time cannot be in the future")
	}

	trip := domain.Trip{
		ParentID:  parent.ID,
		StudentID: studentID,
		StartTime: start,
		EndTime:   &end,
		GPSData:   gps,
	}
	trip.Finalize(s.rules.Window)

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.LogManual: %w", err)
	}

	s.audit(ctx, created, domain.AuditLogged, identity)
	return created, nil
}

// Stop ends a running trip at now. A run shorter than the configured minimum
// is rejected with a validation error carrying the elapsed minutes, and the
// trip keeps running so the caller can retry later.
func (s *TripService) Stop(ctx context.Context, identity auth.Identity, tripID uuid.UUID, gps json.RawMessage, now time.Time) (domain.Trip, error) {
	trip, err := s.authorizedTrip(ctx, identity, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if !trip.IsActive {
		return domain.Trip{}, domain.Errorf(domain.ErrConflict, "trip is not running")
	}

	elapsed := trip.Elapsed(now)
	if elapsed < s.rules.MinTripMinutes {
		return domain.Trip{}, domain.Errorf(domain.ErrValidation,
			"trip is only %d minutes long; the minimum is %d", elapsed, s.rules.MinTripMinutes)
	}

	trip.EndTime = &now
	trip.IsActive = false
	trip.GPSData = gps
	trip.Finalize(s.rules.Window)

	stopped, err := s.trips.Finish(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Stop: %w", err)
	}

	s.audit(ctx, stopped, domain.AuditStopped, identity)
	return stopped, nil
}

// CancelActive discards a running trip without recording any duration.
// Only a running trip can be cancelled; use Delete for finished ones.
func (s *TripService) CancelActive(ctx context.Context, identity auth.Identity, tripID uuid.UUID) error {
	trip, err := s.authorizedTrip(ctx, identity, tripID)
	if err != nil {
		return err
	}
	if !trip.IsActive {
		return domain.Errorf(domain.ErrConflict, "trip is not running")
	}

	if err := s.trips.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("service.TripService.CancelActive: %w", err)
	}

	s.audit(ctx, trip, domain.AuditCancelled, identity)
	return nil
}

// Edit replaces both timestamps of a finished, unapproved trip and
// recomputes the derived fields. Running trips must be stopped first;
// approved trips are locked for good.
func (s *TripService) Edit(ctx context.Context, identity auth.Identity, tripID uuid.UUID, newStart, newEnd time.Time) (domain.Trip, error) {
	trip, err := s.authorizedTrip(ctx, identity, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.IsActive {
		return domain.Trip{}, domain.Errorf(domain.ErrConflict, "a running trip cannot be edited")
	}
	if trip.IsApproved {
		return domain.Trip{}, domain.Errorf(domain.ErrConflict, "an approved trip is read-only")
	}
	if !newEnd.After(newStart) {
		return domain.Trip{}, domain.Errorf(domain.ErrValidation, "end time must be after start time")
	}

	trip.StartTime = newStart
	trip.EndTime = &newEnd
	trip.Finalize(s.rules.Window)

	updated, err := s.trips.UpdateTimes(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Edit: %w", err)
	}

	s.audit(ctx, updated, domain.AuditEdited, identity)
	return updated, nil
}

// Approve locks a finished trip, making it countable and read-only.
// Approving an already-approved trip is a no-op that reports AlreadyApproved
// so the caller can tell the user. A running trip cannot be approved.
func (s *TripService) Approve(ctx context.Context, identity auth.Identity, tripID uuid.UUID) (domain.Trip, bool, error) {
	trip, err := s.authorizedTrip(ctx, identity, tripID)
	if err != nil {
		return domain.Trip{}, false, err
	}
	if trip.IsActive {
		return domain.Trip{}, false, domain.Errorf(domain.ErrConflict, "a running trip cannot be approved")
	}
	if trip.IsApproved {
		return trip, true, nil
	}

	approved, err := s.trips.Approve(ctx, tripID)
	if err != nil {
		// A concurrent approval between our read and the guarded update is
		// still idempotent success.
		if errors.Is(err, domain.ErrConflict) {
			if current, getErr := s.trips.GetByID(ctx, tripID); getErr == nil && current.IsApproved {
				return current, true, nil
			}
		}
		return domain.Trip{}, false, fmt.Errorf("service.TripService.Approve: %w", err)
	}

	s.audit(ctx, approved, domain.AuditApproved, identity)
	return approved, false, nil
}

// Delete removes a trip record. Approved trips can never be deleted; a
// running trip may be, which acts as a cancellation.
func (s *TripService) Delete(ctx context.Context, identity auth.Identity, tripID uuid.UUID) error {
	trip, err := s.authorizedTrip(ctx, identity, tripID)
	if err != nil {
		return err
	}
	if trip.IsApproved {
		return domain.Errorf(domain.ErrConflict, "an approved trip cannot be deleted")
	}

	if err := s.trips.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}

	s.audit(ctx, trip, domain.AuditDeleted, identity)
	return nil
}

// GetByID returns a single trip after authorizing the caller against its student.
func (s *TripService) GetByID(ctx context.Context, identity auth.Identity, tripID uuid.UUID) (domain.Trip, error) {
	return s.authorizedTrip(ctx, identity, tripID)
}

// ListByStudent returns one page of the student's trips, newest first,
// together with the total count. The list includes running and unapproved
// trips; callers distinguish countable ones via Trip.Countable.
func (s *TripService) ListByStudent(ctx context.Context, identity auth.Identity, studentID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	if _, err := s.authorize(ctx, identity, studentID); err != nil {
		return nil, 0, err
	}

	trips, total, err := s.trips.ListByStudentPaged(ctx, studentID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListByStudent: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Hours aggregates the student's countable trips into day/night totals.
func (s *TripService) Hours(ctx context.Context, identity auth.Identity, studentID uuid.UUID) (domain.Summary, error) {
	if _, err := s.authorize(ctx, identity, studentID); err != nil {
		return domain.Summary{}, err
	}

	trips, err := s.trips.ListByStudent(ctx, studentID)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("service.TripService.Hours: %w", err)
	}
	return domain.Summarize(trips), nil
}

// Audits returns the trip's audit trail, newest first.
func (s *TripService) Audits(ctx context.Context, identity auth.Identity, tripID uuid.UUID) ([]domain.TripAudit, error) {
	if _, err := s.authorizedTrip(ctx, identity, tripID); err != nil {
		return nil, err
	}

	audits, err := s.audits.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Audits: %w", err)
	}
	if audits == nil {
		audits = []domain.TripAudit{}
	}
	return audits, nil
}

// authorize is the access guard run before every operation: the caller must
// hold the parent role, own a parent profile, and have a granted relationship
// to the student. A missing relationship is a permission failure, not a
// not-found, so callers cannot probe for student existence.
func (s *TripService) authorize(ctx context.Context, identity auth.Identity, studentID uuid.UUID) (domain.Parent, error) {
	if identity.Role != auth.RoleParent {
		return domain.Parent{}, domain.Errorf(domain.ErrPermission, "only parents can manage trips")
	}

	parent, err := s.parents.GetByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Parent{}, domain.Errorf(domain.ErrPermission, "no parent profile for this account")
		}
		return domain.Parent{}, fmt.Errorf("service.TripService.authorize: %w", err)
	}

	ok, err := s.rels.Exists(ctx, parent.ID, studentID)
	if err != nil {
		return domain.Parent{}, fmt.Errorf("service.TripService.authorize: %w", err)
	}
	if !ok {
		return domain.Parent{}, domain.Errorf(domain.ErrPermission, "not authorized for this student")
	}
	return parent, nil
}

// authorizedTrip loads a trip and guards the caller against it: the caller
// must pass the student-level guard and be the parent who supervised the
// trip. Two parents can share a student yet never touch each other's records.
func (s *TripService) authorizedTrip(ctx context.Context, identity auth.Identity, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService: %w", err)
	}
	parent, err := s.authorize(ctx, identity, trip.StudentID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.ParentID != parent.ID {
		return domain.Trip{}, domain.Errorf(domain.ErrPermission, "trip was logged by another parent")
	}
	return trip, nil
}

// audit appends a lifecycle entry. Auditing is best-effort: a failure is
// logged but never fails the transition that already committed.
func (s *TripService) audit(ctx context.Context, trip domain.Trip, action string, identity auth.Identity) {
	entry := domain.NewTripAudit(trip, action, identity.UserID)
	if err := s.audits.Append(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "trip audit append failed",
			"trip_id", trip.ID, "action", action, "error", err)
	}
}
