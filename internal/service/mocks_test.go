package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/permit-log/backend/internal/domain"
	"github.com/pkordes/permit-log/backend/internal/repo"
)

// Hand-written test doubles for the repo interfaces.
// Each method is a function field — set only the ones your test needs.
// This is idiomatic Go: no mock generation library required for simple cases.

type mockTripRepo struct {
	create             func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID            func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	findActive         func(ctx context.Context, parentID, studentID uuid.UUID) (domain.Trip, error)
	listByStudent      func(ctx context.Context, studentID uuid.UUID) ([]domain.Trip, error)
	listByStudentPaged func(ctx context.Context, studentID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	finish             func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	updateTimes        func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	approve            func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	delete             func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) FindActive(ctx context.Context, parentID, studentID uuid.UUID) (domain.Trip, error) {
	return m.findActive(ctx, parentID, studentID)
}
func (m *mockTripRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Trip, error) {
	return m.listByStudent(ctx, studentID)
}
func (m *mockTripRepo) ListByStudentPaged(ctx context.Context, studentID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByStudentPaged(ctx, studentID, p)
}
func (m *mockTripRepo) Finish(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.finish(ctx, trip)
}
func (m *mockTripRepo) UpdateTimes(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.updateTimes(ctx, trip)
}
func (m *mockTripRepo) Approve(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.approve(ctx, id)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockParentRepo struct {
	getByUserID func(ctx context.Context, userID uuid.UUID) (domain.Parent, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Parent, error)
}

func (m *mockParentRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (domain.Parent, error) {
	return m.getByUserID(ctx, userID)
}
func (m *mockParentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Parent, error) {
	return m.getByID(ctx, id)
}

var _ repo.ParentRepo = (*mockParentRepo)(nil)

type mockStudentRepo struct {
	getByID func(ctx context.Context, id uuid.UUID) (domain.Student, error)
}

func (m *mockStudentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Student, error) {
	return m.getByID(ctx, id)
}

var _ repo.StudentRepo = (*mockStudentRepo)(nil)

type mockRelationshipRepo struct {
	exists func(ctx context.Context, parentID, studentID uuid.UUID) (bool, error)
}

func (m *mockRelationshipRepo) Exists(ctx context.Context, parentID, studentID uuid.UUID) (bool, error) {
	return m.exists(ctx, parentID, studentID)
}

var _ repo.RelationshipRepo = (*mockRelationshipRepo)(nil)

// mockAuditRepo records appended entries so tests can assert on the trail.
type mockAuditRepo struct {
	appended   []domain.TripAudit
	appendErr  error
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.TripAudit, error)
}

func (m *mockAuditRepo) Append(_ context.Context, audit domain.TripAudit) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, audit)
	return nil
}
func (m *mockAuditRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripAudit, error) {
	return m.listByTrip(ctx, tripID)
}

var _ repo.AuditRepo = (*mockAuditRepo)(nil)
