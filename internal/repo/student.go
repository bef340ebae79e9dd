package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/permit-log/backend/internal/domain"
)

// StudentRepo exposes the narrow student lookups the trip core needs:
// resolving a student for authorization checks and for the report header.
// Student CRUD itself belongs to the profile collaborator, not this service.
type StudentRepo interface {
	// GetByID retrieves a student by primary key.
	// Returns domain.ErrNotFound if no student with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Student, error)
}

type pgStudentRepo struct {
	db db
}

// NewStudentRepo constructs a StudentRepo backed by the provided db connection.
func NewStudentRepo(db db) StudentRepo {
	return &pgStudentRepo{db: db}
}

func (r *pgStudentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Student, error) {
	const q = `
		SELECT id, first_name, last_name, permit_number,
		       drivers_ed_completed, drivers_ed_date, road_test_taken, road_test_passed, created_at
		FROM students
		WHERE id = @id`

	var (
		s        domain.Student
		sid      pgtype.UUID
		edDate   pgtype.Timestamptz
		roadTest pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(
		&sid, &s.FirstName, &s.LastName, &s.PermitNumber,
		&s.DriversEdCompleted, &edDate, &roadTest, &s.RoadTestPassed, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Student{}, fmt.Errorf("repo.StudentRepo.GetByID: %w", domain.ErrNotFound)
		}
		return domain.Student{}, fmt.Errorf("repo.StudentRepo.GetByID: %w", err)
	}

	s.ID = uuid.UUID(sid.Bytes)
	if edDate.Valid {
		d := edDate.Time
		s.DriversEdDate = &d
	}
	if roadTest.Valid {
		d := roadTest.Time
		s.RoadTestTaken = &d
	}
	return s, nil
}
