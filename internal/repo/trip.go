// Package repo contains all database access logic for the Permit Log API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/permit-log/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const tripColumns = `id, parent_id, student_id, start_time, end_time,
		       is_active, is_night, is_approved, duration_minutes, gps_data, created_at`

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
//
// The guarded mutations (Finish, UpdateTimes, Approve, Delete) carry their
// state precondition into the SQL WHERE clause, so a concurrent transition
// can never slip past the check: the losing writer simply affects zero rows
// and gets domain.ErrConflict (or ErrNotFound when the row is gone).
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id and created_at populated). Inserting a second active
	// trip for the same (parent, student) pair violates the one_active_trip
	// index and returns domain.ErrConflict.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// FindActive returns the running trip for a (parent, student) pair.
	// Returns domain.ErrNotFound when no timer is running.
	FindActive(ctx context.Context, parentID, studentID uuid.UUID) (domain.Trip, error)

	// ListByStudent returns all of a student's trips ordered by start_time
	// descending (most recent first).
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Trip, error)

	// ListByStudentPaged returns one page of a student's trips plus the
	// total row count for pagination metadata.
	ListByStudentPaged(ctx context.Context, studentID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Finish completes a running trip: sets end_time, clears is_active, and
	// stores the recomputed derived fields. Guarded on is_active; returns
	// domain.ErrConflict if the trip is no longer running.
	Finish(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// UpdateTimes overwrites both timestamps and the derived fields of a
	// finished, unapproved trip. Guarded on NOT is_active AND NOT
	// is_approved; returns domain.ErrConflict when the guard fails.
	UpdateTimes(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Approve sets is_approved on a finished trip. Guarded on NOT is_active
	// AND NOT is_approved; returns domain.ErrConflict when the guard fails.
	Approve(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// Delete removes an unapproved trip (running or finished). Guarded on
	// NOT is_approved; returns domain.ErrConflict for an approved trip and
	// domain.ErrNotFound when the row does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (parent_id, student_id, start_time, end_time,
		                   is_active, is_night, is_approved, duration_minutes, gps_data)
		VALUES (@parent_id, @student_id, @start_time, @end_time,
		        @is_active, @is_night, @is_approved, @duration_minutes, @gps_data)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"parent_id":        trip.ParentID,
		"student_id":       trip.StudentID,
		"start_time":       trip.StartTime,
		"end_time":         trip.EndTime, // nil becomes NULL
		"is_active":        trip.IsActive,
		"is_night":         trip.IsNight,
		"is_approved":      trip.IsApproved,
		"duration_minutes": trip.Duration,
		"gps_data":         []byte(trip.GPSData),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		if isActiveTripViolation(err) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w",
				domain.Errorf(domain.ErrConflict, "a trip is already running for this student"))
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) FindActive(ctx context.Context, parentID, studentID uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE parent_id = @parent_id AND student_id = @student_id AND is_active`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"parent_id": parentID, "student_id": studentID})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.FindActive: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE student_id = @student_id
		ORDER BY start_time DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"student_id": studentID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByStudent: %w", err)
	}
	defer rows.Close()

	return collectTrips(rows, "repo.TripRepo.ListByStudent")
}

func (r *pgTripRepo) ListByStudentPaged(ctx context.Context, studentID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const countQ = `SELECT count(*) FROM trips WHERE student_id = @student_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"student_id": studentID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByStudentPaged: count: %w", err)
	}

	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE student_id = @student_id
		ORDER BY start_time DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"student_id": studentID,
		"limit":      p.Limit,
		"offset":     p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByStudentPaged: %w", err)
	}
	defer rows.Close()

	trips, err := collectTrips(rows, "repo.TripRepo.ListByStudentPaged")
	if err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

func (r *pgTripRepo) Finish(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET end_time         = @end_time,
		    is_active        = FALSE,
		    is_night         = @is_night,
		    duration_minutes = @duration_minutes,
		    gps_data         = COALESCE(@gps_data, gps_data)
		WHERE id = @id AND is_active
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":               trip.ID,
		"end_time":         trip.EndTime,
		"is_night":         trip.IsNight,
		"duration_minutes": trip.Duration,
		"gps_data":         []byte(trip.GPSData),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Finish: %w", r.classifyGuardMiss(ctx, trip.ID, err))
	}
	return result, nil
}

func (r *pgTripRepo) UpdateTimes(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET start_time       = @start_time,
		    end_time         = @end_time,
		    is_night         = @is_night,
		    duration_minutes = @duration_minutes
		WHERE id = @id AND NOT is_active AND NOT is_approved
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":               trip.ID,
		"start_time":       trip.StartTime,
		"end_time":         trip.EndTime,
		"is_night":         trip.IsNight,
		"duration_minutes": trip.Duration,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateTimes: %w", r.classifyGuardMiss(ctx, trip.ID, err))
	}
	return result, nil
}

func (r *pgTripRepo) Approve(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET is_approved = TRUE
		WHERE id = @id AND NOT is_active AND NOT is_approved
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Approve: %w", r.classifyGuardMiss(ctx, id, err))
	}
	return result, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND NOT is_approved`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", r.classifyGuardMiss(ctx, id, domain.ErrNotFound))
	}
	return nil
}

// classifyGuardMiss turns a zero-row guarded mutation into the right sentinel:
// ErrNotFound when the row truly does not exist, ErrConflict when it exists
// but its current state fails the guard. Other errors pass through unchanged.
func (r *pgTripRepo) classifyGuardMiss(ctx context.Context, id uuid.UUID, err error) error {
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	const q = `SELECT 1 FROM trips WHERE id = @id`
	var one int
	if scanErr := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&one); scanErr != nil {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// isActiveTripViolation reports whether err is the unique violation raised by
// the one_active_trip partial index.
func isActiveTripViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "one_active_trip"
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID, nullable end_time, and jsonb conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		parentID  pgtype.UUID
		studentID pgtype.UUID
		endTime   pgtype.Timestamptz
		gps       []byte
	)

	err := s.Scan(&id, &parentID, &studentID, &t.StartTime, &endTime,
		&t.IsActive, &t.IsNight, &t.IsApproved, &t.Duration, &gps, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.ParentID = uuid.UUID(parentID.Bytes)
	t.StudentID = uuid.UUID(studentID.Bytes)
	if endTime.Valid {
		et := endTime.Time
		t.EndTime = &et
	}
	t.GPSData = gps

	return t, nil
}

// collectTrips drains rows into a slice, wrapping scan errors with op.
func collectTrips(rows pgx.Rows, op string) ([]domain.Trip, error) {
	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return trips, nil
}
