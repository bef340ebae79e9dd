package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/permit-log/backend/internal/domain"
)

// AuditRepo persists the append-only trip audit trail.
type AuditRepo interface {
	// Append inserts one audit entry. Never updates or deletes.
	Append(ctx context.Context, audit domain.TripAudit) error

	// ListByTrip returns a trip's audit entries, newest first.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripAudit, error)
}

type pgAuditRepo struct {
	db db
}

// NewAuditRepo constructs an AuditRepo backed by the provided db connection.
func NewAuditRepo(db db) AuditRepo {
	return &pgAuditRepo{db: db}
}

func (r *pgAuditRepo) Append(ctx context.Context, audit domain.TripAudit) error {
	const q = `
		INSERT INTO trip_audits (trip_id, action, performed_by, snapshot)
		VALUES (@trip_id, @action, @performed_by, @snapshot)`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"trip_id":      audit.TripID,
		"action":       audit.Action,
		"performed_by": audit.PerformedBy,
		"snapshot":     []byte(audit.Snapshot),
	})
	if err != nil {
		return fmt.Errorf("repo.AuditRepo.Append: %w", err)
	}
	return nil
}

func (r *pgAuditRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripAudit, error) {
	const q = `
		SELECT id, trip_id, action, performed_by, snapshot, created_at
		FROM trip_audits
		WHERE trip_id = @trip_id
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var audits []domain.TripAudit
	for rows.Next() {
		var (
			a    domain.TripAudit
			id   pgtype.UUID
			tid  pgtype.UUID
			by   pgtype.UUID
			snap []byte
		)
		if err := rows.Scan(&id, &tid, &a.Action, &by, &snap, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.AuditRepo.ListByTrip: scan: %w", err)
		}
		a.ID = uuid.UUID(id.Bytes)
		a.TripID = uuid.UUID(tid.Bytes)
		a.PerformedBy = uuid.UUID(by.Bytes)
		a.Snapshot = snap
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.ListByTrip: rows: %w", err)
	}
	return audits, nil
}
