package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RelationshipRepo answers the single question the authorization guard asks:
// has this parent been granted access to this student? Creating and revoking
// relationships is the invitation collaborator's job.
type RelationshipRepo interface {
	// Exists reports whether a granted relationship links parent and student.
	Exists(ctx context.Context, parentID, studentID uuid.UUID) (bool, error)
}

type pgRelationshipRepo struct {
	db db
}

// NewRelationshipRepo constructs a RelationshipRepo backed by the provided db connection.
func NewRelationshipRepo(db db) RelationshipRepo {
	return &pgRelationshipRepo{db: db}
}

func (r *pgRelationshipRepo) Exists(ctx context.Context, parentID, studentID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM parent_student_relationships
			WHERE parent_id = @parent_id AND student_id = @student_id
		)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"parent_id": parentID, "student_id": studentID}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.RelationshipRepo.Exists: %w", err)
	}
	return exists, nil
}
