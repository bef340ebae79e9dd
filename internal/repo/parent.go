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

// ParentRepo resolves parent profiles. The trip core needs two lookups:
// the profile behind an authenticated user, and display names for report rows.
type ParentRepo interface {
	// GetByUserID retrieves the parent profile owned by an identity-provider
	// user. Returns domain.ErrNotFound when the user has no parent profile.
	GetByUserID(ctx context.Context, userID uuid.UUID) (domain.Parent, error)

	// GetByID retrieves a parent profile by primary key.
	// Returns domain.ErrNotFound if no parent with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Parent, error)
}

type pgParentRepo struct {
	db db
}

// NewParentRepo constructs a ParentRepo backed by the provided db connection.
func NewParentRepo(db db) ParentRepo {
	return &pgParentRepo{db: db}
}

const parentColumns = `id, user_id, first_name, last_name, city, state, phone, created_at`

func (r *pgParentRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (domain.Parent, error) {
	const q = `SELECT ` + parentColumns + ` FROM parents WHERE user_id = @user_id`

	p, err := scanParent(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.Parent{}, fmt.Errorf("repo.ParentRepo.GetByUserID: %w", err)
	}
	return p, nil
}

func (r *pgParentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Parent, error) {
	const q = `SELECT ` + parentColumns + ` FROM parents WHERE id = @id`

	p, err := scanParent(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Parent{}, fmt.Errorf("repo.ParentRepo.GetByID: %w", err)
	}
	return p, nil
}

func scanParent(s scanner) (domain.Parent, error) {
	var (
		p      domain.Parent
		id     pgtype.UUID
		userID pgtype.UUID
	)
	err := s.Scan(&id, &userID, &p.FirstName, &p.LastName, &p.City, &p.State, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Parent{}, domain.ErrNotFound
		}
		return domain.Parent{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.UserID = uuid.UUID(userID.Bytes)
	return p, nil
}
