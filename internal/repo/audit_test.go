package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/permit-log/backend/internal/domain"
	"github.com/pkordes/permit-log/backend/internal/repo"
)

func TestAuditRepo_AppendAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audits := repo.NewAuditRepo(env.tx)

	trip, err := env.trips.Create(ctx, env.finishedTrip())
	require.NoError(t, err)

	require.NoError(t, audits.Append(ctx, domain.NewTripAudit(trip, domain.AuditLogged, env.parentID)))
	approved, err := env.trips.Approve(ctx, trip.ID)
	require.NoError(t, err)
	require.NoError(t, audits.Append(ctx, domain.NewTripAudit(approved, domain.AuditApproved, env.parentID)))

	got, err := audits.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, domain.AuditApproved, got[0].Action)
	assert.Equal(t, domain.AuditLogged, got[1].Action)
	assert.Equal(t, env.parentID, got[0].PerformedBy)
	assert.JSONEq(t, string(domain.NewTripAudit(approved, domain.AuditApproved, env.parentID).Snapshot), string(got[0].Snapshot))
}

func TestAuditRepo_ListByTrip_Empty(t *testing.T) {
	env := newTestEnv(t)
	audits := repo.NewAuditRepo(env.tx)

	got, err := audits.ListByTrip(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParentRepo_GetByUserID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parents := repo.NewParentRepo(env.tx)

	userID := uuid.New()
	parentID := env.seedParent(t, userID, "Chris", "Nguyen")

	got, err := parents.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, parentID, got.ID)
	assert.Equal(t, "Chris Nguyen", got.DisplayName())

	_, err = parents.GetByUserID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRelationshipRepo_Exists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rels := repo.NewRelationshipRepo(env.tx)

	ok, err := rels.Exists(ctx, env.parentID, env.studentID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rels.Exists(ctx, env.parentID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStudentRepo_GetByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	students := repo.NewStudentRepo(env.tx)

	got, err := students.GetByID(ctx, env.studentID)
	require.NoError(t, err)
	assert.Equal(t, "Jamie Kordes", got.DisplayName())

	_, err = students.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
