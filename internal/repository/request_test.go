package repository

import (
	"context"
	"testing"
	"time"

	"quartermaster/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "alice.cs24@bitsathy.ac.in", models.RoleUser)
	res := seedResource(t, db, "Arduino Kit", "Electronics", 10)

	req := &models.Request{UserID: user.ID, ResourceID: res.ID, QuantityRequested: 2, Purpose: "Lab work", Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, req))

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending())
	require.NotNil(t, got.Resource)
	assert.Equal(t, "Arduino Kit", got.Resource.Name)
	require.NotNil(t, got.User)
	assert.Equal(t, user.Email, got.User.Email)
	assert.Nil(t, got.Reviewer)

	_, err = repo.GetByID(ctx, 404)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRequestRepository_ListKeepsDeletedResources(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "bob.it23@bitsathy.ac.in", models.RoleUser)
	other := seedUser(t, db, "carol.ee22@bitsathy.ac.in", models.RoleUser)
	res := seedResource(t, db, "Soldering Iron", "Electronics", 4)

	require.NoError(t, repo.Create(ctx, &models.Request{UserID: user.ID, ResourceID: res.ID, QuantityRequested: 1, Purpose: "a", Status: models.RequestStatusPending}))
	require.NoError(t, repo.Create(ctx, &models.Request{UserID: other.ID, ResourceID: res.ID, QuantityRequested: 1, Purpose: "b", Status: models.RequestStatusRejected}))
	require.NoError(t, db.Delete(res).Error)

	all, err := repo.List(ctx, RequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Purpose, "newest first")
	require.NotNil(t, all[0].Resource)

	pending, err := repo.List(ctx, RequestFilter{Status: models.RequestStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].Purpose)

	mine, err := repo.List(ctx, RequestFilter{UserID: &other.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, other.ID, mine[0].UserID)
}

func TestRequestRepository_TransitionFromPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "dan.cs25@bitsathy.ac.in", models.RoleUser)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	res := seedResource(t, db, "Multimeter", "Electronics", 4)
	req := &models.Request{UserID: user.ID, ResourceID: res.ID, QuantityRequested: 1, Purpose: "x", Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, req))

	reason := "Not needed"
	now := time.Now()
	ok, err := repo.TransitionFromPending(ctx, req.ID, Transition{
		Status: models.RequestStatusRejected, ReviewerID: admin.ID, ReviewedAt: now, RejectionReason: &reason,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, reason, *got.RejectionReason)
	require.NotNil(t, got.ReviewedByUserID)
	assert.Equal(t, admin.ID, *got.ReviewedByUserID)
	require.NotNil(t, got.Reviewer)
	assert.Equal(t, admin.Email, got.Reviewer.Email)
	require.NotNil(t, got.ReviewedAt)

	ok, err = repo.TransitionFromPending(ctx, req.ID, Transition{Status: models.RequestStatusApproved, ReviewerID: admin.ID, ReviewedAt: now})
	require.NoError(t, err)
	assert.False(t, ok, "already reviewed")
}

func TestRequestRepository_TransitionStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "requests" SET .* WHERE \(id = \$\d+ AND status = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.TransitionFromPending(context.Background(), 5, Transition{
		Status: models.RequestStatusApproved, ReviewerID: 1, ReviewedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_CountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	u1 := seedUser(t, db, "erin.cs22@bitsathy.ac.in", models.RoleUser)
	u2 := seedUser(t, db, "finn.cs22@bitsathy.ac.in", models.RoleUser)
	res := seedResource(t, db, "Breadboard", "Electronics", 9)
	for _, r := range []models.Request{
		{UserID: u1.ID, Status: models.RequestStatusPending},
		{UserID: u1.ID, Status: models.RequestStatusApproved},
		{UserID: u2.ID, Status: models.RequestStatusPending},
		{UserID: u2.ID, Status: models.RequestStatusRejected},
	} {
		r.ResourceID = res.ID
		r.QuantityRequested = 1
		r.Purpose = "p"
		require.NoError(t, repo.Create(ctx, &r))
	}

	all, err := repo.CountByStatus(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all[models.RequestStatusPending])
	assert.Equal(t, int64(1), all[models.RequestStatusApproved])
	assert.Equal(t, int64(1), all[models.RequestStatusRejected])

	mine, err := repo.CountByStatus(ctx, &u1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine[models.RequestStatusPending])
	assert.Equal(t, int64(0), mine[models.RequestStatusRejected])
}
