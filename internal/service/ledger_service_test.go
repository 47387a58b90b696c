package service

import (
	"context"
	"testing"

	"quartermaster/internal/models"
	"quartermaster/internal/notifications"
	"quartermaster/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLedger(db *gorm.DB, pub EventPublisher) *LedgerService {
	return NewLedgerService(repository.NewRequestRepository(db), repository.NewResourceRepository(db), pub)
}

func TestLedgerService_CreatePending(t *testing.T) {
	db := setupTestDB(t)
	pub := newRecordingPublisher()
	svc := newLedger(db, pub)
	user := seedUser(t, db, "user@example.com", models.RoleUser)
	res := seedResource(t, db, "Projector", 1)

	// Over-subscription is allowed at creation time.
	req, err := svc.Create(context.Background(), principalFor(user), CreateRequestInput{
		ResourceID: res.ID, QuantityRequested: 5, Purpose: "  demo day  ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, "demo day", req.Purpose)
	assert.Equal(t, user.ID, req.UserID)
	require.NotNil(t, req.Resource)
	assert.Equal(t, "Projector", req.Resource.Name)
	assert.Nil(t, req.ReviewedAt)
	assert.Equal(t, 1, quantityOf(t, db, res.ID))

	require.Len(t, pub.admins, 1)
	assert.Equal(t, notifications.EventRequestCreated, pub.admins[0].Type)
}

func TestLedgerService_CreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newLedger(db, nil)
	user := principalFor(seedUser(t, db, "user@example.com", models.RoleUser))
	res := seedResource(t, db, "Projector", 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, user, CreateRequestInput{ResourceID: res.ID, QuantityRequested: 0, Purpose: "x"})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, user, CreateRequestInput{ResourceID: res.ID, QuantityRequested: -2, Purpose: "x"})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, user, CreateRequestInput{ResourceID: res.ID, QuantityRequested: 1, Purpose: "   "})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, user, CreateRequestInput{ResourceID: 999, QuantityRequested: 1, Purpose: "x"})
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.Create(ctx, nil, CreateRequestInput{ResourceID: res.ID, QuantityRequested: 1, Purpose: "x"})
	assertCode(t, err, models.CodeUnauthorized)
}

func TestLedgerService_Listing(t *testing.T) {
	db := setupTestDB(t)
	svc := newLedger(db, nil)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	alice := seedUser(t, db, "alice@example.com", models.RoleUser)
	bob := seedUser(t, db, "bob@example.com", models.RoleUser)
	res := seedResource(t, db, "Projector", 5)
	seedRequest(t, db, alice.ID, res.ID, 1)
	seedRequest(t, db, bob.ID, res.ID, 2)
	ctx := context.Background()

	_, err := svc.ListAll(ctx, principalFor(alice), "")
	assertCode(t, err, models.CodeForbidden)

	all, err := svc.ListAll(ctx, principalFor(admin), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	require.NotNil(t, all[0].User)

	pending, err := svc.ListAll(ctx, principalFor(admin), "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.ListAll(ctx, principalFor(admin), "archived")
	assertCode(t, err, models.CodeValidation)

	mine, err := svc.ListMine(ctx, principalFor(alice))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice.ID, mine[0].UserID)
}

func TestLedgerService_Stats(t *testing.T) {
	db := setupTestDB(t)
	svc := newLedger(db, nil)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	alice := seedUser(t, db, "alice@example.com", models.RoleUser)
	bob := seedUser(t, db, "bob@example.com", models.RoleUser)
	res := seedResource(t, db, "Projector", 5)
	seedResource(t, db, "Camera", 0)
	seedRequest(t, db, alice.ID, res.ID, 1)
	seedRequest(t, db, bob.ID, res.ID, 1)
	approved := seedRequest(t, db, bob.ID, res.ID, 1)
	require.NoError(t, db.Model(approved).Update("status", models.RequestStatusApproved).Error)

	global, err := svc.Stats(context.Background(), principalFor(admin))
	require.NoError(t, err)
	assert.Equal(t, int64(3), global.TotalRequests)
	assert.Equal(t, int64(2), global.PendingRequests)
	assert.Equal(t, int64(1), global.ApprovedRequests)
	assert.Equal(t, int64(2), global.TotalResources)
	assert.Equal(t, int64(1), global.OutOfStockResources)

	own, err := svc.Stats(context.Background(), principalFor(alice))
	require.NoError(t, err)
	assert.Equal(t, int64(1), own.TotalRequests)
	assert.Equal(t, int64(1), own.PendingRequests)
	assert.Zero(t, own.ApprovedRequests)
	assert.Equal(t, int64(2), own.TotalResources)
}
