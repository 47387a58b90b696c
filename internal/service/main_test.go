package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"quartermaster/internal/access"
	"quartermaster/internal/database"
	"quartermaster/internal/models"
	"quartermaster/internal/notifications"
	"quartermaster/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	observability.RepoLoggingEnabled = false
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := unsafeName.ReplaceAllString(strings.ToLower(t.Name()), "_")
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "x", FullName: email, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedResource(t *testing.T, db *gorm.DB, name string, qty int) *models.Resource {
	t.Helper()
	r := &models.Resource{Name: name, Category: "lab", QuantityAvailable: qty}
	require.NoError(t, db.Create(r).Error)
	return r
}

func seedRequest(t *testing.T, db *gorm.DB, userID, resourceID uint, qty int) *models.Request {
	t.Helper()
	r := &models.Request{
		UserID:            userID,
		ResourceID:        resourceID,
		QuantityRequested: qty,
		Purpose:           "lab work",
		Status:            models.RequestStatusPending,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func principalFor(u *models.User) *access.Principal {
	return &access.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func quantityOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var r models.Resource
	require.NoError(t, db.Unscoped().First(&r, id).Error)
	return r.QuantityAvailable
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	users  map[uint][]notifications.Event
	admins []notifications.Event
	err    error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{users: map[uint][]notifications.Event{}}
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[userID] = append(p.users[userID], ev)
	return p.err
}

func (p *recordingPublisher) PublishAdmins(_ context.Context, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admins = append(p.admins, ev)
	return p.err
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}
