package repository

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"quartermaster/internal/database"
	"quartermaster/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// setupTestDB opens a private in-memory SQLite database with the schema applied.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := unsafeName.ReplaceAllString(strings.ToLower(t.Name()), "_")
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "x", FullName: email, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedResource(t *testing.T, db *gorm.DB, name, category string, qty int) *models.Resource {
	t.Helper()
	r := &models.Resource{Name: name, Category: category, QuantityAvailable: qty}
	require.NoError(t, db.Create(r).Error)
	return r
}
