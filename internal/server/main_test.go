package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"quartermaster/internal/auth"
	"quartermaster/internal/config"
	"quartermaster/internal/database"
	"quartermaster/internal/models"
	"quartermaster/internal/observability"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	observability.RepoLoggingEnabled = false
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_]`)

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	redis  *redis.Client
	mr     *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret-key-12345678901234567890",
		TokenTTLHours: 24,
		Port:          "0",
		Env:           "test",
		DBDriver:      "sqlite",
		FeatureFlags:  "google_signin=on",
		AdminEmails:   "boss@example.com",
		EmailPattern:  `^[a-z]+\.(cs|it)(24|25)@example\.edu$`,
	}
}

func setupTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	name := unsafeName.ReplaceAllString(strings.ToLower(t.Name()), "_")
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:srv_%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &testEnv{server: s, app: s.NewApp(), db: db, redis: rdb, mr: mr}
}

func (e *testEnv) seedUser(t *testing.T, email, password string, role models.Role) (*models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Email: email, Password: hash, FullName: "Test User", Role: role}
	require.NoError(t, e.db.Create(u).Error)
	token, err := e.server.tokens.Issue(u)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) seedResource(t *testing.T, name string, qty int) *models.Resource {
	t.Helper()
	r := &models.Resource{Name: name, Category: "lab", QuantityAvailable: qty}
	require.NoError(t, e.db.Create(r).Error)
	return r
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeError(t *testing.T, data []byte) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &body), string(data))
	return body
}
