package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quartermaster/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "healthy", body["status"])

	// Without Redis the service keeps serving, uncached.
	noRedis, err := NewServerWithDeps(testConfig(), env.db, nil)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r, err := noRedis.NewApp().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = r.Body.Close() }()
	assert.Equal(t, http.StatusOK, r.StatusCode)
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
}

func TestUnknownRouteUsesErrorBody(t *testing.T) {
	env := setupTestEnv(t)

	resp, data := env.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, decodeError(t, data).Code)
}

func TestAuthRequired(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.seedUser(t, "user@example.com", "pw", models.RoleUser)

	resp, data := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, models.CodeUnauthorized, decodeError(t, data).Code)

	resp, _ = env.do(t, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, data = env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var me models.User
	require.NoError(t, json.Unmarshal(data, &me))
	assert.Equal(t, "user@example.com", me.Email)
	assert.NotContains(t, string(data), "password")
}

func TestFeatureFlagsAdminOnly(t *testing.T) {
	env := setupTestEnv(t)
	_, userToken := env.seedUser(t, "user@example.com", "pw", models.RoleUser)
	_, adminToken := env.seedUser(t, "admin@example.com", "pw", models.RoleAdmin)

	resp, data := env.do(t, http.MethodGet, "/api/admin/feature-flags", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeForbidden, decodeError(t, data).Code)

	resp, data = env.do(t, http.MethodGet, "/api/admin/feature-flags", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "on", body.Raw["google_signin"])
	assert.True(t, body.Evaluated["google_signin"])
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "request ID", humanizeParam("requestId"))
	assert.Equal(t, "resource type ID", humanizeParam("resourceTypeId"))
	assert.Equal(t, "slug", humanizeParam("slug"))
}
