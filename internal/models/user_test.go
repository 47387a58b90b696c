package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_JSONHidesCredentials(t *testing.T) {
	googleID := "g-123"
	u := User{ID: 7, Email: "asha@example.edu", Password: "$2a$10$hash", FullName: "Asha", Role: RoleUser, GoogleID: &googleID}

	data, err := json.Marshal(Request{ID: 1, User: &u, Reviewer: &u})
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `"email":"asha@example.edu"`)
	assert.NotContains(t, body, "google_id")
	assert.NotContains(t, body, "g-123")
	assert.NotContains(t, body, "$2a$")
}

func TestUser_IsAdmin(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}
