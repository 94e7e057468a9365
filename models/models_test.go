package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/lejendary/oauth2-server/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	authorities := []string{security.UserAuthority}
	user := NewUser("Jane.Doe", "jane@example.com", "hash", authorities)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "jane.doe", user.Login)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.True(t, user.Activated)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)

	authorities[0] = "ROLE_CHANGED"
	assert.Equal(t, []string{security.UserAuthority}, user.Authorities)
}

func TestUser_Principal(t *testing.T) {
	user := NewUser("admin", "admin@example.com", "hash", []string{security.UserAuthority, security.AdminAuthority})
	user.FirstName = "Ada"

	p := user.Principal()
	assert.Equal(t, user.ID, p.ID)
	assert.Equal(t, "admin", p.Name())
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, user.Authorities, p.GrantedAuthorities())
}

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name        string
		authorities []string
		expected    bool
	}{
		{"admin", []string{security.UserAuthority, security.AdminAuthority}, true},
		{"user", []string{security.UserAuthority}, false},
		{"none", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Authorities: tt.authorities}
			assert.Equal(t, tt.expected, user.IsAdmin())
		})
	}
}

func TestUser_JSONOmitsPasswordHash(t *testing.T) {
	user := NewUser("jdoe", "jdoe@example.com", "$2a$10$secret", []string{security.UserAuthority})

	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
}
