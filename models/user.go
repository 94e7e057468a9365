package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lejendary/oauth2-server/internal/security"
)

// User represents a stored account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Login        string    `json:"login" db:"login"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name,omitempty" db:"first_name"`
	LastName     string    `json:"last_name,omitempty" db:"last_name"`
	Activated    bool      `json:"activated" db:"activated"`
	Authorities  []string  `json:"authorities" db:"authorities"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new activated User. Logins are stored lower-case.
func NewUser(login, email, passwordHash string, authorities []string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Login:        strings.ToLower(login),
		PasswordHash: passwordHash,
		Email:        email,
		Activated:    true,
		Authorities:  slices.Clone(authorities),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Principal projects the account onto the request principal type.
// The password hash is not carried over.
func (u *User) Principal() *security.User {
	return &security.User{
		ID:          u.ID,
		Login:       u.Login,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Activated:   u.Activated,
		Authorities: slices.Clone(u.Authorities),
	}
}

// IsAdmin returns true if the user holds ROLE_ADMIN
func (u *User) IsAdmin() bool {
	return slices.Contains(u.Authorities, security.AdminAuthority)
}
