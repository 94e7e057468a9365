package security

import (
	"slices"

	"github.com/google/uuid"
)

// Well-known authorities.
const (
	AnonymousAuthority = "ROLE_ANONYMOUS"
	UserAuthority      = "ROLE_USER"
	AdminAuthority     = "ROLE_ADMIN"
)

// AnonymousLogin is the login reported for the anonymous principal.
const AnonymousLogin = "anonymousUser"

// Principal is the authenticated actor carried by an Authentication.
type Principal interface {
	// Name returns the login of the principal.
	Name() string
	// GrantedAuthorities returns the authorities held by the principal.
	GrantedAuthorities() []string
}

// User is the principal type used throughout the service.
type User struct {
	ID          uuid.UUID `json:"id"`
	Login       string    `json:"login"`
	Email       string    `json:"email,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Activated   bool      `json:"activated"`
	Authorities []string  `json:"authorities"`
}

// Name returns the user's login. A nil user has an empty login.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	return u.Login
}

// GrantedAuthorities returns a copy of the user's authorities.
func (u *User) GrantedAuthorities() []string {
	if u == nil {
		return nil
	}
	return slices.Clone(u.Authorities)
}

// AnonymousUser returns the principal used for requests without credentials.
func AnonymousUser() *User {
	return &User{
		Login:       AnonymousLogin,
		Authorities: []string{AnonymousAuthority},
	}
}
