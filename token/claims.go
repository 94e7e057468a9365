package token

import (
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lejendary/oauth2-server/internal/security"
)

var (
	// ErrMissingClaim is returned when a required claim is missing
	ErrMissingClaim = errors.New("missing required claim")

	// ErrInvalidClaimType is returned when a claim has an unexpected type
	ErrInvalidClaimType = errors.New("invalid claim type")
)

// Claims represents the claims carried by an access token
type Claims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"uid"`
	Login       string   `json:"login"`
	Email       string   `json:"email,omitempty"`
	FirstName   string   `json:"given_name,omitempty"`
	LastName    string   `json:"family_name,omitempty"`
	Authorities []string `json:"auth"`
}

// NewClaims builds token claims for user. Registered claims are filled in by
// the Manager.
func NewClaims(user *security.User) *Claims {
	return &Claims{
		UserID:      user.ID.String(),
		Login:       user.Login,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Authorities: slices.Clone(user.Authorities),
	}
}

// ExtractClaims parses a token without verifying its signature.
// Only use the result for diagnostics; never for authorization.
func ExtractClaims(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// ValidateCustomClaims validates that all required custom claims are present
func ValidateCustomClaims(claims *Claims) error {
	if claims.Login == "" {
		return fmt.Errorf("%w: login", ErrMissingClaim)
	}
	if claims.UserID == "" {
		return fmt.Errorf("%w: uid", ErrMissingClaim)
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return fmt.Errorf("invalid uid format: %w", err)
	}
	if len(claims.Authorities) == 0 {
		return fmt.Errorf("%w: auth", ErrMissingClaim)
	}
	for _, authority := range claims.Authorities {
		if authority == "" {
			return fmt.Errorf("%w: empty authority", ErrInvalidClaimType)
		}
	}
	return nil
}

// ToUser converts validated claims into the request principal
func (c *Claims) ToUser() (*security.User, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid uid UUID: %w", err)
	}
	return &security.User{
		ID:          id,
		Login:       c.Login,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Activated:   true,
		Authorities: slices.Clone(c.Authorities),
	}, nil
}
