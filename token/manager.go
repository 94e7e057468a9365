package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lejendary/oauth2-server/internal/security"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidIssuer is returned when the token issuer is invalid
	ErrInvalidIssuer = errors.New("invalid issuer")

	// ErrInvalidAudience is returned when the token audience is invalid
	ErrInvalidAudience = errors.New("invalid audience")

	// ErrMissingSecret is returned when no signing secret is configured
	ErrMissingSecret = errors.New("token signing secret not configured")
)

// Config holds configuration for Manager
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
	// Leeway tolerates clock skew when checking exp/iat.
	Leeway time.Duration
}

// Manager issues and validates HMAC-signed access tokens
type Manager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	leeway   time.Duration
	now      func() time.Time
}

// NewManager creates a new token manager
func NewManager(config Config) (*Manager, error) {
	if len(config.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if config.TTL == 0 {
		config.TTL = time.Hour
	}
	return &Manager{
		secret:   config.Secret,
		issuer:   config.Issuer,
		audience: config.Audience,
		ttl:      config.TTL,
		leeway:   config.Leeway,
		now:      time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new access token for user
func (m *Manager) Issue(user *security.User) (string, time.Time, error) {
	if user == nil || user.Login == "" {
		return "", time.Time{}, fmt.Errorf("%w: login", ErrMissingClaim)
	}

	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := NewClaims(user)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   user.Login,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a token and returns the authentication record it carries
func (m *Manager) ValidateToken(ctx context.Context, tokenString string) (*security.Authentication, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if err := ValidateCustomClaims(claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := claims.ToUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	auth := security.NewAuthentication(user)
	if claims.IssuedAt != nil {
		auth.AuthenticatedAt = claims.IssuedAt.Time
	}
	return auth, nil
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidIssuer, m.issuer, claims.Issuer)
	}
	if m.audience != "" && !containsAudience(claims.Audience, m.audience) {
		return nil, ErrInvalidAudience
	}

	return claims, nil
}

// containsAudience checks if the audience list contains the expected value
func containsAudience(audiences jwt.ClaimStrings, expected string) bool {
	for _, aud := range audiences {
		if aud == expected {
			return true
		}
	}
	return false
}
