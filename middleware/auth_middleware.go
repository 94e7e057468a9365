package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lejendary/oauth2-server/internal/security"
	tokenpkg "github.com/lejendary/oauth2-server/token"
	"github.com/lejendary/oauth2-server/utils"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating access tokens
type TokenValidator interface {
	// ValidateToken validates a token and returns the authentication record it carries
	ValidateToken(ctx context.Context, token string) (*security.Authentication, error)
}

// DecisionRecorder receives the outcome of token validations and authority checks.
type DecisionRecorder interface {
	RecordTokenValidation(ctx context.Context, valid bool)
	RecordAuthorization(ctx context.Context, granted bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordTokenValidation(context.Context, bool) {}
func (nopRecorder) RecordAuthorization(context.Context, bool)   {}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
	anonymous bool
	recorder  DecisionRecorder
}

// Option configures an AuthMiddleware
type Option func(*AuthMiddleware)

// WithAnonymous controls whether Authenticate admits callers without a token
// as the anonymous principal. Enabled by default.
func WithAnonymous(enabled bool) Option {
	return func(m *AuthMiddleware) {
		m.anonymous = enabled
	}
}

// WithRecorder sets the recorder notified of validation and authorization outcomes.
func WithRecorder(rec DecisionRecorder) Option {
	return func(m *AuthMiddleware) {
		if rec != nil {
			m.recorder = rec
		}
	}
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger, opts ...Option) *AuthMiddleware {
	m := &AuthMiddleware{
		validator: validator,
		logger:    logger,
		anonymous: true,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AuthTokenCookieName is the cookie name for access tokens (Authorization header takes precedence)
// SessionCookieName is set by the token endpoint after a successful login
const (
	AuthTokenCookieName = "auth_token"
	SessionCookieName   = "session"
)

// RequireAuth is a middleware that requires a valid access token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractToken(r)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		auth, ok := m.validate(w, r, token)
		if !ok {
			return
		}

		next.ServeHTTP(w, r.WithContext(security.WithAuthentication(ctx, auth)))
	})
}

// Authenticate validates a token when one is sent. Requests without a token
// continue as the anonymous principal, or get 401 when anonymous access is disabled.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := extractToken(r)
		if token == "" {
			if !m.anonymous {
				m.logger.Warn("anonymous access disabled",
					zap.String("request_id", GetRequestIDFromContext(ctx)))
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(security.WithAuthentication(ctx, security.AnonymousAuthentication())))
			return
		}

		auth, ok := m.validate(w, r, token)
		if !ok {
			return
		}

		next.ServeHTTP(w, r.WithContext(security.WithAuthentication(ctx, auth)))
	})
}

// RequireAuthenticated rejects anonymous callers. It must run after
// RequireAuth or Authenticate.
func (m *AuthMiddleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		authenticated, err := security.IsAuthenticated(ctx)
		if errors.Is(err, security.ErrNoActiveSession) {
			m.logger.Error("authentication record not found in context",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteInternalServerError(w, "Security context not configured")
			return
		}
		if !authenticated {
			m.logger.Debug("anonymous caller rejected",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuthority is a middleware that requires a specific authority
func (m *AuthMiddleware) RequireAuthority(authority string) func(http.Handler) http.Handler {
	return m.requireAuthorities(authority)
}

// RequireAnyAuthority is a middleware that requires at least one of the given authorities
func (m *AuthMiddleware) RequireAnyAuthority(authorities ...string) func(http.Handler) http.Handler {
	return m.requireAuthorities(authorities...)
}

func (m *AuthMiddleware) requireAuthorities(authorities ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			auth, ok := security.AuthenticationFromContext(ctx)
			if !ok {
				m.logger.Error("authentication record not found in context",
					zap.String("request_id", requestID))
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			granted := auth.HasAnyAuthority(authorities...)
			m.recorder.RecordAuthorization(ctx, granted)
			if !granted {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.String("login", auth.CurrentPrincipal().Name()),
					zap.Strings("required_authority", authorities),
					zap.Strings("granted", auth.GrantedAuthorities()))
				_ = utils.WriteForbidden(w, "Insufficient permissions")
				return
			}

			m.logger.Debug("authority check passed",
				zap.String("request_id", requestID),
				zap.Strings("required_authority", authorities))

			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) validate(w http.ResponseWriter, r *http.Request, token string) (*security.Authentication, bool) {
	ctx := r.Context()
	requestID := GetRequestIDFromContext(ctx)

	auth, err := m.validator.ValidateToken(ctx, token)
	m.recorder.RecordTokenValidation(ctx, err == nil)
	if err != nil {
		fields := []zap.Field{zap.String("request_id", requestID), zap.Error(err)}
		// unverified, for the log entry only
		if claims, cerr := tokenpkg.ExtractClaims(token); cerr == nil && claims.Login != "" {
			fields = append(fields, zap.String("claimed_login", claims.Login))
		}
		m.logger.Warn("token validation failed", fields...)
		_ = utils.WriteUnauthorized(w, "Invalid or expired token")
		return nil, false
	}

	m.logger.Debug("authentication successful",
		zap.String("request_id", requestID),
		zap.String("login", auth.CurrentPrincipal().Name()))
	return auth, true
}

// extractToken extracts the token from the Authorization header ("Bearer TOKEN")
// or the auth_token / session cookies. The header takes precedence.
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	for _, name := range []string{AuthTokenCookieName, SessionCookieName} {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
