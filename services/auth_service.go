package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lejendary/oauth2-server/internal/observability"
	"github.com/lejendary/oauth2-server/internal/security"
	"github.com/lejendary/oauth2-server/repositories"
	"github.com/lejendary/oauth2-server/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for a principal
type TokenIssuer interface {
	Issue(user *security.User) (string, time.Time, error)
}

// LoginRequest is the body of the token endpoint
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=100"`
}

// TokenResponse is returned after a successful login
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService verifies credentials and issues access tokens
type AuthService struct {
	users   repositories.UserRepository
	issuer  TokenIssuer
	metrics observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService creates a new AuthService. metrics may be nil.
func NewAuthService(users repositories.UserRepository, issuer TokenIssuer, metrics observability.Metrics, logger *zap.Logger) *AuthService {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &AuthService{
		users:   users,
		issuer:  issuer,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// burnCompare runs a bcrypt comparison against a fixed hash so unknown logins
// take about as long as wrong passwords.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login checks the credentials and returns a signed access token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, ErrInvalidInput.WithCause(err).WithDetail("fields", utils.GetValidationFields(err))
	}

	user, err := s.users.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			burnCompare(req.Password)
			s.metrics.RecordLogin(ctx, observability.LoginRejected)
			s.logger.Info("login rejected", zap.String("login", req.Login), zap.String("reason", "unknown login"))
			return nil, ErrInvalidCredentials
		}
		s.metrics.RecordLogin(ctx, observability.LoginFailedError)
		return nil, ErrDatabaseError.WithCause(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(ctx, observability.LoginRejected)
		s.logger.Info("login rejected", zap.String("login", user.Login), zap.String("reason", "bad password"))
		return nil, ErrInvalidCredentials
	}

	if !user.Activated {
		s.metrics.RecordLogin(ctx, observability.LoginNotActive)
		s.logger.Info("login rejected", zap.String("login", user.Login), zap.String("reason", "not activated"))
		return nil, ErrUserNotActivated
	}

	token, expiresAt, err := s.issuer.Issue(user.Principal())
	if err != nil {
		s.metrics.RecordLogin(ctx, observability.LoginFailedError)
		return nil, WrapInternal("failed to issue token", err)
	}

	s.metrics.RecordLogin(ctx, observability.LoginSucceeded)
	s.logger.Info("login succeeded",
		zap.String("login", user.Login),
		zap.Strings("authorities", user.Authorities))

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(expiresAt.Sub(s.now()).Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}
