package services

import (
	"context"
	"errors"
	"slices"

	"github.com/lejendary/oauth2-server/internal/observability"
	"github.com/lejendary/oauth2-server/internal/security"
	"github.com/lejendary/oauth2-server/models"
	"github.com/lejendary/oauth2-server/repositories"
	"github.com/lejendary/oauth2-server/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserRequest is the payload for registering an account
type CreateUserRequest struct {
	Login       string   `json:"login" validate:"required,min=1,max=50,login"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Email       string   `json:"email" validate:"required,email,max=254"`
	FirstName   string   `json:"first_name,omitempty" validate:"max=50"`
	LastName    string   `json:"last_name,omitempty" validate:"max=50"`
	Authorities []string `json:"authorities,omitempty" validate:"omitempty,dive,authority"`
}

const maxListLimit = 100

// UserService manages accounts
type UserService struct {
	users      repositories.UserRepository
	log        observability.Logger
	bcryptCost int
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		log:        observability.NewContextLogger(logger),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// CreateUser validates the request, hashes the password and stores the account.
// Authorities default to ROLE_USER. ROLE_ANONYMOUS cannot be assigned.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, ErrInvalidInput.WithCause(err).WithDetail("fields", utils.GetValidationFields(err))
	}

	authorities := slices.Clone(req.Authorities)
	if len(authorities) == 0 {
		authorities = []string{security.UserAuthority}
	}
	if slices.Contains(authorities, security.AnonymousAuthority) {
		return nil, ErrReservedAuthority.WithDetail("authority", security.AnonymousAuthority)
	}
	slices.Sort(authorities)
	authorities = slices.Compact(authorities)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(req.Login, req.Email, string(hash), authorities)
	user.FirstName = req.FirstName
	user.LastName = req.LastName

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateLogin) {
			return nil, ErrDuplicateLogin.WithDetail("login", user.Login)
		}
		return nil, ErrDatabaseError.WithCause(err)
	}

	// login on the entry is the caller; account is the new user
	s.log.Info(ctx, "user created",
		zap.String("account", user.Login),
		zap.Strings("authorities", user.Authorities))

	return user, nil
}

// GetUser looks up an account by login
func (s *UserService) GetUser(ctx context.Context, login string) (*models.User, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound.WithDetail("login", login)
		}
		return nil, ErrDatabaseError.WithCause(err)
	}
	return user, nil
}

// ListUsers returns a page of accounts. limit is capped at 100.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, ErrDatabaseError.WithCause(err)
	}
	return users, nil
}
