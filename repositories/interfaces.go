package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lejendary/oauth2-server/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateLogin is returned when a login is already taken
	ErrDuplicateLogin = errors.New("login already exists")
)

// UserRepository handles account data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByLogin retrieves a user by login (case-insensitive)
	GetByLogin(ctx context.Context, login string) (*models.User, error)

	// List retrieves users ordered by login
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// Repositories groups the repositories used by the service
type Repositories struct {
	Users UserRepository
}
