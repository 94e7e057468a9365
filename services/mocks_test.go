package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lejendary/oauth2-server/internal/security"
	"github.com/lejendary/oauth2-server/models"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	args := m.Called(ctx, login)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if users := args.Get(0); users != nil {
		return users.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(user *security.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// MockMetrics records calls to Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordLogin(ctx context.Context, outcome string) {
	m.Called(ctx, outcome)
}

func (m *MockMetrics) RecordAuthorization(ctx context.Context, granted bool) {
	m.Called(ctx, granted)
}

func (m *MockMetrics) RecordTokenValidation(ctx context.Context, valid bool) {
	m.Called(ctx, valid)
}
