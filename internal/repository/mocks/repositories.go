package mocks

import (
	"context"

	"fables-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock FableRepository
type FableRepository struct {
	mock.Mock
}

func (m *FableRepository) Create(ctx context.Context, fable *models.Fable) error {
	args := m.Called(ctx, fable)
	return args.Error(0)
}

func (m *FableRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Fable, error) {
	args := m.Called(ctx, id)
	fable, _ := args.Get(0).(*models.Fable)
	return fable, args.Error(1)
}

func (m *FableRepository) Save(ctx context.Context, fable *models.Fable) error {
	args := m.Called(ctx, fable)
	return args.Error(0)
}

func (m *FableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *FableRepository) ListByLocale(ctx context.Context, locale string, offset, limit int) ([]models.Fable, int64, error) {
	args := m.Called(ctx, locale, offset, limit)
	fables, _ := args.Get(0).([]models.Fable)
	total, _ := args.Get(1).(int64)
	return fables, total, args.Error(2)
}

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

// Mock TokenRepository
type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error {
	args := m.Called(ctx, userID, td)
	return args.Error(0)
}

func (m *TokenRepository) DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error) {
	args := m.Called(ctx, userID, accessUUID, refreshUUID)
	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}

func (m *TokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error) {
	args := m.Called(ctx, accessUUID)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *TokenRepository) GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error) {
	args := m.Called(ctx, refreshUUID)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *TokenRepository) DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}
