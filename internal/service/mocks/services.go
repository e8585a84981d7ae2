package mocks

import (
	"context"

	"fables-server/internal/models"
	"fables-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock FableService
type FableService struct {
	mock.Mock
}

func (m *FableService) List(ctx context.Context, locale string, page, limit int) ([]models.Fable, int64, error) {
	args := m.Called(ctx, locale, page, limit)
	fables, _ := args.Get(0).([]models.Fable)
	total, _ := args.Get(1).(int64)
	return fables, total, args.Error(2)
}

func (m *FableService) Create(ctx context.Context, creatorID uuid.UUID, name string, locales []string) (*models.Fable, error) {
	args := m.Called(ctx, creatorID, name, locales)
	fable, _ := args.Get(0).(*models.Fable)
	return fable, args.Error(1)
}

func (m *FableService) Get(ctx context.Context, id uuid.UUID) (*models.Fable, error) {
	args := m.Called(ctx, id)
	fable, _ := args.Get(0).(*models.Fable)
	return fable, args.Error(1)
}

func (m *FableService) Update(ctx context.Context, id, callerID uuid.UUID, patch service.FablePatch) (*models.Fable, error) {
	args := m.Called(ctx, id, callerID, patch)
	fable, _ := args.Get(0).(*models.Fable)
	return fable, args.Error(1)
}

func (m *FableService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	args := m.Called(ctx, id, callerID)
	return args.Error(0)
}

func (m *FableService) ListMessages(ctx context.Context, id uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, id)
	messages, _ := args.Get(0).([]models.Message)
	return messages, args.Error(1)
}

func (m *FableService) AddMessage(ctx context.Context, id, callerID uuid.UUID, messageType models.MessageType, body, character string) (*models.Message, error) {
	args := m.Called(ctx, id, callerID, messageType, body, character)
	message, _ := args.Get(0).(*models.Message)
	return message, args.Error(1)
}

func (m *FableService) UpdateMessage(ctx context.Context, id, messageID, callerID uuid.UUID, body string) (*models.Message, error) {
	args := m.Called(ctx, id, messageID, callerID, body)
	message, _ := args.Get(0).(*models.Message)
	return message, args.Error(1)
}

func (m *FableService) DeleteMessage(ctx context.Context, id, messageID, callerID uuid.UUID) error {
	args := m.Called(ctx, id, messageID, callerID)
	return args.Error(0)
}

func (m *FableService) Like(ctx context.Context, id, callerID uuid.UUID) (*service.ReactionResult, error) {
	args := m.Called(ctx, id, callerID)
	result, _ := args.Get(0).(*service.ReactionResult)
	return result, args.Error(1)
}

func (m *FableService) Dislike(ctx context.Context, id, callerID uuid.UUID) (*service.ReactionResult, error) {
	args := m.Called(ctx, id, callerID)
	result, _ := args.Get(0).(*service.ReactionResult)
	return result, args.Error(1)
}

func (m *FableService) CreateCharacter(ctx context.Context, id, callerID uuid.UUID, name string) (*models.Character, error) {
	args := m.Called(ctx, id, callerID, name)
	character, _ := args.Get(0).(*models.Character)
	return character, args.Error(1)
}

func (m *FableService) UpdateCharacter(ctx context.Context, id, characterID, callerID uuid.UUID, name string) (*models.Character, error) {
	args := m.Called(ctx, id, characterID, callerID, name)
	character, _ := args.Get(0).(*models.Character)
	return character, args.Error(1)
}

func (m *FableService) DeleteCharacter(ctx context.Context, id, characterID, callerID uuid.UUID) error {
	args := m.Called(ctx, id, characterID, callerID)
	return args.Error(0)
}

// Mock AuthService
type AuthService struct {
	mock.Mock
}

func (m *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *AuthService) Login(ctx context.Context, username, password string) (*models.User, *models.TokenDetails, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	td, _ := args.Get(1).(*models.TokenDetails)
	return user, td, args.Error(2)
}

func (m *AuthService) Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error {
	args := m.Called(ctx, userID, accessUUID, refreshUUID)
	return args.Error(0)
}

func (m *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error) {
	args := m.Called(ctx, refreshToken)
	td, _ := args.Get(0).(*models.TokenDetails)
	return td, args.Error(1)
}

func (m *AuthService) VerifyAccessToken(ctx context.Context, token string) (*models.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*models.Claims)
	return claims, args.Error(1)
}
