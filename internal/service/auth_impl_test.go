package service

import (
	"context"
	"testing"
	"time"

	"fables-server/internal/config"
	"fables-server/internal/models"
	repomocks "fables-server/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService(userRepo *repomocks.UserRepository, tokenRepo *repomocks.TokenRepository) AuthService {
	cfg := &config.Config{
		JWTSecret:       "unit-test-secret",
		PasswordPepper:  "unit-test-pepper",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	return NewAuthService(userRepo, tokenRepo, cfg, zap.NewNop())
}

func TestHashAndCheckPassword(t *testing.T) {
	password := "mysecretpassword1"
	pepper := "test-pepper"

	hashed, err := hashPassword(password, pepper)
	require.NoError(t, err)
	require.NotEmpty(t, hashed)
	assert.NotEqual(t, password, hashed)

	assert.True(t, checkPasswordHash(password, hashed, pepper))
	assert.False(t, checkPasswordHash("wrongpassword1", hashed, pepper))
	assert.False(t, checkPasswordHash(password, hashed, "another-pepper"))
	assert.False(t, checkPasswordHash(password, "not-a-bcrypt-hash", pepper))
}

func TestRegisterRejectsEmptyInput(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	_, err := svc.Register(context.Background(), "   ", "password1")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Register(context.Background(), "alice", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	userRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(models.ErrUserAlreadyExists)

	_, err := svc.Register(context.Background(), "alice", "password1")
	assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	var created *models.User
	userRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.User)
			created.ID = uuid.New()
		}).
		Return(nil)

	user, err := svc.Register(context.Background(), "alice", "password1")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "password1", created.PasswordHash)
	assert.True(t, checkPasswordHash("password1", created.PasswordHash, "unit-test-pepper"))
}

func TestLoginUnknownUser(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, models.ErrUserNotFound)

	_, _, err := svc.Login(context.Background(), "ghost", "password1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	hashed, err := hashPassword("password1", "unit-test-pepper")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: hashed}

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)

	_, _, err = svc.Login(context.Background(), "alice", "password2")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	tokenRepo.AssertNotCalled(t, "SetToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginIssuesAndStoresTokenPair(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	hashed, err := hashPassword("password1", "unit-test-pepper")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: hashed}

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)
	tokenRepo.On("SetToken", mock.Anything, user.ID, mock.AnythingOfType("*models.TokenDetails")).Return(nil)

	gotUser, td, err := svc.Login(context.Background(), "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser.ID)
	require.NotNil(t, td)
	assert.NotEmpty(t, td.AccessToken)
	assert.NotEmpty(t, td.RefreshToken)
	assert.NotEqual(t, td.AccessUUID, td.RefreshUUID)
	tokenRepo.AssertExpectations(t)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userID := uuid.New()
	tokenRepo.On("DeleteTokensByUserID", mock.Anything, userID).Return(int64(4), nil)

	require.NoError(t, svc.LogoutAll(context.Background(), userID))
	tokenRepo.AssertExpectations(t)

	tokenRepo.On("DeleteTokensByUserID", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)
	assert.Error(t, svc.LogoutAll(context.Background(), uuid.New()))
}

func TestRefreshRoundTrip(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	hashed, err := hashPassword("password1", "unit-test-pepper")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: hashed}

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)
	userRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
	tokenRepo.On("SetToken", mock.Anything, user.ID, mock.AnythingOfType("*models.TokenDetails")).Return(nil)
	tokenRepo.On("GetUserIDByRefreshUUID", mock.Anything, mock.AnythingOfType("string")).Return(user.ID, nil)
	tokenRepo.On("DeleteTokens", mock.Anything, user.ID, "", mock.AnythingOfType("string")).Return(int64(1), nil)

	_, td, err := svc.Login(context.Background(), "alice", "password1")
	require.NoError(t, err)

	newTd, err := svc.Refresh(context.Background(), td.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, td.RefreshUUID, newTd.RefreshUUID)
	assert.NotEmpty(t, newTd.AccessToken)
}

func TestRefreshRejectsMalformedToken(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, models.ErrTokenMalformed)
}

func TestVerifyAccessTokenRevoked(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	hashed, err := hashPassword("password1", "unit-test-pepper")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: hashed}

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)
	tokenRepo.On("SetToken", mock.Anything, user.ID, mock.AnythingOfType("*models.TokenDetails")).Return(nil)
	tokenRepo.On("GetUserIDByAccessUUID", mock.Anything, mock.AnythingOfType("string")).Return(uuid.Nil, models.ErrTokenNotFound)

	_, td, err := svc.Login(context.Background(), "alice", "password1")
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(context.Background(), td.AccessToken)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestVerifyAccessTokenValid(t *testing.T) {
	userRepo := new(repomocks.UserRepository)
	tokenRepo := new(repomocks.TokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	hashed, err := hashPassword("password1", "unit-test-pepper")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: hashed}

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)
	tokenRepo.On("SetToken", mock.Anything, user.ID, mock.AnythingOfType("*models.TokenDetails")).Return(nil)
	tokenRepo.On("GetUserIDByAccessUUID", mock.Anything, mock.AnythingOfType("string")).Return(user.ID, nil)

	_, td, err := svc.Login(context.Background(), "alice", "password1")
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(context.Background(), td.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, td.AccessUUID, claims.ID)
}
