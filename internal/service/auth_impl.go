package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"fables-server/internal/config"
	"fables-server/internal/models"
	"fables-server/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

type authServiceImpl struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	cfg       *config.Config
	logger    *zap.Logger
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		logger:    logger.Named("AuthService"),
	}
}

// Register creates a new user.
func (s *authServiceImpl) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	logFields := []zap.Field{zap.String("username", username)}
	s.logger.Info("Registering new user", logFields...)

	if username == "" || password == "" {
		s.logger.Warn("Registration attempt with empty username or password", logFields...)
		return nil, fmt.Errorf("username and password are required: %w", models.ErrInvalidInput)
	}

	hashedPassword, err := hashPassword(password, s.cfg.PasswordPepper)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, models.ErrUserAlreadyExists) {
			s.logger.Error("Failed to create user via repository", append(logFields, zap.Error(err))...)
		}
		return nil, err
	}

	s.logger.Info("User registered successfully", zap.String("userID", user.ID.String()), zap.String("username", user.Username))
	return user, nil
}

// Login authenticates a user and returns the user together with a fresh
// token pair.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*models.User, *models.TokenDetails, error) {
	s.logger.Info("Login attempt", zap.String("username", username))

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("username", username))
			return nil, nil, models.ErrInvalidCredentials
		}
		s.logger.Error("Login failed: error getting user from repository", zap.Error(err), zap.String("username", username))
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPasswordHash(password, user.PasswordHash, s.cfg.PasswordPepper) {
		s.logger.Warn("Login failed: invalid password", zap.String("username", username), zap.String("userID", user.ID.String()))
		return nil, nil, models.ErrInvalidCredentials
	}

	td, err := s.createTokens(user)
	if err != nil {
		s.logger.Error("Failed to create tokens during login", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, nil, fmt.Errorf("failed to create tokens: %w", err)
	}

	if err := s.tokenRepo.SetToken(ctx, user.ID, td); err != nil {
		s.logger.Error("Failed to save token details during login", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, nil, fmt.Errorf("failed to save token details: %w", err)
	}

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return user, td, nil
}

// Logout removes the access and refresh tokens from the store. The
// operation is idempotent: already-revoked tokens are not an error.
func (s *authServiceImpl) Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error {
	log := s.logger.With(zap.String("userID", userID.String()), zap.String("accessUUID", accessUUID), zap.String("refreshUUID", refreshUUID))
	log.Debug("Attempting to logout user by deleting tokens")

	deletedCount, err := s.tokenRepo.DeleteTokens(ctx, userID, accessUUID, refreshUUID)
	if err != nil {
		// Tokens may already be gone; log and treat logout as done.
		log.Error("Failed to delete tokens during logout", zap.Error(err))
	}

	if deletedCount > 0 {
		log.Info("Tokens deleted successfully during logout", zap.Int64("deletedCount", deletedCount))
	} else {
		log.Info("No tokens found to delete during logout (already expired or logged out)")
	}
	return nil
}

// LogoutAll revokes every session of the user by clearing the per-user
// token set.
func (s *authServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	log := s.logger.With(zap.String("userID", userID.String()))
	log.Info("Logging out user from all sessions")

	deletedCount, err := s.tokenRepo.DeleteTokensByUserID(ctx, userID)
	if err != nil {
		log.Error("Failed to delete all tokens for user", zap.Error(err))
		return fmt.Errorf("failed to delete all tokens for user: %w", err)
	}

	log.Info("All sessions revoked", zap.Int64("deletedCount", deletedCount))
	return nil
}

// Refresh issues new access and refresh tokens based on a valid refresh
// token, rotating the old pair out of the store.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshTokenString string) (*models.TokenDetails, error) {
	s.logger.Info("Token refresh attempt")

	claims, err := s.parseToken(refreshTokenString)
	if err != nil {
		return nil, err
	}

	refreshUUID := claims.ID
	log := s.logger.With(zap.String("userID", claims.UserID.String()), zap.String("refreshUUID", refreshUUID))
	log.Debug("Refresh token parsed successfully")

	userID, err := s.tokenRepo.GetUserIDByRefreshUUID(ctx, refreshUUID)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			log.Warn("Refresh attempt with invalid/revoked token in store")
			return nil, models.ErrTokenNotFound
		}
		log.Error("Error checking refresh token existence via repository", zap.Error(err))
		return nil, fmt.Errorf("error checking refresh token existence: %w", err)
	}

	if userID != claims.UserID {
		log.Error("Refresh token user ID mismatch", zap.String("repoUserID", userID.String()))
		return nil, models.ErrTokenInvalid
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Warn("User from valid refresh token not found in DB")
			return nil, models.ErrTokenInvalid
		}
		log.Error("Failed to get user during token refresh", zap.Error(err))
		return nil, fmt.Errorf("failed to get user for refresh: %w", err)
	}

	newTd, err := s.createTokens(user)
	if err != nil {
		log.Error("Failed to create new tokens during refresh", zap.Error(err))
		return nil, fmt.Errorf("failed to create new tokens during refresh: %w", err)
	}

	if _, delErr := s.tokenRepo.DeleteTokens(ctx, user.ID, "", refreshUUID); delErr != nil {
		log.Error("Non-critical: failed to delete old refresh token during refresh", zap.Error(delErr))
	}

	if err := s.tokenRepo.SetToken(ctx, user.ID, newTd); err != nil {
		log.Error("Failed to save new token details during refresh", zap.Error(err))
		return nil, fmt.Errorf("failed to save new token details: %w", err)
	}

	log.Info("Token refreshed successfully")
	return newTd, nil
}

// VerifyAccessToken parses and validates an access token string, including
// its presence in the revocation store.
func (s *authServiceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	s.logger.Debug("Verifying access token")

	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	accessUUID := claims.ID
	if _, err := s.tokenRepo.GetUserIDByAccessUUID(ctx, accessUUID); err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Debug("Access token not found in store (revoked/logged out)", zap.String("accessUUID", accessUUID))
			return nil, models.ErrTokenInvalid
		}
		s.logger.Error("Error checking access token existence via repository", zap.Error(err), zap.String("accessUUID", accessUUID))
		return nil, fmt.Errorf("error checking access token existence: %w", err)
	}

	s.logger.Debug("Access token verified successfully", zap.String("userID", claims.UserID.String()), zap.String("accessUUID", accessUUID))
	return claims, nil
}

// parseToken validates the signature and standard claims of a token string.
func (s *authServiceImpl) parseToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug("Token verification failed: expired")
			return nil, models.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			s.logger.Warn("Token verification failed: malformed")
			return nil, models.ErrTokenMalformed
		}
		s.logger.Error("Failed to parse token", zap.Error(err))
		return nil, models.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		s.logger.Warn("Token verification failed (invalid claims type or signature)")
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

// createTokens generates a new access and refresh token pair for a user.
func (s *authServiceImpl) createTokens(user *models.User) (*models.TokenDetails, error) {
	s.logger.Debug("Creating new token pair", zap.String("userID", user.ID.String()))

	td := &models.TokenDetails{}
	td.AtExpires = time.Now().Add(s.cfg.AccessTokenTTL).Unix()
	td.AccessUUID = uuid.New().String()

	td.RtExpires = time.Now().Add(s.cfg.RefreshTokenTTL).Unix()
	td.RefreshUUID = uuid.New().String()

	var err error
	td.AccessToken, err = s.signToken(user, td.AccessUUID, td.AtExpires)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	td.RefreshToken, err = s.signToken(user, td.RefreshUUID, td.RtExpires)
	if err != nil {
		s.logger.Error("Failed to sign refresh token", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return td, nil
}

func (s *authServiceImpl) signToken(user *models.User, tokenUUID string, expiresAt int64) (string, error) {
	claims := &models.Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenUUID,
			ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt, 0)),
			Subject:   user.ID.String(),
			Issuer:    "fables-server",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// --- Helper Functions ---

// applyPepper applies HMAC-SHA256 using the pepper as the key.
func applyPepper(password, pepper string) []byte {
	h := hmac.New(sha256.New, []byte(pepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

// hashPassword generates a bcrypt hash of the password after applying the pepper.
func hashPassword(password, pepper string) (string, error) {
	pepperedPassword := applyPepper(password, pepper)
	bytes, err := bcrypt.GenerateFromPassword(pepperedPassword, bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password (after applying pepper) with a stored hash.
func checkPasswordHash(password, hash, pepper string) bool {
	pepperedPassword := applyPepper(password, pepper)
	return bcrypt.CompareHashAndPassword([]byte(hash), pepperedPassword) == nil
}
