package service

import (
	"context"

	"fables-server/internal/models"

	"github.com/google/uuid"
)

// AuthService handles registration, authentication and token lifecycle.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, *models.TokenDetails, error)
	Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error)
	VerifyAccessToken(ctx context.Context, token string) (*models.Claims, error)
}
