package handler

import (
	"strings"

	"fables-server/internal/models"
	"fables-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the Bearer access token and stores the caller's
// identity in the gin context under "user_id" and "access_uuid".
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			zap.L().Warn("Authorization header missing")
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			zap.L().Warn("Invalid Authorization header format", zap.String("header", authHeader))
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		tokenString := parts[1]
		claims, err := authService.VerifyAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			zap.L().Warn("Access token verification failed", zap.Error(err))
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, err)
			return
		}

		tokenVerificationsTotal.WithLabelValues("access", "success").Inc()
		c.Set("user_id", claims.UserID)
		c.Set("access_uuid", claims.ID)
		c.Next()
	}
}

// getUserIDFromContext extracts the authenticated user's ID set by
// AuthMiddleware. On failure it writes the error response and returns a
// non-nil error so the caller can simply return.
func getUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	userIDRaw, exists := c.Get("user_id")
	if !exists {
		zap.L().Error("User ID missing in context after auth middleware")
		handleServiceError(c, models.ErrUnauthorized)
		return uuid.Nil, models.ErrUnauthorized
	}
	userID, ok := userIDRaw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		zap.L().Error("Invalid user ID in context", zap.Any("user_id_raw", userIDRaw))
		handleServiceError(c, models.ErrUnauthorized)
		return uuid.Nil, models.ErrUnauthorized
	}
	return userID, nil
}
