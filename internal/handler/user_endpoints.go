package handler

import (
	"errors"
	"fmt"
	"net/http"
	"unicode"

	"fables-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func (h *UserHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Username) < minUsernameLength || len(req.Username) > maxUsernameLength {
		badRequest(c, fmt.Sprintf("Username length must be between %d and %d characters", minUsernameLength, maxUsernameLength))
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		badRequest(c, "Username can only contain letters, numbers, underscores, and hyphens")
		return
	}

	if len(req.Password) < minPasswordLength || len(req.Password) > maxPasswordLength {
		badRequest(c, fmt.Sprintf("Password length must be between %d and %d characters", minPasswordLength, maxPasswordLength))
		return
	}
	var (
		hasLetter bool
		hasDigit  bool
	)
	for _, char := range req.Password {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
		if hasLetter && hasDigit {
			break
		}
	}
	if !hasLetter || !hasDigit {
		badRequest(c, "Password must contain at least one letter and one digit")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, tokens, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	loginsTotal.Inc()

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"token":         tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

func (h *UserHandler) logout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return
	}

	accessUUIDRaw, exists := c.Get("access_uuid")
	if !exists {
		zap.L().Error("Access UUID missing in context during logout")
		handleServiceError(c, errors.New("internal server error: context missing access uuid"))
		return
	}
	accessUUID, ok := accessUUIDRaw.(string)
	if !ok || accessUUID == "" {
		zap.L().Error("Invalid or empty access UUID in context during logout", zap.Any("uuid_raw", accessUUIDRaw))
		handleServiceError(c, errors.New("internal server error: invalid access uuid in context"))
		return
	}

	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing or invalid refresh_token in request body: "+err.Error())
		return
	}

	// The refresh token's signature was checked when it was issued; here we
	// only need its jti to revoke the stored pair.
	token, _, err := new(jwt.Parser).ParseUnverified(req.RefreshToken, &models.Claims{})
	if err != nil {
		handleServiceError(c, models.ErrTokenMalformed)
		return
	}
	claims, ok := token.Claims.(*models.Claims)
	if !ok || claims.ID == "" {
		zap.L().Error("Refresh token missing jti claim during logout")
		handleServiceError(c, models.ErrTokenMalformed)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID, accessUUID, claims.ID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *UserHandler) logoutAll(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out from all sessions"})
}

func (h *UserHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) || errors.Is(err, models.ErrTokenExpired) ||
			errors.Is(err, models.ErrTokenInvalid) || errors.Is(err, models.ErrTokenMalformed) {
			tokenVerificationsTotal.WithLabelValues("refresh", "failure").Inc()
		}
		handleServiceError(c, err)
		return
	}

	refreshesTotal.Inc()
	tokenVerificationsTotal.WithLabelValues("refresh", "success").Inc()

	c.JSON(http.StatusOK, tokens)
}

func (h *UserHandler) getMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return
	}

	user, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			zap.L().Warn("User from valid token not found during /me request", zap.String("userID", userID.String()))
		} else {
			zap.L().Error("Error fetching user for /me from repository", zap.String("userID", userID.String()), zap.Error(err))
		}
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
