package handler

import (
	"regexp"

	"fables-server/internal/repository"
	"fables-server/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
	minPasswordLength = 8
	maxPasswordLength = 100
)

// Allowed characters for usernames.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	authService service.AuthService
	userRepo    repository.UserRepository
}

func NewUserHandler(authService service.AuthService, userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{
		authService: authService,
		userRepo:    userRepo,
	}
}

// RegisterRoutes mounts the account endpoints. rateLimiter is applied to the
// credential endpoints only; pass nil to disable.
func (h *UserHandler) RegisterRoutes(router *gin.Engine, rateLimiter gin.HandlerFunc) {
	limited := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if rateLimiter == nil {
			return handlers
		}
		return append([]gin.HandlerFunc{rateLimiter}, handlers...)
	}

	userGroup := router.Group("/api/user")
	{
		userGroup.POST("", limited(h.register)...)
		userGroup.POST("/login", limited(h.login)...)
		userGroup.POST("/logout", AuthMiddleware(h.authService), h.logout)
		userGroup.POST("/logout/all", AuthMiddleware(h.authService), h.logoutAll)
		userGroup.POST("/refresh", h.refresh)
		userGroup.GET("/me", AuthMiddleware(h.authService), h.getMe)
	}
}
