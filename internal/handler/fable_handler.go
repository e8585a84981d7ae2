package handler

import (
	"fables-server/internal/service"

	"github.com/gin-gonic/gin"
)

type createFableRequest struct {
	Name    string   `json:"name" binding:"required"`
	Locales []string `json:"locales"`
}

type updateFableRequest struct {
	Name    *string  `json:"name"`
	Locales []string `json:"locales"`
}

type addMessageRequest struct {
	MessageType string `json:"messageType" binding:"required"`
	Body        string `json:"body" binding:"required"`
	Character   string `json:"character"`
}

type updateMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

type characterRequest struct {
	Name string `json:"name" binding:"required"`
}

// FableHandler handles HTTP requests for fable collections.
type FableHandler struct {
	fableService service.FableService
	authService  service.AuthService
}

func NewFableHandler(fableService service.FableService, authService service.AuthService) *FableHandler {
	return &FableHandler{
		fableService: fableService,
		authService:  authService,
	}
}

// RegisterRoutes mounts the fable endpoints.
//
// Gin's router does not allow a literal segment (like "messages") next to a
// wildcard at the same tree depth, so every variable route under /api/fable
// is registered with positional :seg params and dispatched on the first
// segment inside the handlers. The path shapes are:
//
//	GET    /api/fable/:collectionId
//	GET    /api/fable/messages/:collectionId
//	GET    /api/fable/:locale/:page/:limit
//	POST   /api/fable/{messages|like|dislike|characters}/:collectionId
//	PUT    /api/fable/:collectionId
//	PUT    /api/fable/{messages|characters}/:collectionId/:itemId
//	DELETE /api/fable/:collectionId
//	DELETE /api/fable/{messages|characters}/:collectionId/:itemId
func (h *FableHandler) RegisterRoutes(router *gin.Engine) {
	auth := AuthMiddleware(h.authService)

	fableGroup := router.Group("/api/fable")
	{
		fableGroup.POST("", auth, h.create)
		fableGroup.GET("/:seg1", h.get)
		fableGroup.GET("/:seg1/:seg2", h.getTwoSegments)
		fableGroup.GET("/:seg1/:seg2/:seg3", h.list)
		fableGroup.PUT("/:seg1", auth, h.update)
		fableGroup.DELETE("/:seg1", auth, h.delete)
		fableGroup.POST("/:seg1/:seg2", auth, h.postTwoSegments)
		fableGroup.PUT("/:seg1/:seg2/:seg3", auth, h.putThreeSegments)
		fableGroup.DELETE("/:seg1/:seg2/:seg3", auth, h.deleteThreeSegments)
	}
}
