package handler

import (
	"net/http"
	"strconv"

	"fables-server/internal/models"
	"fables-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseIDParam(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "Invalid collection id: "+raw)
		return uuid.Nil, false
	}
	return id, true
}

func unknownRoute(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
}

func (h *FableHandler) create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return
	}

	var req createFableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	fable, err := h.fableService.Create(c.Request.Context(), userID, req.Name, req.Locales)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	fablesCreatedTotal.Inc()

	c.JSON(http.StatusCreated, fable)
}

func (h *FableHandler) get(c *gin.Context) {
	id, ok := parseIDParam(c, c.Param("seg1"))
	if !ok {
		return
	}

	fable, err := h.fableService.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, fable)
}

// getTwoSegments serves GET /api/fable/messages/:collectionId.
func (h *FableHandler) getTwoSegments(c *gin.Context) {
	if c.Param("seg1") != "messages" {
		unknownRoute(c)
		return
	}
	id, ok := parseIDParam(c, c.Param("seg2"))
	if !ok {
		return
	}

	messages, err := h.fableService.ListMessages(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// list serves GET /api/fable/:locale/:page/:limit.
func (h *FableHandler) list(c *gin.Context) {
	locale := c.Param("seg1")

	page, err := strconv.Atoi(c.Param("seg2"))
	if err != nil {
		badRequest(c, "Invalid page: "+c.Param("seg2"))
		return
	}
	limit, err := strconv.Atoi(c.Param("seg3"))
	if err != nil {
		badRequest(c, "Invalid limit: "+c.Param("seg3"))
		return
	}

	fables, total, err := h.fableService.List(c.Request.Context(), locale, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fables": fables,
		"total":  total,
	})
}

func (h *FableHandler) update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return
	}
	id, ok := parseIDParam(c, c.Param("seg1"))
	if !ok {
		return
	}

	var req updateFableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	fable, err := h.fableService.Update(c.Request.Context(), id, userID, service.FablePatch{
		Name:    req.Name,
		Locales: req.Locales,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, fable)
}

func (h *FableHandler) delete(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return
	}
	id, ok := parseIDParam(c, c.Param("seg1"))
	if !ok {
		return
	}

	if err := h.fableService.Delete(c.Request.Context(), id, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fable deleted"})
}

// postTwoSegments serves POST /api/fable/{messages|like|dislike|characters}/:collectionId.
func (h *FableHandler) postTwoSegments(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return
	}

	switch c.Param("seg1") {
	case "messages":
		id, ok := parseIDParam(c, c.Param("seg2"))
		if !ok {
			return
		}
		h.addMessage(c, id, userID)
	case "like":
		id, ok := parseIDParam(c, c.Param("seg2"))
		if !ok {
			return
		}
		h.react(c, id, userID, "like")
	case "dislike":
		id, ok := parseIDParam(c, c.Param("seg2"))
		if !ok {
			return
		}
		h.react(c, id, userID, "dislike")
	case "characters":
		id, ok := parseIDParam(c, c.Param("seg2"))
		if !ok {
			return
		}
		h.createCharacter(c, id, userID)
	default:
		unknownRoute(c)
	}
}

func (h *FableHandler) addMessage(c *gin.Context, id, userID uuid.UUID) {
	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	message, err := h.fableService.AddMessage(c.Request.Context(), id, userID, models.MessageType(req.MessageType), req.Body, req.Character)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *FableHandler) react(c *gin.Context, id, userID uuid.UUID, kind string) {
	var result *service.ReactionResult
	var err error
	if kind == "like" {
		result, err = h.fableService.Like(c.Request.Context(), id, userID)
	} else {
		result, err = h.fableService.Dislike(c.Request.Context(), id, userID)
	}
	if err != nil {
		fableReactionsTotal.WithLabelValues(kind, "error").Inc()
		handleServiceError(c, err)
		return
	}

	if result.Already {
		fableReactionsTotal.WithLabelValues(kind, "already").Inc()
		c.JSON(http.StatusOK, gin.H{
			"message":       "already " + kind + "d",
			"likesCount":    result.LikesCount,
			"dislikesCount": result.DislikesCount,
		})
		return
	}

	fableReactionsTotal.WithLabelValues(kind, "applied").Inc()
	c.JSON(http.StatusOK, result)
}

func (h *FableHandler) createCharacter(c *gin.Context, id, userID uuid.UUID) {
	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	character, err := h.fableService.CreateCharacter(c.Request.Context(), id, userID, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, character)
}

// putThreeSegments serves PUT /api/fable/{messages|characters}/:collectionId/:itemId.
func (h *FableHandler) putThreeSegments(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return
	}
	id, ok := parseIDParam(c, c.Param("seg2"))
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("seg3"))
	if err != nil {
		badRequest(c, "Invalid item id: "+c.Param("seg3"))
		return
	}

	switch c.Param("seg1") {
	case "messages":
		var req updateMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body: "+err.Error())
			return
		}
		message, err := h.fableService.UpdateMessage(c.Request.Context(), id, itemID, userID, req.Body)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, message)
	case "characters":
		var req characterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body: "+err.Error())
			return
		}
		character, err := h.fableService.UpdateCharacter(c.Request.Context(), id, itemID, userID, req.Name)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, character)
	default:
		unknownRoute(c)
	}
}

// deleteThreeSegments serves DELETE /api/fable/{messages|characters}/:collectionId/:itemId.
func (h *FableHandler) deleteThreeSegments(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return
	}
	id, ok := parseIDParam(c, c.Param("seg2"))
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("seg3"))
	if err != nil {
		badRequest(c, "Invalid item id: "+c.Param("seg3"))
		return
	}

	switch c.Param("seg1") {
	case "messages":
		if err := h.fableService.DeleteMessage(c.Request.Context(), id, itemID, userID); err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
	case "characters":
		if err := h.fableService.DeleteCharacter(c.Request.Context(), id, itemID, userID); err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Character deleted"})
	default:
		unknownRoute(c)
	}
}
