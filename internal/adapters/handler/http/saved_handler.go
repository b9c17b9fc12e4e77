package http

import (
	"errors"
	"net/http"

	"github.com/comitanigiacomo/penny-challenge/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/comitanigiacomo/penny-challenge/internal/core/services"
	"github.com/gin-gonic/gin"
)

type SavedHandler struct {
	svc *services.SavedStateService
}

func NewSavedHandler(svc *services.SavedStateService) *SavedHandler {
	return &SavedHandler{svc: svc}
}

func (h *SavedHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/save", h.Save)
	router.GET("/saved", h.List)
	router.DELETE("/saved/:id", h.Delete)
}

type saveRequest struct {
	Name  string             `json:"name"`
	State domain.ShareParams `json:"state"`
}

type saveResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *SavedHandler) Save(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	saved, err := h.svc.Save(c.Request.Context(), services.SaveStateInput{
		UserID: userID,
		Name:   req.Name,
		State:  req.State,
	})
	if err != nil {
		if respondInvalidParams(c, err) {
			return
		}
		switch {
		case errors.Is(err, domain.ErrSavedStateNameTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSavedStateLimitReached):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "maximum saved states reached (10). delete one to save more"})
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, saveResponse{ID: saved.ID, Name: saved.Name})
}

func (h *SavedHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	states, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		respondInternal(c, err)
		return
	}

	if states == nil {
		states = []*domain.SavedState{}
	}
	c.JSON(http.StatusOK, gin.H{"states": states})
}

func (h *SavedHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSavedStateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "saved state not found"})
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
