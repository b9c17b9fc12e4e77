package http

import (
	"errors"
	"net/http"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/comitanigiacomo/penny-challenge/internal/core/services"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

type signInRequest struct {
	Email string `json:"email" form:"email" binding:"required"`
}

// SignInEmail always answers 202 for a well-formed address so the response
// does not reveal whether an account exists.
func (h *AuthHandler) SignInEmail(c *gin.Context) {
	var req signInRequest

	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.service.RequestLink(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email format"})
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "check your email for a sign-in link"})
}

func (h *AuthHandler) Verify(c *gin.Context) {
	session, err := h.service.Verify(c.Request.Context(), c.Query("token"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMagicLinkInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in link is invalid or expired"})
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signin-email", h.SignInEmail)
		authGroup.GET("/verify", h.Verify)
	}
}
