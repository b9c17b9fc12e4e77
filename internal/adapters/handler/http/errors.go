package http

import (
	"errors"
	"net/http"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/gin-gonic/gin"
)

func validationResponse(verr *domain.ValidationError) gin.H {
	return gin.H{"error": "invalid request", "details": verr.Details()}
}

// respondInvalidParams writes a 400 for share params failures and reports
// whether it did.
func respondInvalidParams(c *gin.Context, err error) bool {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, validationResponse(verr))
		return true
	}
	if errors.Is(err, domain.ErrInvalidShareParams) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return true
	}
	return false
}

func respondInternal(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
