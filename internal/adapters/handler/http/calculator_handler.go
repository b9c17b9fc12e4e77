package http

import (
	"net/http"
	"strconv"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/comitanigiacomo/penny-challenge/internal/core/services"
	"github.com/gin-gonic/gin"
)

type CalculatorHandler struct {
	svc *services.CalculatorService
}

func NewCalculatorHandler(svc *services.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{svc: svc}
}

func (h *CalculatorHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/calculate", h.Calculate)
	router.GET("/progress", h.Progress)
	router.GET("/share", h.Share)
}

func (h *CalculatorHandler) Calculate(c *gin.Context) {
	params, err := domain.ParseShareParams(c.Request.URL.Query())
	if err != nil {
		if !respondInvalidParams(c, err) {
			respondInternal(c, err)
		}
		return
	}

	breakdown, _ := strconv.ParseBool(c.Query("breakdown"))

	calc, err := h.svc.Calculate(params, services.CalculateOptions{Breakdown: breakdown})
	if err != nil {
		if !respondInvalidParams(c, err) {
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, calc)
}

func (h *CalculatorHandler) Progress(c *gin.Context) {
	params, err := domain.ParseShareParams(c.Request.URL.Query())
	if err != nil {
		if !respondInvalidParams(c, err) {
			respondInternal(c, err)
		}
		return
	}

	var date *string
	if raw := c.Query("date"); raw != "" {
		if _, err := domain.ParseDate(raw); err != nil {
			c.JSON(http.StatusBadRequest, validationResponse(&domain.ValidationError{
				Fields: []domain.FieldError{{Field: "date", Reason: "invalid date (YYYY-MM-DD)"}},
			}))
			return
		}
		date = &raw
	}

	progress, err := h.svc.Progress(params, date)
	if err != nil {
		if !respondInvalidParams(c, err) {
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, progress)
}

type shareResponse struct {
	Query  string             `json:"query"`
	Path   string             `json:"path"`
	Params domain.ShareParams `json:"params"`
}

// Share returns the canonical link for the given state, keeping only the
// fields the selected mode uses.
func (h *CalculatorHandler) Share(c *gin.Context) {
	params, err := domain.ParseShareParams(c.Request.URL.Query())
	if err != nil {
		if !respondInvalidParams(c, err) {
			respondInternal(c, err)
		}
		return
	}

	canonical := params.ForMode()
	query := canonical.Encode()

	c.JSON(http.StatusOK, shareResponse{
		Query:  query,
		Path:   "/?" + query,
		Params: canonical,
	})
}
