package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/penny-challenge/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
)

type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type RateLimit struct {
	Limit  int
	Window time.Duration
}

type RouterDependencies struct {
	CalculatorHandler *CalculatorHandler
	AuthHandler       *AuthHandler
	SavedHandler      *SavedHandler
	Tokens            middleware.TokenValidator
	RateLimits        domain.RateLimitStore
	GlobalLimit       RateLimit
	SavedLimit        RateLimit
	AllowedOrigin     string
	HealthChecks      []HealthCheck
	Logger            *zap.Logger
	StartTime         time.Time
}

func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func healthHandler(checks []HealthCheck, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		statusCode := http.StatusOK
		results := make(gin.H, len(checks))
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				results[hc.Name] = "unreachable"
				statusCode = http.StatusServiceUnavailable
				continue
			}
			results[hc.Name] = "connected"
		}

		status := "ok"
		if statusCode != http.StatusOK {
			status = "degraded"
		}

		c.JSON(statusCode, gin.H{
			"status": status,
			"checks": results,
			"uptime": time.Since(started).String(),
		})
	}
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware(deps.AllowedOrigin))

	if deps.RateLimits != nil && deps.GlobalLimit.Limit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.RateLimits, "global", deps.GlobalLimit.Limit, deps.GlobalLimit.Window, logger))
	}

	router.GET("/health", healthHandler(deps.HealthChecks, deps.StartTime))

	apiV1 := router.Group("/api/v1")

	deps.CalculatorHandler.RegisterRoutes(apiV1)
	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	if deps.RateLimits != nil && deps.SavedLimit.Limit > 0 {
		protected.Use(middleware.RateLimiterMiddleware(deps.RateLimits, "saved", deps.SavedLimit.Limit, deps.SavedLimit.Window, logger))
	}
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		deps.SavedHandler.RegisterRoutes(protected)
	}

	return router
}
