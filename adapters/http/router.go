package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sencity/user-service/internal/application/service"
	"github.com/sencity/user-service/pkg/logger"
)

type RouterDeps struct {
	SignUpHandler     *SignUpHandler
	EmailCheckHandler *EmailCheckHandler
	// RateLimiter is optional; no limit is applied when nil.
	RateLimiter service.RateLimiter
	// TrustedProxies may set X-Forwarded-For. Empty means the client IP is
	// always the peer address.
	TrustedProxies []string
	Logger         logger.Logger
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(Recovery(deps.Logger), RequestLogger(deps.Logger), ErrorMiddleware(deps.Logger))

	limited := []gin.HandlerFunc{}
	if deps.RateLimiter != nil {
		limited = append(limited, RateLimitMiddleware(deps.RateLimiter, deps.Logger))
	}

	register := func(r gin.IRoutes) {
		r.POST("/signup/", append(limited, deps.SignUpHandler.SignUp)...)
		r.POST("/check-email/", append(limited, deps.EmailCheckHandler.CheckEmail)...)
		r.GET("/check-email/", append(limited, deps.EmailCheckHandler.CheckEmail)...)
	}

	register(router)

	api := router.Group("/api")
	{
		register(api)
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	}

	return router, nil
}
