package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sencity/user-service/internal/application/service"
	"github.com/sencity/user-service/pkg/apperror"
	"github.com/sencity/user-service/pkg/logger"
)

// ErrorMiddleware renders the last error a handler attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			log.Error("Unhandled error", err, zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusInternalServerError, gin.H{"error": apperror.ErrInternal.Error()})
			return
		}

		status := apperror.ToHTTPStatus(appErr)
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", appErr, zap.String("path", c.Request.URL.Path))
			c.JSON(status, gin.H{"error": apperror.ErrInternal.Error()})
			return
		}

		log.Debug("Request rejected", zap.String("path", c.Request.URL.Path), zap.Error(appErr))
		c.JSON(status, appErr.ToJSON())
	}
}

// RateLimitMiddleware limits requests per client IP and route. The request
// is let through when the limiter itself fails.
func RateLimitMiddleware(limiter service.RateLimiter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()

		res, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			c.Error(apperror.NewTooManyRequests(fmt.Sprintf("too many requests for %s", c.FullPath())))
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func Recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Panic recovered", fmt.Errorf("%v", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": apperror.ErrInternal.Error()})
	})
}
