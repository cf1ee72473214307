// Package middleware holds gin middleware shared by the site and identity
// servers.
package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

// ContextKeyRequestID is the gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// RequestLogger logs all HTTP requests with structured fields and stamps
// each request with an X-Request-ID.
type RequestLogger struct {
	logger logger.Logger
}

// NewRequestLogger creates a request logging middleware.
func NewRequestLogger(l logger.Logger) *RequestLogger {
	return &RequestLogger{logger: l}
}

// Handler returns the gin middleware handler.
func (m *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestLogger := m.logger.With(logger.RequestID(requestID))
		ctx := logger.WithContext(c.Request.Context(), requestLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		fields := []logger.Field{
			logger.RequestID(requestID),
			logger.Method(c.Request.Method),
			logger.Path(path),
			logger.Status(c.Writer.Status()),
			logger.Latency(time.Since(start)),
			logger.ClientIP(GetClientIP(c)),
		}
		if query != "" {
			fields = append(fields, logger.String("query", query))
		}

		m.logger.Info("request", fields...)
	}
}

// GetClientIP extracts the client IP address, honoring X-Forwarded-For.
func GetClientIP(c *gin.Context) string {
	ip := c.GetHeader("X-Forwarded-For")
	if ip != "" {
		if idx := strings.Index(ip, ","); idx != -1 {
			ip = strings.TrimSpace(ip[:idx])
		}
		return ip
	}
	return c.ClientIP()
}
