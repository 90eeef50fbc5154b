package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/actor"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

// RequestContext stamps every request with a request ID and the acting user.
// The ID is taken from X-Request-ID when the caller supplies one, otherwise
// generated; the actor comes from the optional X-Actor header and defaults to
// "system" downstream for audit columns.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := actor.WithRequestID(c.Request.Context(), requestID)
		if who := c.GetHeader("X-Actor"); who != "" {
			ctx = actor.WithActor(ctx, who)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// AccessLog writes one structured log line per handled request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.FromContext(c.Request.Context()).Info("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
