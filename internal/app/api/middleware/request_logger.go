package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
)

// RequestLoggerMiddleware attaches a request-scoped logger enriched with
// trace_id to gin.Context and request context.
func RequestLoggerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetString(logctx.KeyTraceID)

		reqLogger := base.With("trace_id", traceID)
		setRequestLogger(c, reqLogger)

		// mirror trace id to response header when available
		if traceID != "" {
			c.Writer.Header().Set(HeaderRequestID, traceID)
		}

		c.Next()
	}
}

func setRequestLogger(c *gin.Context, l *zap.SugaredLogger) {
	c.Set(logctx.KeyLogger, l)
	ctx := context.WithValue(c.Request.Context(), logctx.KeyLogger, l)
	c.Request = c.Request.WithContext(ctx)
}
