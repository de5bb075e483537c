package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys shared by the HTTP middleware and the services.
const (
	KeyLogger    = "logger"
	KeyTraceID   = "traceID"
	KeyAPISource = "api_source"
)

// FromGin returns a request-scoped logger from gin.Context if present,
// otherwise returns the provided base logger.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if l, ok := c.Get(KeyLogger); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			return lg
		}
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns a logger from context if set, otherwise attempts to enrich
// base with trace_id/api_source from context values.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	if lg, ok := ctx.Value(KeyLogger).(*zap.SugaredLogger); ok && lg != nil {
		return lg
	}
	var fields []interface{}
	if tid, ok := ctx.Value(KeyTraceID).(string); ok && tid != "" {
		fields = append(fields, "trace_id", tid)
	}
	if src, ok := ctx.Value(KeyAPISource).(string); ok && src != "" {
		fields = append(fields, "api_source", src)
	}
	if len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}
