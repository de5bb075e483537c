package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/ratelimit"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/response"
)

const rateLimitMessage = "Too many requests, please try again later."

// RateLimit rejects callers over the limiter threshold with 429. The client
// key comes from ClientKey. Store failures let the request through.
func RateLimit(l *ratelimit.Limiter, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Enabled() {
			c.Next()
			return
		}
		key := ClientKey(c.Request)
		d, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logctx.FromGin(c, log).Warnw("rate_limit_bypassed", "client_key", key, "err", err)
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.Limit()))
		if d.Allowed {
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			c.Next()
			return
		}

		secs := 1
		var rlErr *ratelimit.RateLimitError
		if errors.As(d.Err(), &rlErr) {
			secs = rlErr.RetryAfterSeconds()
		}
		h.Set("X-RateLimit-Remaining", "0")
		h.Set("Retry-After", strconv.Itoa(secs))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, response.TooManyRequests(rateLimitMessage, secs))
	}
}
