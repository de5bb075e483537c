package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/apitoken"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/response"
)

// APITokenAuth requires "Authorization: Bearer <token>" accepted by v. On
// success the identity is stored in the request context and the request
// logger is tagged with the api source.
func APITokenAuth(v apitoken.TokenValidator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			reject(c, log, &apitoken.AuthError{Reason: apitoken.ReasonMissingOrMalformedHeader})
			return
		}

		id, err := v.Validate(c.Request.Context(), token, ClientKey(c.Request))
		if err != nil {
			if !errors.Is(err, apitoken.ErrInvalidToken) {
				logctx.FromGin(c, log).Errorw("api_token_validation_error", "err", err)
			}
			reject(c, log, &apitoken.AuthError{Reason: apitoken.ReasonInvalidToken, Err: err})
			return
		}

		c.Set(logctx.KeyAPISource, id.Source)
		ctx := apitoken.WithIdentity(c.Request.Context(), id)
		ctx = context.WithValue(ctx, logctx.KeyAPISource, id.Source)
		c.Request = c.Request.WithContext(ctx)
		if l, ok := c.Get(logctx.KeyLogger); ok {
			if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
				setRequestLogger(c, lg.With("api_source", id.Source))
			}
		}
		c.Next()
	}
}

// bearerToken splits "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(c *gin.Context, log *zap.SugaredLogger, err *apitoken.AuthError) {
	logctx.FromGin(c, log).Infow("api_token_rejected", "reason", err.Reason, "client_ip", ClientKey(c.Request), "err", err.Err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized(err.Message()))
}
