package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/apitoken"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statistics"
	webhookhandler "github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/webhook_handler"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/response"
)

// badRequest answers 400 for input the handler could not bind.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, msg))
}

// respondError maps service errors to status codes. Unclassified errors are
// logged and answered with a generic 500.
func respondError(c *gin.Context, log *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, statechange.ErrValidation),
		errors.Is(err, statistics.ErrInvalidRequest),
		errors.Is(err, apitoken.ErrInvalidIssueRequest):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
	case errors.Is(err, statechange.ErrDomain):
		c.JSON(http.StatusUnprocessableEntity, response.ErrorT[any](response.APIResponseCodeDomain, err.Error()))
	case errors.Is(err, statechange.ErrNotFound),
		errors.Is(err, webhookhandler.ErrUnsupportedProvider),
		errors.Is(err, apitoken.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
	default:
		_ = c.Error(err)
		logctx.FromGin(c, log).Errorw("request_failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
	}
}
