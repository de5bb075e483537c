package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	webhookhandler "github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/webhook_handler"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/response"
)

const maxWebhookBody = 1 << 20

// @Summary      Provider Webhook
// @Description  Receives an inspection provider acknowledgment and records it as a system_auto state change.
// @Tags         Integration
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        provider  path  string  true  "Provider id (virtual_inspection, field_inspection)"
// @Param        request   body  webhook_handler.InspectionResultPayload  true  "Provider payload"
// @Success      201  {object}  handlers.RespRecordStateChange
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/integration/webhook/{provider} [post]
func ApiProviderWebhook(h *webhookhandler.WebhookHandler, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
		if err != nil {
			badRequest(c, "unreadable body")
			return
		}
		if len(body) > maxWebhookBody {
			badRequest(c, "body too large")
			return
		}
		id, err := h.HandleWebhook(c.Request.Context(), c.Param("provider"), c.GetString(logctx.KeyTraceID), body)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, response.OKT(&RecordStateChangeResponse{ID: id}))
	}
}

func RegisterWebhookRoutes(r gin.IRouter, h *webhookhandler.WebhookHandler, log *zap.SugaredLogger) {
	r.POST("/webhook/:provider", ApiProviderWebhook(h, log))
}
