package webhook_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/apitoken"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
	webhooklog "github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/webhook_log"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/metrics"
)

type WebhookHandler struct {
	recorder statechange.Recorder
	logSvc   *webhooklog.Service
	Logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewWebhookHandler(recorder statechange.Recorder, logSvc *webhooklog.Service, log *zap.SugaredLogger) *WebhookHandler {
	return &WebhookHandler{recorder: recorder, logSvc: logSvc, Logger: log, now: time.Now}
}

// HandleWebhook logs the payload as received, records the acknowledged state
// change and logs the outcome. It returns the new state change id.
func (h *WebhookHandler) HandleWebhook(ctx context.Context, provider string, traceID string, body []byte) (id uint, resErr error) {
	start := h.now()
	parser, err := getParser(provider, body, start)
	if errors.Is(err, ErrUnsupportedProvider) {
		return 0, err
	}
	if err != nil {
		return 0, &statechange.ValidationError{Field: "body", Reason: err.Error()}
	}

	var source string
	if ident, ok := apitoken.IdentityFromCtx(ctx); ok {
		source = ident.Source
	}
	dataBytes, _ := json.Marshal(parser.GetData(ctx))
	orderID := nonZero(parser.GetOrderID(ctx))
	appointmentID := nonZero(parser.GetAppointmentID(ctx))

	h.logSvc.Save(ctx, &models.WebhookLog{
		Provider:          provider,
		TraceID:           traceID,
		APISource:         source,
		InspectionOrderID: orderID,
		AppointmentID:     appointmentID,
		ReceivedAt:        start,
		Data:              datatypes.JSON(dataBytes),
		Status:            models.WebhookLogStatusReceived,
	})

	defer func() {
		resMap := map[string]any{"state_change_id": id}
		status := models.WebhookLogStatusHandled
		if resErr != nil {
			resMap["error"] = resErr.Error()
			status = models.WebhookLogStatusHandleFailed
		}
		resBytes, _ := json.Marshal(resMap)
		result := datatypes.JSON(resBytes)
		h.logSvc.Save(ctx, &models.WebhookLog{
			Provider:          provider,
			TraceID:           traceID,
			APISource:         source,
			InspectionOrderID: orderID,
			AppointmentID:     appointmentID,
			StateChangeID:     nonZero(id),
			ReceivedAt:        start,
			Data:              datatypes.JSON(dataBytes),
			Result:            &result,
			Status:            status,
		})
		metrics.ObserveBusinessProcess("webhook", provider, start)
	}()

	req, err := parser.GetStateChangeRequest(ctx)
	if err != nil {
		logctx.FromCtx(ctx, h.Logger).Warnw("webhook_payload_rejected", "provider", provider, "err", err)
		return 0, &statechange.ValidationError{Field: "result", Reason: err.Error()}
	}
	id, err = h.recorder.RecordStateChange(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("record webhook state change: %w", err)
	}
	logctx.FromCtx(ctx, h.Logger).Infow("webhook_handled", "provider", provider, "state_change_id", id)
	return id, nil
}

func nonZero(v uint) *uint {
	if v == 0 {
		return nil
	}
	return lo.ToPtr(v)
}

var Module = fx.Options(
	fx.Provide(NewWebhookHandler),
)
