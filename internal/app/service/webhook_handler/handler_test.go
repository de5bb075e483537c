package webhook_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/apitoken"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
	webhooklog "github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/webhook_log"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/testutil"
)

func payload(orderID uint, result string) []byte {
	return []byte(fmt.Sprintf(`{
		"event_id": "evt-42",
		"inspection_order_id": %d,
		"appointment_id": 1,
		"inspection_order_status": 1,
		"inspection_order_status_internal": 1,
		"appointment_status": 1,
		"user_id": 1,
		"user_role": 1,
		"result": %q,
		"reason": "score 0.93",
		"occurred_at": "2026-04-01T08:30:00Z",
		"metadata": {"score": 0.93}
	}`, orderID, result))
}

func newTestHandler(t *testing.T) (*WebhookHandler, statechange.Recorder, *webhooklog.Service) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	testutil.SeedRefs(t, db, 1)
	log := zap.NewNop().Sugar()
	rec := statechange.New(db, log)
	logs := webhooklog.New(db, log)
	return NewWebhookHandler(rec, logs, log), rec, logs
}

func TestHandleWebhook_RecordsAcknowledgedStateChange(t *testing.T) {
	h, rec, logs := newTestHandler(t)
	ctx := context.Background()

	id, err := h.HandleWebhook(ctx, ProviderVirtualInspection, "trace-ok", payload(1, "partial"))
	require.NoError(t, err)
	require.Positive(t, id)

	row, err := rec.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, row.WebhookStatus)
	require.Equal(t, ProviderVirtualInspection, *row.WebhookProvider)
	require.Equal(t, models.ChangeTypeSystemAuto, row.StateChangeType)
	require.Equal(t, models.DecisionStatePartial, row.UserDecisionState)
	require.Equal(t, models.DecisionStatePartial, *row.SystemCalculatedState)
	require.Equal(t, "score 0.93", *row.SystemCalculatedStateReason)
	require.Contains(t, *row.WebhookResponse, "evt-42")
	require.Equal(t, "evt-42", row.Metadata["event_id"])
	require.Equal(t, "2026-04-01T08:30:00Z", row.Metadata["event_time"])

	logs.Wait()
	entries, err := logs.ListByTraceID(ctx, "trace-ok")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	statuses := []models.WebhookLogStatus{entries[0].Status, entries[1].Status}
	require.ElementsMatch(t, []models.WebhookLogStatus{models.WebhookLogStatusReceived, models.WebhookLogStatusHandled}, statuses)
	for _, e := range entries {
		if e.Status == models.WebhookLogStatusHandled {
			require.NotNil(t, e.StateChangeID)
			require.Equal(t, id, *e.StateChangeID)
		}
	}
}

func TestHandleWebhook_CarriesCallerSource(t *testing.T) {
	h, rec, logs := newTestHandler(t)
	ctx := apitoken.WithIdentity(context.Background(), &apitoken.Identity{Source: "vi_provider"})

	id, err := h.HandleWebhook(ctx, ProviderVirtualInspection, "trace-src", payload(1, "completed"))
	require.NoError(t, err)

	row, err := rec.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "vi_provider", row.Metadata[statechange.MetadataKeyAPISource])

	logs.Wait()
	entries, err := logs.ListByTraceID(ctx, "trace-src")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Equal(t, "vi_provider", e.APISource)
	}
}

func TestHandleWebhook_FailuresAreLogged(t *testing.T) {
	h, _, logs := newTestHandler(t)
	ctx := context.Background()

	_, err := h.HandleWebhook(ctx, ProviderFieldInspection, "trace-bad-ref", payload(77, "completed"))
	require.ErrorIs(t, err, statechange.ErrValidation)

	_, err = h.HandleWebhook(ctx, ProviderFieldInspection, "trace-bad-result", payload(1, "great"))
	require.ErrorIs(t, err, statechange.ErrDomain)

	_, err = h.HandleWebhook(ctx, ProviderFieldInspection, "trace-empty", payload(1, ""))
	require.ErrorIs(t, err, statechange.ErrValidation)

	logs.Wait()
	entries, err := logs.ListByTraceID(ctx, "trace-bad-ref")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	var failed *models.WebhookLog
	for _, e := range entries {
		if e.Status == models.WebhookLogStatusHandleFailed {
			failed = e
		}
	}
	require.NotNil(t, failed)
	require.Nil(t, failed.StateChangeID)
	var result map[string]any
	require.NoError(t, json.Unmarshal(*failed.Result, &result))
	require.Contains(t, result["error"], "inspection_order_id")
}

func TestHandleWebhook_UnknownProviderAndBadJSON(t *testing.T) {
	h, _, logs := newTestHandler(t)

	_, err := h.HandleWebhook(context.Background(), "carrier_pigeon", "t", payload(1, "completed"))
	require.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = h.HandleWebhook(context.Background(), ProviderVirtualInspection, "t", []byte("{not json"))
	require.ErrorIs(t, err, statechange.ErrValidation)

	logs.Wait()
	entries, err := logs.ListByTraceID(context.Background(), "t")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestInspectionResultParser_EventTimeFallsBackToReceipt(t *testing.T) {
	received := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	p, err := NewInspectionResultParser(ProviderVirtualInspection, []byte(`{"result":"failed"}`), received)
	require.NoError(t, err)
	require.Equal(t, received, p.GetEventTime(context.Background()))
	require.Nil(t, p.(*InspectionResultParser).Payload.OccurredAt)
}
