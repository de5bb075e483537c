package webhook_log

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/testutil"
)

func TestService_SaveIsAsyncAndFlushedByWait(t *testing.T) {
	svc := New(testutil.OpenSQLite(t), zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())

	svc.Save(ctx, &models.WebhookLog{
		Provider:   "virtual_inspection",
		TraceID:    "trace-1",
		ReceivedAt: time.Now(),
		Data:       datatypes.JSON(`{"event_id":"e1"}`),
		Status:     models.WebhookLogStatusReceived,
	})
	svc.Save(ctx, nil)
	cancel()
	svc.Wait()

	rows, err := svc.ListByTraceID(context.Background(), "trace-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotEmpty(t, rows[0].ID)
	require.Equal(t, models.WebhookLogStatusReceived, rows[0].Status)
	require.JSONEq(t, `{"event_id":"e1"}`, string(rows[0].Data))
}

func TestService_SaveSyncRejectsNil(t *testing.T) {
	svc := New(testutil.OpenSQLite(t), zap.NewNop().Sugar())
	require.Error(t, svc.SaveSync(context.Background(), nil))
}
