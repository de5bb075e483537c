package statechange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/apitoken"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/testutil"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/types"
)

func newTestService(t *testing.T) (Recorder, *gorm.DB, testutil.Refs) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	refs := testutil.SeedRefs(t, db, 1)
	return New(db, zap.NewNop().Sugar()), db, refs
}

func validRequest(refs testutil.Refs) *RecordStateChangeRequest {
	return &RecordStateChangeRequest{
		OrderID:               refs.OrderID,
		AppointmentID:         refs.AppointmentID,
		OrderStatusID:         refs.OrderStatusID,
		OrderStatusInternalID: refs.OrderStatusInternalID,
		AppointmentStatusID:   refs.AppointmentStatusID,
		UserID:                refs.UserID,
		UserRoleID:            refs.RoleID,
		UserDecisionState:     models.DecisionStateCompleted,
		ChangeType:            models.ChangeTypeUserDecision,
	}
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Unscoped().Model(&models.StateChange{}).Count(&n).Error)
	return n
}

func TestRecordStateChange_RoundTripsThroughHistory(t *testing.T) {
	svc, _, refs := newTestService(t)
	ctx := context.Background()

	req := validRequest(refs)
	req.UserDecisionReason = lo.ToPtr("all photos approved")
	req.SystemCalculatedState = lo.ToPtr(models.DecisionStatePartial)
	req.SystemCalculatedStateReason = lo.ToPtr("two parts flagged")
	req.Metadata = map[string]any{"channel": "virtual", "attempt": float64(2)}

	id, err := svc.RecordStateChange(ctx, req)
	require.NoError(t, err)
	require.Positive(t, id)

	rows, err := svc.GetHistory(ctx, refs.OrderID, refs.AppointmentID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	require.Equal(t, id, got.ID)
	require.Equal(t, models.ChangeTypeUserDecision, got.StateChangeType)
	require.Equal(t, models.DecisionStateCompleted, got.UserDecisionState)
	require.Equal(t, "all photos approved", *got.UserDecisionReason)
	require.Equal(t, models.DecisionStatePartial, *got.SystemCalculatedState)
	require.Equal(t, "two parts flagged", *got.SystemCalculatedStateReason)
	require.Equal(t, refs.OrderStatusID, got.InspectionOrderStatusID)
	require.Equal(t, refs.RoleID, got.UserRoleID)
	require.False(t, got.WebhookStatus)
	require.Nil(t, got.WebhookProvider)
	require.Equal(t, "virtual", got.Metadata["channel"])
	require.EqualValues(t, 2, got.Metadata["attempt"])
	require.False(t, got.IsDeleted())
}

func TestRecordStateChange_StampsAuthenticatedCaller(t *testing.T) {
	svc, _, refs := newTestService(t)
	ctx := apitoken.WithIdentity(context.Background(), &apitoken.Identity{Source: "external_api", TokenID: "tok-1"})

	req := validRequest(refs)
	req.Metadata = map[string]any{"channel": "virtual", MetadataKeyAPISource: "spoofed"}

	id, err := svc.RecordStateChange(ctx, req)
	require.NoError(t, err)

	row, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "external_api", row.Metadata[MetadataKeyAPISource])
	require.Equal(t, "tok-1", row.Metadata[MetadataKeyAPITokenID])
	require.Equal(t, "virtual", row.Metadata["channel"])
	require.Equal(t, "spoofed", req.Metadata[MetadataKeyAPISource], "caller map must not be mutated")

	plain, err := svc.RecordStateChange(context.Background(), validRequest(refs))
	require.NoError(t, err)
	row, err = svc.GetByID(context.Background(), plain)
	require.NoError(t, err)
	require.NotContains(t, row.Metadata, MetadataKeyAPISource)
}

func TestRecordStateChange_SystemAutoStillCarriesUserDecisionState(t *testing.T) {
	svc, _, refs := newTestService(t)
	req := validRequest(refs)
	req.ChangeType = models.ChangeTypeSystemAuto
	req.UserDecisionState = models.DecisionStateNotInsurable
	req.SystemCalculatedState = lo.ToPtr(models.DecisionStateNotInsurable)

	id, err := svc.RecordStateChange(context.Background(), req)
	require.NoError(t, err)

	row, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, models.ChangeTypeSystemAuto, row.StateChangeType)
	require.Equal(t, models.DecisionStateNotInsurable, row.UserDecisionState)
}

func TestRecordStateChange_UnknownReferenceWritesNothing(t *testing.T) {
	svc, db, refs := newTestService(t)
	ctx := context.Background()

	cases := map[string]func(r *RecordStateChangeRequest){
		"inspection_order_id":              func(r *RecordStateChangeRequest) { r.OrderID = 999 },
		"appointment_id":                   func(r *RecordStateChangeRequest) { r.AppointmentID = 999 },
		"inspection_order_status":          func(r *RecordStateChangeRequest) { r.OrderStatusID = 999 },
		"inspection_order_status_internal": func(r *RecordStateChangeRequest) { r.OrderStatusInternalID = 999 },
		"appointment_status":               func(r *RecordStateChangeRequest) { r.AppointmentStatusID = 999 },
		"user_id":                          func(r *RecordStateChangeRequest) { r.UserID = 999 },
		"user_role":                        func(r *RecordStateChangeRequest) { r.UserRoleID = 999 },
	}
	for field, mutate := range cases {
		req := validRequest(refs)
		mutate(req)
		_, err := svc.RecordStateChange(ctx, req)
		require.ErrorIs(t, err, ErrValidation, field)

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		require.Equal(t, field, vErr.Field)
	}
	require.Zero(t, countRows(t, db))
}

func TestRecordStateChange_SoftDeletedReferenceDoesNotResolve(t *testing.T) {
	svc, db, refs := newTestService(t)
	require.NoError(t, db.Delete(&models.User{}, refs.UserID).Error)

	_, err := svc.RecordStateChange(context.Background(), validRequest(refs))
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, countRows(t, db))
}

func TestRecordStateChange_MissingAndDomainErrors(t *testing.T) {
	svc, db, refs := newTestService(t)
	ctx := context.Background()

	req := validRequest(refs)
	req.OrderID = 0
	_, err := svc.RecordStateChange(ctx, req)
	require.ErrorIs(t, err, ErrValidation)

	req = validRequest(refs)
	req.UserDecisionState = ""
	_, err = svc.RecordStateChange(ctx, req)
	require.ErrorIs(t, err, ErrValidation)

	req = validRequest(refs)
	req.UserDecisionState = "approved"
	_, err = svc.RecordStateChange(ctx, req)
	require.ErrorIs(t, err, ErrDomain)
	require.NotErrorIs(t, err, ErrValidation)

	req = validRequest(refs)
	req.SystemCalculatedState = lo.ToPtr(models.DecisionState("maybe"))
	_, err = svc.RecordStateChange(ctx, req)
	var dErr *DomainError
	require.ErrorAs(t, err, &dErr)
	require.Equal(t, "system_calculated_state", dErr.Field)
	require.Contains(t, dErr.Allowed, "not_insurable")

	req = validRequest(refs)
	req.ChangeType = "manual"
	_, err = svc.RecordStateChange(ctx, req)
	require.ErrorIs(t, err, ErrDomain)

	_, err = svc.RecordStateChange(ctx, nil)
	require.ErrorIs(t, err, ErrValidation)

	require.Zero(t, countRows(t, db))
}

func TestGetHistory_OrderAndSoftDelete(t *testing.T) {
	svc, db, refs := newTestService(t)
	ctx := context.Background()

	first, err := svc.RecordStateChange(ctx, validRequest(refs))
	require.NoError(t, err)
	secondReq := validRequest(refs)
	secondReq.ChangeType = models.ChangeTypeUserOverride
	secondReq.UserDecisionState = models.DecisionStateFailed
	second, err := svc.RecordStateChange(ctx, secondReq)
	require.NoError(t, err)

	// a row for another pair stays out of the history
	other := testutil.SeedRefs(t, db, 2)
	_, err = svc.RecordStateChange(ctx, validRequest(other))
	require.NoError(t, err)

	rows, err := svc.GetHistory(ctx, refs.OrderID, refs.AppointmentID, nil)
	require.NoError(t, err)
	require.Equal(t, []uint{first, second}, lo.Map(rows, func(r *models.StateChange, _ int) uint { return r.ID }))

	require.NoError(t, svc.SoftDelete(ctx, first))
	rows, err = svc.GetHistory(ctx, refs.OrderID, refs.AppointmentID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, second, rows[0].ID)

	deleted, err := svc.GetByID(ctx, first)
	require.NoError(t, err)
	require.True(t, deleted.IsDeleted())
	require.Equal(t, models.DecisionStateCompleted, deleted.UserDecisionState)

	require.ErrorIs(t, svc.SoftDelete(ctx, first), ErrNotFound)
	require.ErrorIs(t, svc.SoftDelete(ctx, 12345), ErrNotFound)
	_, err = svc.GetByID(ctx, 12345)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetHistory_TiesOnCreatedAtFallBackToID(t *testing.T) {
	svc, db, refs := newTestService(t)
	at := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	for _, ct := range []models.ChangeType{models.ChangeTypeUserOverride, models.ChangeTypeSystemAuto, models.ChangeTypeUserDecision} {
		require.NoError(t, db.Create(stateRow(refs, ct, at)).Error)
	}
	rows, err := svc.GetHistory(context.Background(), refs.OrderID, refs.AppointmentID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.True(t, rows[0].ID < rows[1].ID && rows[1].ID < rows[2].ID)
}

func TestGetHistory_Filters(t *testing.T) {
	svc, db, refs := newTestService(t)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 1, d, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, db.Create(stateRow(refs, models.ChangeTypeSystemAuto, day(1))).Error)
	require.NoError(t, db.Create(stateRow(refs, models.ChangeTypeUserOverride, day(2))).Error)
	require.NoError(t, db.Create(stateRow(refs, models.ChangeTypeUserDecision, day(3))).Error)
	require.NoError(t, db.Create(stateRow(refs, models.ChangeTypeSystemAuto, day(4))).Error)

	rows, err := svc.GetHistory(ctx, refs.OrderID, refs.AppointmentID, &HistoryFilter{
		ChangeTypes: []models.ChangeType{models.ChangeTypeSystemAuto},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = svc.GetHistory(ctx, refs.OrderID, refs.AppointmentID, &HistoryFilter{
		From: lo.ToPtr(day(2)),
		To:   lo.ToPtr(day(3)),
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, models.ChangeTypeUserOverride, rows[0].StateChangeType)
	require.Equal(t, models.ChangeTypeUserDecision, rows[1].StateChangeType)

	rows, err = svc.GetHistory(ctx, refs.OrderID, refs.AppointmentID, &HistoryFilter{
		ChangeTypes: []models.ChangeType{models.ChangeTypeSystemAuto, models.ChangeTypeUserDecision},
		From:        lo.ToPtr(day(3)),
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, err = svc.GetHistory(ctx, refs.OrderID, refs.AppointmentID, &HistoryFilter{ChangeTypes: []models.ChangeType{"bogus"}})
	require.ErrorIs(t, err, ErrDomain)

	_, err = svc.GetHistory(ctx, refs.OrderID, refs.AppointmentID, &HistoryFilter{From: lo.ToPtr(day(3)), To: lo.ToPtr(day(1))})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetHistory(ctx, 0, refs.AppointmentID, nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestScanStateChanges(t *testing.T) {
	svc, db, refs := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ct := models.ChangeTypeSystemAuto
		if i%2 == 1 {
			ct = models.ChangeTypeUserDecision
		}
		require.NoError(t, db.Create(stateRow(refs, ct, time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC))).Error)
	}

	res, err := svc.ScanStateChanges(ctx, &ScanStateChangesRequest{
		Filters: []*types.CommonFilter{{Field: "state_change_type", Operator: types.CommonFilterOperatorEq, Values: []any{"system_auto"}}},
		Size:    2,
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	require.True(t, res.Items[0].CreatedAt.After(res.Items[1].CreatedAt))

	res, err = svc.ScanStateChanges(ctx, &ScanStateChangesRequest{SortBy: "id", SortOrder: "asc", From: 1, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 5, res.Total)
	require.Len(t, res.Items, 4)
	require.Equal(t, uint(2), res.Items[0].ID)

	require.NoError(t, svc.SoftDelete(ctx, 1))
	res, err = svc.ScanStateChanges(ctx, &ScanStateChangesRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 4, res.Total)
	res, err = svc.ScanStateChanges(ctx, &ScanStateChangesRequest{IncludeDeleted: true})
	require.NoError(t, err)
	require.EqualValues(t, 5, res.Total)

	_, err = svc.ScanStateChanges(ctx, &ScanStateChangesRequest{
		Filters: []*types.CommonFilter{{Field: "1=1; drop table users", Operator: types.CommonFilterOperatorEq, Values: []any{1}}},
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ScanStateChanges(ctx, &ScanStateChangesRequest{SortBy: "metadata"})
	require.ErrorIs(t, err, ErrValidation)
}

func stateRow(refs testutil.Refs, ct models.ChangeType, at time.Time) *models.StateChange {
	return &models.StateChange{
		InspectionOrderID:               refs.OrderID,
		AppointmentID:                   refs.AppointmentID,
		InspectionOrderStatusID:         refs.OrderStatusID,
		InspectionOrderStatusInternalID: refs.OrderStatusInternalID,
		AppointmentStatusID:             refs.AppointmentStatusID,
		UserID:                          refs.UserID,
		UserRoleID:                      refs.RoleID,
		StateChangeType:                 ct,
		UserDecisionState:               models.DecisionStateCompleted,
		CreatedAt:                       at,
		UpdatedAt:                       at,
	}
}
