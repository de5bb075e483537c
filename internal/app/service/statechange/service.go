package statechange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/apitoken"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/metrics"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/types"
)

type RecordStateChangeRequest struct {
	OrderID               uint `json:"inspection_order_id"`
	AppointmentID         uint `json:"appointment_id"`
	OrderStatusID         uint `json:"inspection_order_status"`
	OrderStatusInternalID uint `json:"inspection_order_status_internal"`
	AppointmentStatusID   uint `json:"appointment_status"`
	UserID                uint `json:"user_id"`
	UserRoleID            uint `json:"user_role"`

	UserDecisionState models.DecisionState `json:"user_decision_state"`
	ChangeType        models.ChangeType    `json:"state_change_type"`

	SystemCalculatedState       *models.DecisionState `json:"system_calculated_state,omitempty"`
	SystemCalculatedStateReason *string               `json:"system_calculated_state_reason,omitempty"`
	UserDecisionReason          *string               `json:"user_decision_reason,omitempty"`
	WebhookStatus               bool                  `json:"webhook_status,omitempty"`
	WebhookProvider             *string               `json:"webhook_provider,omitempty"`
	WebhookResponse             *string               `json:"webhook_response,omitempty"`
	Metadata                    map[string]any        `json:"metadata,omitempty"`
}

// HistoryFilter narrows GetHistory. Zero values mean no restriction.
type HistoryFilter struct {
	ChangeTypes []models.ChangeType
	From        *time.Time
	To          *time.Time
}

type ScanStateChangesRequest struct {
	Filters        []*types.CommonFilter `json:"filters"`
	From           int                   `json:"from"`
	Size           int                   `json:"size"`
	SortBy         string                `json:"sort_by"`
	SortOrder      string                `json:"sort_order"`
	IncludeDeleted bool                  `json:"include_deleted"`
}

type ScanStateChangesResponse struct {
	Items []*models.StateChange `json:"items"`
	Total int64                 `json:"total"`
}

// Columns callers may filter and sort on in ScanStateChanges.
var scanColumns = map[string]struct{}{
	"id":                               {},
	"inspection_order_id":              {},
	"appointment_id":                   {},
	"inspection_order_status":          {},
	"inspection_order_status_internal": {},
	"appointment_status":               {},
	"user_id":                          {},
	"user_role":                        {},
	"state_change_type":                {},
	"system_calculated_state":          {},
	"user_decision_state":              {},
	"webhook_status":                   {},
	"webhook_provider":                 {},
	"created_at":                       {},
}

const maxScanSize = 500

// Metadata keys stamped from the authenticated caller.
const (
	MetadataKeyAPISource  = "api_source"
	MetadataKeyAPITokenID = "api_token_id"
)

// Recorder is the audit trail of inspection lifecycle transitions.
type Recorder interface {
	RecordStateChange(ctx context.Context, req *RecordStateChangeRequest) (uint, error)
	GetHistory(ctx context.Context, orderID, appointmentID uint, filter *HistoryFilter) ([]*models.StateChange, error)
	GetByID(ctx context.Context, id uint) (*models.StateChange, error)
	SoftDelete(ctx context.Context, id uint) error
	ScanStateChanges(ctx context.Context, req *ScanStateChangesRequest) (*ScanStateChangesResponse, error)
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) Recorder {
	return &Service{db: db, log: log}
}

// RecordStateChange validates req, checks every reference against live rows
// and inserts one row, all in a single transaction.
func (s *Service) RecordStateChange(ctx context.Context, req *RecordStateChangeRequest) (uint, error) {
	start := time.Now()
	if err := validateRecordRequest(req); err != nil {
		return 0, err
	}

	row := &models.StateChange{
		InspectionOrderID:               req.OrderID,
		AppointmentID:                   req.AppointmentID,
		InspectionOrderStatusID:         req.OrderStatusID,
		InspectionOrderStatusInternalID: req.OrderStatusInternalID,
		AppointmentStatusID:             req.AppointmentStatusID,
		UserID:                          req.UserID,
		UserRoleID:                      req.UserRoleID,
		StateChangeType:                 req.ChangeType,
		SystemCalculatedState:           req.SystemCalculatedState,
		SystemCalculatedStateReason:     req.SystemCalculatedStateReason,
		UserDecisionState:               req.UserDecisionState,
		UserDecisionReason:              req.UserDecisionReason,
		WebhookStatus:                   req.WebhookStatus,
		WebhookResponse:                 req.WebhookResponse,
		WebhookProvider:                 req.WebhookProvider,
	}
	if req.Metadata != nil {
		row.Metadata = datatypes.JSONMap(lo.Assign(req.Metadata))
	}
	stampCaller(ctx, row)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, req); err != nil {
			return err
		}
		return tx.Create(row).Error
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return 0, err
		}
		logctx.FromCtx(ctx, s.log).Errorw("state_change_insert_failed", "inspection_order_id", req.OrderID, "appointment_id", req.AppointmentID, "err", err)
		return 0, fmt.Errorf("insert state change: %w", err)
	}

	metrics.IncStateChangeRecorded(string(row.StateChangeType))
	metrics.ObserveBusinessProcess("state_change", "record", start)
	logctx.FromCtx(ctx, s.log).Infow("state_change_recorded",
		"id", row.ID,
		"inspection_order_id", row.InspectionOrderID,
		"appointment_id", row.AppointmentID,
		"state_change_type", row.StateChangeType,
		"user_decision_state", row.UserDecisionState,
	)
	return row.ID, nil
}

// stampCaller records which authenticated integration wrote the row. The gate
// identity wins over any caller supplied value under the same keys.
func stampCaller(ctx context.Context, row *models.StateChange) {
	ident, ok := apitoken.IdentityFromCtx(ctx)
	if !ok {
		return
	}
	if row.Metadata == nil {
		row.Metadata = datatypes.JSONMap{}
	}
	row.Metadata[MetadataKeyAPISource] = ident.Source
	if ident.TokenID != "" {
		row.Metadata[MetadataKeyAPITokenID] = ident.TokenID
	}
}

func validateRecordRequest(req *RecordStateChangeRequest) error {
	if req == nil {
		return &ValidationError{Field: "request", Reason: "is required"}
	}
	required := []struct {
		field string
		id    uint
	}{
		{"inspection_order_id", req.OrderID},
		{"appointment_id", req.AppointmentID},
		{"inspection_order_status", req.OrderStatusID},
		{"inspection_order_status_internal", req.OrderStatusInternalID},
		{"appointment_status", req.AppointmentStatusID},
		{"user_id", req.UserID},
		{"user_role", req.UserRoleID},
	}
	for _, r := range required {
		if r.id == 0 {
			return missing(r.field)
		}
	}
	if req.UserDecisionState == "" {
		return missing("user_decision_state")
	}
	if req.ChangeType == "" {
		return missing("state_change_type")
	}
	if !req.UserDecisionState.Valid() {
		return decisionDomainError("user_decision_state", req.UserDecisionState)
	}
	if req.SystemCalculatedState != nil && !req.SystemCalculatedState.Valid() {
		return decisionDomainError("system_calculated_state", *req.SystemCalculatedState)
	}
	if !req.ChangeType.Valid() {
		return changeTypeDomainError(req.ChangeType)
	}
	return nil
}

func decisionDomainError(field string, v models.DecisionState) error {
	return &DomainError{
		Field:   field,
		Value:   string(v),
		Allowed: lo.Map(models.DecisionStates, func(s models.DecisionState, _ int) string { return string(s) }),
	}
}

func changeTypeDomainError(v models.ChangeType) error {
	return &DomainError{
		Field:   "state_change_type",
		Value:   string(v),
		Allowed: lo.Map(models.ChangeTypes, func(c models.ChangeType, _ int) string { return string(c) }),
	}
}

// checkReferences resolves every foreign key against non-deleted rows.
func checkReferences(tx *gorm.DB, req *RecordStateChangeRequest) error {
	refs := []struct {
		field string
		id    uint
		model any
	}{
		{"inspection_order_id", req.OrderID, &models.InspectionOrder{}},
		{"appointment_id", req.AppointmentID, &models.Appointment{}},
		{"inspection_order_status", req.OrderStatusID, &models.InspectionOrderStatus{}},
		{"inspection_order_status_internal", req.OrderStatusInternalID, &models.InspectionOrderStatusInternal{}},
		{"appointment_status", req.AppointmentStatusID, &models.AppointmentStatus{}},
		{"user_id", req.UserID, &models.User{}},
		{"user_role", req.UserRoleID, &models.Role{}},
	}
	for _, r := range refs {
		var n int64
		if err := tx.Model(r.model).Where("id = ?", r.id).Count(&n).Error; err != nil {
			return fmt.Errorf("check %s: %w", r.field, err)
		}
		if n == 0 {
			return unresolved(r.field, r.id)
		}
	}
	return nil
}

// GetHistory returns the rows of an order/appointment pair, oldest first.
// Soft-deleted rows are excluded.
func (s *Service) GetHistory(ctx context.Context, orderID, appointmentID uint, filter *HistoryFilter) ([]*models.StateChange, error) {
	if orderID == 0 {
		return nil, missing("inspection_order_id")
	}
	if appointmentID == 0 {
		return nil, missing("appointment_id")
	}

	q := s.db.WithContext(ctx).Model(&models.StateChange{}).
		Where("inspection_order_id = ? AND appointment_id = ?", orderID, appointmentID)
	if filter != nil {
		if len(filter.ChangeTypes) > 0 {
			for _, ct := range filter.ChangeTypes {
				if !ct.Valid() {
					return nil, changeTypeDomainError(ct)
				}
			}
			q = q.Where("state_change_type IN ?", lo.Uniq(filter.ChangeTypes))
		}
		if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
			return nil, &ValidationError{Field: "from", Reason: "is after to"}
		}
		if filter.From != nil {
			q = q.Where("created_at >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("created_at <= ?", *filter.To)
		}
	}

	var rows []*models.StateChange
	if err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load state history: %w", err)
	}
	return rows, nil
}

// GetByID loads one row, soft-deleted or not.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.StateChange, error) {
	if id == 0 {
		return nil, missing("id")
	}
	var row models.StateChange
	err := s.db.WithContext(ctx).Unscoped().Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load state change %d: %w", id, err)
	}
	return &row, nil
}

// SoftDelete sets deleted_at on a live row. Deleting an already deleted or
// unknown row returns ErrNotFound.
func (s *Service) SoftDelete(ctx context.Context, id uint) error {
	if id == 0 {
		return missing("id")
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.StateChange{})
	if res.Error != nil {
		return fmt.Errorf("soft delete state change %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	logctx.FromCtx(ctx, s.log).Infow("state_change_soft_deleted", "id", id)
	return nil
}

// ScanStateChanges is the paginated admin listing.
func (s *Service) ScanStateChanges(ctx context.Context, req *ScanStateChangesRequest) (*ScanStateChangesResponse, error) {
	if req == nil {
		return nil, &ValidationError{Field: "request", Reason: "is required"}
	}
	for _, f := range req.Filters {
		if err := f.Validate(scanColumns); err != nil {
			return nil, &ValidationError{Field: "filters", Reason: err.Error()}
		}
	}
	if req.SortBy != "" {
		if _, ok := scanColumns[req.SortBy]; !ok {
			return nil, &ValidationError{Field: "sort_by", Reason: fmt.Sprintf("cannot sort by %q", req.SortBy)}
		}
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.Size > maxScanSize {
		req.Size = maxScanSize
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.StateChange{})
	if req.IncludeDeleted {
		tx = tx.Unscoped()
	}
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count state changes: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	} else {
		q = q.Order("created_at DESC").Order("id DESC")
	}

	var rows []*models.StateChange
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list state changes: %w", err)
	}
	return &ScanStateChangesResponse{Items: rows, Total: total}, nil
}
