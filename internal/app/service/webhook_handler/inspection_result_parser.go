package webhook_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
)

const (
	ProviderVirtualInspection = "virtual_inspection"
	ProviderFieldInspection   = "field_inspection"
)

// InspectionResultPayload is the acknowledgment an inspection provider posts
// once it has scored an appointment.
type InspectionResultPayload struct {
	EventID               string         `json:"event_id"`
	OrderID               uint           `json:"inspection_order_id"`
	AppointmentID         uint           `json:"appointment_id"`
	OrderStatusID         uint           `json:"inspection_order_status"`
	OrderStatusInternalID uint           `json:"inspection_order_status_internal"`
	AppointmentStatusID   uint           `json:"appointment_status"`
	UserID                uint           `json:"user_id"`
	UserRoleID            uint           `json:"user_role"`
	Result                string         `json:"result"`
	Reason                string         `json:"reason"`
	OccurredAt            *time.Time     `json:"occurred_at"`
	Metadata              map[string]any `json:"metadata"`
}

type InspectionResultParser struct {
	provider   string
	raw        []byte
	receivedAt time.Time
	Payload    *InspectionResultPayload
}

func NewInspectionResultParser(provider string, body []byte, receivedAt time.Time) (WebhookParser, error) {
	var p InspectionResultPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", provider, err)
	}
	return &InspectionResultParser{provider: provider, raw: body, receivedAt: receivedAt, Payload: &p}, nil
}

func (p *InspectionResultParser) GetProvider(ctx context.Context) string { return p.provider }

func (p *InspectionResultParser) GetEventTime(ctx context.Context) time.Time {
	if p.Payload.OccurredAt != nil {
		return *p.Payload.OccurredAt
	}
	return p.receivedAt
}

func (p *InspectionResultParser) GetOrderID(ctx context.Context) uint { return p.Payload.OrderID }

func (p *InspectionResultParser) GetAppointmentID(ctx context.Context) uint {
	return p.Payload.AppointmentID
}

// GetStateChangeRequest maps the result to a system_auto row. The provider
// result fills both the calculated and the decision state.
func (p *InspectionResultParser) GetStateChangeRequest(ctx context.Context) (*statechange.RecordStateChangeRequest, error) {
	state := models.DecisionState(p.Payload.Result)
	if state == "" {
		return nil, fmt.Errorf("result is empty")
	}
	metadata := lo.Assign(map[string]any{}, p.Payload.Metadata, map[string]any{
		"event_id":    p.Payload.EventID,
		"event_time":  p.GetEventTime(ctx).UTC().Format(time.RFC3339),
		"received_at": p.receivedAt.UTC().Format(time.RFC3339),
	})
	req := &statechange.RecordStateChangeRequest{
		OrderID:               p.Payload.OrderID,
		AppointmentID:         p.Payload.AppointmentID,
		OrderStatusID:         p.Payload.OrderStatusID,
		OrderStatusInternalID: p.Payload.OrderStatusInternalID,
		AppointmentStatusID:   p.Payload.AppointmentStatusID,
		UserID:                p.Payload.UserID,
		UserRoleID:            p.Payload.UserRoleID,
		UserDecisionState:     state,
		ChangeType:            models.ChangeTypeSystemAuto,
		SystemCalculatedState: lo.ToPtr(state),
		WebhookStatus:         true,
		WebhookProvider:       lo.ToPtr(p.provider),
		WebhookResponse:       lo.ToPtr(string(p.raw)),
		Metadata:              metadata,
	}
	if p.Payload.Reason != "" {
		req.SystemCalculatedStateReason = lo.ToPtr(p.Payload.Reason)
	}
	return req, nil
}

func (p *InspectionResultParser) GetData(ctx context.Context) any { return p.Payload }
