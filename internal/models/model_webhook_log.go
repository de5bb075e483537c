package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookLogStatus string

const (
	WebhookLogStatusReceived     WebhookLogStatus = "received"
	WebhookLogStatusHandled      WebhookLogStatus = "handled"
	WebhookLogStatusHandleFailed WebhookLogStatus = "handle_failed"
)

// WebhookLog keeps every inbound provider acknowledgment, once on receipt and
// once with the handling result.
type WebhookLog struct {
	ID                string           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Provider          string           `gorm:"column:provider;type:varchar(64);not null;index" json:"provider"`
	TraceID           string           `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	APISource         string           `gorm:"column:api_source;type:varchar(64)" json:"api_source"`
	InspectionOrderID *uint            `gorm:"column:inspection_order_id;index" json:"inspection_order_id"`
	AppointmentID     *uint            `gorm:"column:appointment_id" json:"appointment_id"`
	StateChangeID     *uint            `gorm:"column:state_change_id" json:"state_change_id"`
	ReceivedAt        time.Time        `gorm:"column:received_at" json:"received_at"`
	Data              datatypes.JSON   `gorm:"column:data;type:jsonb" json:"data"`
	Result            *datatypes.JSON  `gorm:"column:result;type:jsonb" json:"result"`
	Status            WebhookLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (WebhookLog) TableName() string { return "webhook_log" }
