package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrStateChangeImmutable = errors.New("inspection state rows are append-only")

// DecisionState is the outcome of an inspection, computed or decided.
type DecisionState string

const (
	DecisionStateCompleted    DecisionState = "completed"
	DecisionStateNotInsurable DecisionState = "not_insurable"
	DecisionStatePartial      DecisionState = "partial"
	DecisionStateFailed       DecisionState = "failed"
)

var DecisionStates = []DecisionState{
	DecisionStateCompleted,
	DecisionStateNotInsurable,
	DecisionStatePartial,
	DecisionStateFailed,
}

func (s DecisionState) Valid() bool {
	switch s {
	case DecisionStateCompleted, DecisionStateNotInsurable, DecisionStatePartial, DecisionStateFailed:
		return true
	}
	return false
}

// ChangeType records why a state row was written.
type ChangeType string

const (
	ChangeTypeSystemAuto   ChangeType = "system_auto"
	ChangeTypeUserOverride ChangeType = "user_override"
	ChangeTypeUserDecision ChangeType = "user_decision"
)

var ChangeTypes = []ChangeType{ChangeTypeSystemAuto, ChangeTypeUserOverride, ChangeTypeUserDecision}

func (t ChangeType) Valid() bool {
	switch t {
	case ChangeTypeSystemAuto, ChangeTypeUserOverride, ChangeTypeUserDecision:
		return true
	}
	return false
}

// StateChange is one lifecycle transition of an inspection order/appointment
// pair. Rows are written once; the only later mutation is a soft delete.
//
// UserDecisionState is filled for every row, system_auto included.
// StateChangeType tells who authored it.
type StateChange struct {
	ID                              uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InspectionOrderID               uint       `gorm:"column:inspection_order_id;not null;index" json:"inspection_order_id"`
	AppointmentID                   uint       `gorm:"column:appointment_id;not null;index" json:"appointment_id"`
	InspectionOrderStatusID         uint       `gorm:"column:inspection_order_status;not null" json:"inspection_order_status"`
	InspectionOrderStatusInternalID uint       `gorm:"column:inspection_order_status_internal;not null" json:"inspection_order_status_internal"`
	AppointmentStatusID             uint       `gorm:"column:appointment_status;not null" json:"appointment_status"`
	UserID                          uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	UserRoleID                      uint       `gorm:"column:user_role;not null" json:"user_role"`
	StateChangeType                 ChangeType `gorm:"column:state_change_type;type:varchar(32);not null" json:"state_change_type"`

	SystemCalculatedState       *DecisionState `gorm:"column:system_calculated_state;type:varchar(32)" json:"system_calculated_state"`
	SystemCalculatedStateReason *string        `gorm:"column:system_calculated_state_reason;type:text" json:"system_calculated_state_reason"`
	UserDecisionState           DecisionState  `gorm:"column:user_decision_state;type:varchar(32);not null" json:"user_decision_state"`
	UserDecisionReason          *string        `gorm:"column:user_decision_reason;type:text" json:"user_decision_reason"`

	WebhookStatus   bool    `gorm:"column:webhook_status;not null;default:false" json:"webhook_status"`
	WebhookResponse *string `gorm:"column:webhook_response;type:text" json:"webhook_response"`
	WebhookProvider *string `gorm:"column:webhook_provider;type:varchar(64)" json:"webhook_provider"`

	// Metadata is an open object for integrations; nil is stored as NULL.
	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time      `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at"`

	InspectionOrder               *InspectionOrder               `gorm:"foreignKey:InspectionOrderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Appointment                   *Appointment                   `gorm:"foreignKey:AppointmentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	InspectionOrderStatus         *InspectionOrderStatus         `gorm:"foreignKey:InspectionOrderStatusID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	InspectionOrderStatusInternal *InspectionOrderStatusInternal `gorm:"foreignKey:InspectionOrderStatusInternalID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	AppointmentStatus             *AppointmentStatus             `gorm:"foreignKey:AppointmentStatusID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	User                          *User                          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	UserRole                      *Role                          `gorm:"foreignKey:UserRoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (StateChange) TableName() string {
	return "inspection_states"
}

// BeforeUpdate blocks every UPDATE issued through the model. Soft delete goes
// through the delete callbacks and is not affected.
func (s *StateChange) BeforeUpdate(tx *gorm.DB) error {
	return ErrStateChangeImmutable
}

func (s *StateChange) IsDeleted() bool {
	return s != nil && s.DeletedAt.Valid
}
