package models

import (
	"time"

	"gorm.io/gorm"
)

// InspectionOrder is a vehicle inspection case. It is owned by the order
// management side of the platform; this service only references it.
type InspectionOrder struct {
	ID        uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Plate     string         `gorm:"column:plate;type:varchar(16);index" json:"plate"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (InspectionOrder) TableName() string { return "inspection_orders" }

// Appointment is a scheduled inspection slot for an order.
type Appointment struct {
	ID                uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InspectionOrderID uint           `gorm:"column:inspection_order_id;not null;index" json:"inspection_order_id"`
	ScheduledAt       *time.Time     `gorm:"column:scheduled_at" json:"scheduled_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Appointment) TableName() string { return "appointments" }
