package models

import (
	"time"

	"gorm.io/gorm"
)

// InspectionOrderStatus is the customer-facing order status (ids 1..5).
type InspectionOrderStatus struct {
	ID        uint           `gorm:"column:id;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;type:varchar(64);not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (InspectionOrderStatus) TableName() string { return "inspection_order_statuses" }

// InspectionOrderStatusInternal is the operational state used by the back office.
type InspectionOrderStatusInternal struct {
	ID        uint           `gorm:"column:id;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;type:varchar(64);not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (InspectionOrderStatusInternal) TableName() string { return "inspection_order_status_internals" }

type AppointmentStatus struct {
	ID        uint           `gorm:"column:id;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;type:varchar(64);not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (AppointmentStatus) TableName() string { return "appointment_statuses" }

type Role struct {
	ID        uint           `gorm:"column:id;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Role) TableName() string { return "roles" }

type User struct {
	ID        uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"column:name;type:varchar(128)" json:"name"`
	Email     string         `gorm:"column:email;type:varchar(255);index" json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (User) TableName() string { return "users" }
