// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
)

// OpenSQLite returns a migrated in-memory database private to t.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection serialises the async writers against open transactions.
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Refs are the ids of one seeded set of referenced rows.
type Refs struct {
	OrderID               uint
	AppointmentID         uint
	OrderStatusID         uint
	OrderStatusInternalID uint
	AppointmentStatusID   uint
	UserID                uint
	RoleID                uint
}

// SeedRefs inserts one row into every referenced table, all with the given id.
func SeedRefs(t testing.TB, db *gorm.DB, id uint) Refs {
	t.Helper()

	rows := []any{
		&models.InspectionOrder{ID: id, Plate: fmt.Sprintf("ABC%03d", id)},
		&models.Appointment{ID: id, InspectionOrderID: id},
		&models.InspectionOrderStatus{ID: id, Name: fmt.Sprintf("status-%d", id)},
		&models.InspectionOrderStatusInternal{ID: id, Name: fmt.Sprintf("internal-%d", id)},
		&models.AppointmentStatus{ID: id, Name: fmt.Sprintf("appointment-%d", id)},
		&models.User{ID: id, Name: fmt.Sprintf("user-%d", id), Email: fmt.Sprintf("user%d@example.com", id)},
		&models.Role{ID: id, Name: fmt.Sprintf("role-%d", id)},
	}
	for _, r := range rows {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
	return Refs{
		OrderID:               id,
		AppointmentID:         id,
		OrderStatusID:         id,
		OrderStatusInternalID: id,
		AppointmentStatusID:   id,
		UserID:                id,
		RoleID:                id,
	}
}
