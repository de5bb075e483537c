package models

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTableNames(t *testing.T) {
	require.Equal(t, "inspection_states", StateChange{}.TableName())
	require.Equal(t, "api_tokens", APIToken{}.TableName())
	require.Equal(t, "webhook_log", WebhookLog{}.TableName())
	require.Equal(t, "inspection_order_statuses", InspectionOrderStatus{}.TableName())
}

func TestDecisionStateAndChangeType_Valid(t *testing.T) {
	for _, s := range DecisionStates {
		require.True(t, s.Valid())
	}
	require.False(t, DecisionState("approved").Valid())
	require.False(t, DecisionState("").Valid())

	for _, ct := range ChangeTypes {
		require.True(t, ct.Valid())
	}
	require.False(t, ChangeType("manual").Valid())
}

func TestAPIToken_ActiveAndAllowsIP(t *testing.T) {
	now := time.Now()
	tok := &APIToken{}
	require.True(t, tok.Active(now))
	require.True(t, tok.AllowsIP("10.0.0.1"))

	tok.ExpiresAt = lo.ToPtr(now.Add(-time.Minute))
	require.False(t, tok.Active(now))

	tok.ExpiresAt = lo.ToPtr(now.Add(time.Minute))
	tok.RevokedAt = lo.ToPtr(now)
	require.False(t, tok.Active(now))

	tok.AllowedIPs = []string{"203.0.113.7", "10.1.0.0/16"}
	require.True(t, tok.AllowsIP("203.0.113.7"))
	require.True(t, tok.AllowsIP("10.1.2.3"))
	require.False(t, tok.AllowsIP("10.2.0.1"))
	require.False(t, tok.AllowsIP("not-an-ip"))
}

func TestStateChange_RejectsUpdates(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(All()...))
	require.NoError(t, db.Create(&InspectionOrder{ID: 1}).Error)
	require.NoError(t, db.Create(&Appointment{ID: 1, InspectionOrderID: 1}).Error)
	require.NoError(t, db.Create(&InspectionOrderStatus{ID: 1, Name: "scheduled"}).Error)
	require.NoError(t, db.Create(&InspectionOrderStatusInternal{ID: 1, Name: "pending"}).Error)
	require.NoError(t, db.Create(&AppointmentStatus{ID: 1, Name: "confirmed"}).Error)
	require.NoError(t, db.Create(&User{ID: 1, Name: "inspector"}).Error)
	require.NoError(t, db.Create(&Role{ID: 1, Name: "inspector"}).Error)

	row := &StateChange{
		InspectionOrderID: 1, AppointmentID: 1, InspectionOrderStatusID: 1,
		InspectionOrderStatusInternalID: 1, AppointmentStatusID: 1, UserID: 1, UserRoleID: 1,
		UserDecisionState: DecisionStateCompleted, StateChangeType: ChangeTypeUserDecision,
	}
	require.NoError(t, db.Create(row).Error)

	err = db.Model(row).Update("user_decision_state", DecisionStateFailed).Error
	require.ErrorIs(t, err, ErrStateChangeImmutable)

	row.UserDecisionReason = lo.ToPtr("edited")
	require.ErrorIs(t, db.Save(row).Error, ErrStateChangeImmutable)

	require.NoError(t, db.Delete(&StateChange{}, row.ID).Error)

	var reloaded StateChange
	require.NoError(t, db.Unscoped().First(&reloaded, row.ID).Error)
	require.True(t, reloaded.IsDeleted())
	require.Equal(t, DecisionStateCompleted, reloaded.UserDecisionState)
	require.Nil(t, reloaded.UserDecisionReason)
}
