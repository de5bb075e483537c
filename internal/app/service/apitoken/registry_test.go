package apitoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/testutil"
	cfgpkg "github.com/VML-Technologies/VML.Perito-sub005/pkg/config"
)

func newRegistry(t *testing.T) (*RegistryTokenValidator, *gorm.DB, *time.Time) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	v := NewRegistryTokenValidator(db, zap.NewNop().Sugar())
	v.now = func() time.Time { return now }
	return v, db, &now
}

func TestRegistry_IssueValidateTracksUsage(t *testing.T) {
	v, db, _ := newRegistry(t)
	ctx := context.Background()

	plain, rec, err := v.Issue(ctx, &IssueRequest{Name: "partner-a", Source: "partner_a"})
	require.NoError(t, err)
	require.Len(t, plain, 64)
	require.NotEqual(t, plain, rec.TokenHash)

	for i := 0; i < 3; i++ {
		id, err := v.Validate(ctx, plain, "198.51.100.4")
		require.NoError(t, err)
		require.Equal(t, "partner_a", id.Source)
		require.Equal(t, rec.ID, id.TokenID)
	}

	var stored models.APIToken
	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	require.EqualValues(t, 3, stored.UsageCount)
	require.NotNil(t, stored.LastUsedAt)
}

func TestRegistry_Rejections(t *testing.T) {
	v, _, now := newRegistry(t)
	ctx := context.Background()

	_, err := v.Validate(ctx, "unknown", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Validate(ctx, "", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidToken)

	expiring, _, err := v.Issue(ctx, &IssueRequest{Name: "short", Source: "s", TTL: time.Minute})
	require.NoError(t, err)
	_, err = v.Validate(ctx, expiring, "10.0.0.1")
	require.NoError(t, err)
	*now = now.Add(2 * time.Minute)
	_, err = v.Validate(ctx, expiring, "10.0.0.1")
	require.ErrorIs(t, err, ErrTokenExpired)

	fenced, _, err := v.Issue(ctx, &IssueRequest{Name: "fenced", Source: "s", AllowedIPs: []string{"10.8.0.0/16"}})
	require.NoError(t, err)
	_, err = v.Validate(ctx, fenced, "10.8.3.4")
	require.NoError(t, err)
	_, err = v.Validate(ctx, fenced, "192.0.2.10")
	require.ErrorIs(t, err, ErrIPNotAllowed)
	require.ErrorIs(t, err, ErrInvalidToken)

	revoked, rec, err := v.Issue(ctx, &IssueRequest{Name: "gone", Source: "s"})
	require.NoError(t, err)
	require.NoError(t, v.Revoke(ctx, rec.ID))
	require.NoError(t, v.Revoke(ctx, rec.ID))
	_, err = v.Validate(ctx, revoked, "10.0.0.1")
	require.ErrorIs(t, err, ErrTokenRevoked)

	require.ErrorIs(t, v.Revoke(ctx, "does-not-exist"), ErrTokenNotFound)
}

func TestRegistry_IssueRequiresNameAndSource(t *testing.T) {
	v, _, _ := newRegistry(t)
	_, _, err := v.Issue(context.Background(), &IssueRequest{Name: "x"})
	require.ErrorIs(t, err, ErrInvalidIssueRequest)
	_, _, err = v.Issue(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidIssueRequest)
	_, _, err = v.Issue(context.Background(), &IssueRequest{Name: "x", Source: "s", AllowedIPs: []string{"10.0.0.0/33"}})
	require.ErrorIs(t, err, ErrInvalidIssueRequest)
}

func TestNewValidator_SelectsByMode(t *testing.T) {
	log := zap.NewNop().Sugar()
	cfg := &cfgpkg.Config{APIToken: cfgpkg.APITokenConfig{Mode: cfgpkg.TokenModeStatic, Secret: "x"}}

	v, err := NewValidator(cfg, nil, log)
	require.NoError(t, err)
	require.IsType(t, &StaticTokenValidator{}, v)

	require.Nil(t, NewRegistry(cfg, nil, log))

	db := testutil.OpenSQLite(t)
	cfg.APIToken.Mode = cfgpkg.TokenModeRegistry
	cfg.APIToken.Secret = ""
	v, err = NewValidator(cfg, db, log)
	require.NoError(t, err)
	require.IsType(t, &RegistryTokenValidator{}, v)
	require.NotNil(t, NewRegistry(cfg, db, log))

	cfg.APIToken.Mode = "ldap"
	_, err = NewValidator(cfg, nil, log)
	require.Error(t, err)
}

func TestNewValidator_RegistryKeepsBootstrapSecret(t *testing.T) {
	log := zap.NewNop().Sugar()
	db := testutil.OpenSQLite(t)
	cfg := &cfgpkg.Config{APIToken: cfgpkg.APITokenConfig{Mode: cfgpkg.TokenModeRegistry, Secret: "bootstrap", Source: "ops"}}
	v, err := NewValidator(cfg, db, log)
	require.NoError(t, err)
	ctx := context.Background()

	id, err := v.Validate(ctx, "bootstrap", "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "ops", id.Source)

	plain, rec, err := NewRegistry(cfg, db, log).Issue(ctx, &IssueRequest{Name: "partner", Source: "partner_b"})
	require.NoError(t, err)
	id, err = v.Validate(ctx, plain, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "partner_b", id.Source)
	require.Equal(t, rec.ID, id.TokenID)

	_, err = v.Validate(ctx, "nope", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidToken)
}
