package apitoken

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/tool"
)

// RegistryTokenValidator checks tokens against the api_tokens table.
type RegistryTokenValidator struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

func NewRegistryTokenValidator(db *gorm.DB, log *zap.SugaredLogger) *RegistryTokenValidator {
	return &RegistryTokenValidator{db: db, log: log, now: time.Now}
}

func (v *RegistryTokenValidator) Validate(ctx context.Context, token string, clientIP string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var rec models.APIToken
	err := v.db.WithContext(ctx).Where("token_hash = ?", tool.HashAPIToken(token)).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("lookup api token: %w", err)
	}

	now := v.now()
	switch {
	case rec.RevokedAt != nil:
		return nil, ErrTokenRevoked
	case !rec.Active(now):
		return nil, ErrTokenExpired
	case !rec.AllowsIP(clientIP):
		return nil, ErrIPNotAllowed
	}

	// Usage tracking must not turn an accepted token into a rejection.
	if err := v.db.WithContext(ctx).Model(&models.APIToken{}).Where("id = ?", rec.ID).
		UpdateColumns(map[string]interface{}{
			"last_used_at": now,
			"usage_count":  gorm.Expr("usage_count + ?", 1),
		}).Error; err != nil {
		logctx.FromCtx(ctx, v.log).Warnw("api_token_usage_update_failed", "token_id", rec.ID, "err", err)
	}
	return &Identity{Source: rec.Source, TokenID: rec.ID, Name: rec.Name}, nil
}

type IssueRequest struct {
	Name       string
	Source     string
	AllowedIPs []string
	// TTL of zero issues a token without expiry.
	TTL time.Duration
}

// Issue creates a registry entry and returns the plaintext token. The
// plaintext is not stored and cannot be recovered later.
func (v *RegistryTokenValidator) Issue(ctx context.Context, req *IssueRequest) (string, *models.APIToken, error) {
	if req == nil || req.Name == "" || req.Source == "" {
		return "", nil, fmt.Errorf("%w: name and source are required", ErrInvalidIssueRequest)
	}
	if req.TTL < 0 {
		return "", nil, fmt.Errorf("%w: ttl must not be negative", ErrInvalidIssueRequest)
	}
	for _, ip := range req.AllowedIPs {
		if net.ParseIP(ip) == nil {
			if _, _, err := net.ParseCIDR(ip); err != nil {
				return "", nil, fmt.Errorf("%w: %q is neither an ip nor a cidr block", ErrInvalidIssueRequest, ip)
			}
		}
	}
	plain, err := tool.GenerateAPIToken()
	if err != nil {
		return "", nil, fmt.Errorf("generate api token: %w", err)
	}
	rec := &models.APIToken{
		ID:         tool.GenerateUUIDV7(),
		Name:       req.Name,
		TokenHash:  tool.HashAPIToken(plain),
		Source:     req.Source,
		AllowedIPs: datatypes.JSONSlice[string](req.AllowedIPs),
	}
	if req.TTL > 0 {
		exp := v.now().Add(req.TTL)
		rec.ExpiresAt = &exp
	}
	if err := v.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", nil, fmt.Errorf("create api token: %w", err)
	}
	logctx.FromCtx(ctx, v.log).Infow("api_token_issued", "token_id", rec.ID, "name", rec.Name, "source", rec.Source)
	return plain, rec, nil
}

// Revoke marks the token unusable. Revoking twice keeps the first timestamp.
func (v *RegistryTokenValidator) Revoke(ctx context.Context, id string) error {
	res := v.db.WithContext(ctx).Model(&models.APIToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", v.now())
	if res.Error != nil {
		return fmt.Errorf("revoke api token: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		logctx.FromCtx(ctx, v.log).Infow("api_token_revoked", "token_id", id)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := v.db.WithContext(ctx).Model(&models.APIToken{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("revoke api token: %w", err)
		}
		if n == 0 {
			return ErrTokenNotFound
		}
	}
	return nil
}
