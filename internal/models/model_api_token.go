package models

import (
	"net"
	"time"

	"gorm.io/datatypes"
)

// APIToken is a registry entry for machine-to-machine callers. Only the
// sha256 of the bearer token is stored.
type APIToken struct {
	ID         string                      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name       string                      `gorm:"column:name;type:varchar(128);not null" json:"name"`
	TokenHash  string                      `gorm:"column:token_hash;type:varchar(64);not null;uniqueIndex" json:"-"`
	Source     string                      `gorm:"column:source;type:varchar(64);not null" json:"source"`
	AllowedIPs datatypes.JSONSlice[string] `gorm:"column:allowed_ips;type:jsonb" json:"allowed_ips"`
	ExpiresAt  *time.Time                  `gorm:"column:expires_at" json:"expires_at"`
	RevokedAt  *time.Time                  `gorm:"column:revoked_at" json:"revoked_at"`
	LastUsedAt *time.Time                  `gorm:"column:last_used_at" json:"last_used_at"`
	UsageCount int64                       `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

func (APIToken) TableName() string { return "api_tokens" }

// Active reports whether the token is neither revoked nor expired at now.
func (t *APIToken) Active(now time.Time) bool {
	if t == nil || t.RevokedAt != nil {
		return false
	}
	return t.ExpiresAt == nil || now.Before(*t.ExpiresAt)
}

// AllowsIP matches clientIP against AllowedIPs, which may hold plain
// addresses or CIDR blocks. An empty list allows every client.
func (t *APIToken) AllowsIP(clientIP string) bool {
	if len(t.AllowedIPs) == 0 {
		return true
	}
	ip := net.ParseIP(clientIP)
	for _, allowed := range t.AllowedIPs {
		if allowed == clientIP {
			return true
		}
		if _, block, err := net.ParseCIDR(allowed); err == nil && ip != nil && block.Contains(ip) {
			return true
		}
	}
	return false
}
