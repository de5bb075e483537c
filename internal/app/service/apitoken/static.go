package apitoken

import (
	"context"
	"crypto/subtle"

	"github.com/VML-Technologies/VML.Perito-sub005/pkg/tool"
)

const DefaultStaticSource = "external_api"

// StaticTokenValidator accepts a single shared secret. Both sides are hashed
// before the constant-time compare so the secret length does not leak.
type StaticTokenValidator struct {
	secretHash string
	source     string
}

func NewStaticTokenValidator(secret, source string) *StaticTokenValidator {
	if source == "" {
		source = DefaultStaticSource
	}
	v := &StaticTokenValidator{source: source}
	if secret != "" {
		v.secretHash = tool.HashAPIToken(secret)
	}
	return v
}

func (v *StaticTokenValidator) Validate(_ context.Context, token string, _ string) (*Identity, error) {
	// An unconfigured secret must not match an empty token.
	if v.secretHash == "" || token == "" {
		return nil, ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(tool.HashAPIToken(token)), []byte(v.secretHash)) != 1 {
		return nil, ErrInvalidToken
	}
	return &Identity{Source: v.source}, nil
}
