package apitoken

import (
	"context"
	"errors"
	"fmt"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenRevoked = fmt.Errorf("%w: revoked", ErrInvalidToken)
	ErrIPNotAllowed = fmt.Errorf("%w: client ip not allowed", ErrInvalidToken)

	ErrInvalidIssueRequest = errors.New("invalid api token request")
	ErrTokenNotFound       = errors.New("api token not found")
)

// Reasons reported by AuthError.
const (
	ReasonMissingOrMalformedHeader = "missing_or_malformed_header"
	ReasonInvalidToken             = "invalid_token"
)

// AuthError is returned by the gate when a request cannot be authenticated.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message is the text sent back to the caller. It never includes the cause.
func (e *AuthError) Message() string {
	if e.Reason == ReasonMissingOrMalformedHeader {
		return "Authorization header missing or malformed"
	}
	return "Invalid API token"
}

// Identity describes the caller behind an accepted token.
type Identity struct {
	Source  string `json:"source"`
	TokenID string `json:"token_id,omitempty"`
	Name    string `json:"name,omitempty"`
}

// TokenValidator decides whether a bearer token is acceptable for clientIP.
// Rejections wrap ErrInvalidToken.
type TokenValidator interface {
	Validate(ctx context.Context, token string, clientIP string) (*Identity, error)
}

// FirstMatch tries each validator in order and accepts the first identity.
// When all reject, the first rejection is returned.
type FirstMatch []TokenValidator

func (m FirstMatch) Validate(ctx context.Context, token string, clientIP string) (*Identity, error) {
	var firstErr error
	for _, v := range m {
		id, err := v.Validate(ctx, token, clientIP)
		if err == nil {
			return id, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = ErrInvalidToken
	}
	return nil, firstErr
}

// TokenRegistry manages registry tokens.
type TokenRegistry interface {
	Issue(ctx context.Context, req *IssueRequest) (string, *models.APIToken, error)
	Revoke(ctx context.Context, id string) error
}

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromCtx returns the identity stored by WithIdentity, if any.
func IdentityFromCtx(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(*Identity)
	return id, ok && id != nil
}
