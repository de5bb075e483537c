package statechange

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrDomain     = errors.New("value outside allowed domain")
	ErrNotFound   = errors.New("state change not found")
)

// ValidationError reports a required field that is missing or a reference
// that does not resolve to a live row.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DomainError reports an enumerated value outside its allowed set.
type DomainError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s=%q, allowed: %s", ErrDomain.Error(), e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

func missing(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

func unresolved(field string, id uint) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("references unknown id %d", id)}
}
