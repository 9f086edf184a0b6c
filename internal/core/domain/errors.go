package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPropertyNotFound        = errors.New("property not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrPropertyAlreadyExists   = errors.New("property already exists")
)

// ValidationError - значение не прошло приведение типа или проверку границ.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string, args ...interface{}) *ValidationError {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %s", e.Field, e.Reason)
}

// AsValidationError достает ValidationError из цепочки ошибок.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
