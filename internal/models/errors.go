package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (wrapped) when no row matches the requested id.
var ErrNotFound = errors.New("record not found")

// ValidationError reports input rejected before it reaches the database.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func NotFound(resource string, id uint) error {
	return fmt.Errorf("%s %d: %w", resource, id, ErrNotFound)
}
