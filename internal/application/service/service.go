package service

import (
	"errors"

	"github.com/garyjia/order-intake/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var (
	ErrDraftNotFound        = errors.New("draft not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrStepNotFound         = errors.New("step not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnknownStep          = errors.New("unknown step")
)

// ValidationError carries every problem found in a request; Error reports the first
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	return e.Messages[0]
}

var validate = utils.NewValidator()

// validateStruct runs struct tags and wraps failures in ValidationError
func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return &ValidationError{Messages: utils.ValidationMessages(err)}
	}
	return nil
}
