package orderapi

import (
	"fmt"
	"net/http"

	"github.com/garyjia/order-intake/internal/application/port"
)

// APIError is a non-2xx response. Message is the first human-readable
// message the service returned.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func newAPIError(status int, body envelope) *APIError {
	msg := body.Error
	if msg == "" && len(body.Details) > 0 {
		msg = body.Details[0]
	}
	return &APIError{StatusCode: status, Message: msg, Details: body.Details}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order service returned status %d", e.StatusCode)
	}
	return e.Message
}

// Is makes a 404 match port.ErrNotFound
func (e *APIError) Is(target error) bool {
	return target == port.ErrNotFound && e.StatusCode == http.StatusNotFound
}
