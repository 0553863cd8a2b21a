package entity

import (
	"encoding/json"
	"time"
)

// Draft is the server-side copy of an in-progress wizard session.
// FormData is stored verbatim; every update replaces it entirely.
type Draft struct {
	ID          int64           `json:"id"`
	OwnerID     string          `json:"ownerId"`
	FormData    json.RawMessage `json:"formData"`
	CurrentStep int             `json:"currentStep"`
	PODocuments json.RawMessage `json:"poDocuments"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
