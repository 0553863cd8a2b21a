package entity

import "time"

// Notification is an in-app message addressed to one user
type Notification struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	RelatedID   *int64    `json:"relatedId,omitempty"`
	RelatedType string    `json:"relatedType,omitempty"`
	ReadStatus  bool      `json:"readStatus"`
	CreatedAt   time.Time `json:"createdAt"`
}
