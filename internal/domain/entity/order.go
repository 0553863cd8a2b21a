package entity

import (
	"encoding/json"
	"time"
)

// SalesOrder is the committed order record created at finalization
type SalesOrder struct {
	ID          int64      `json:"id"`
	PONumber    string     `json:"poNumber"`
	ClientName  string     `json:"clientName"`
	ProjectName string     `json:"projectName"`
	ProjectCode string     `json:"projectCode"`
	OrderDate   string     `json:"orderDate"`
	DueDate     string     `json:"dueDate"`
	TotalAmount float64    `json:"totalAmount"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"createdBy"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	AssignedAt  *time.Time `json:"assignedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// StepRecord is the persisted payload of one wizard step (or step-2 tab) of an order
type StepRecord struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	StepKey   string          `json:"stepKey"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
