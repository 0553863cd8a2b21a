package entity

import "time"

// VendorQuote is one vendor's offer for a material request.
// At most one quote per material request is Selected.
type VendorQuote struct {
	ID                int64     `json:"id"`
	MaterialRequestID int64     `json:"materialRequestId"`
	VendorID          int64     `json:"vendorId"`
	QuotedPrice       float64   `json:"quotedPrice"`
	DeliveryDays      int       `json:"deliveryDays"`
	Notes             string    `json:"notes"`
	Selected          bool      `json:"selected"`
	CreatedAt         time.Time `json:"createdAt"`
}
