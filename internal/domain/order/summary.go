package order

import "time"

// DateLayout is the wire format of order dates
const DateLayout = "2006-01-02"

// DefaultDueIn is how far out the due date lands when the form has none
const DefaultDueIn = 30 * 24 * time.Hour

// Summary is the request body that creates (or updates) the order record
type Summary struct {
	PONumber    string  `json:"poNumber"`
	ClientName  string  `json:"clientName" validate:"required"`
	ProjectName string  `json:"projectName"`
	ProjectCode string  `json:"projectCode"`
	OrderDate   string  `json:"orderDate" validate:"required,datetime=2006-01-02"`
	DueDate     string  `json:"dueDate" validate:"required,datetime=2006-01-02"`
	TotalAmount float64 `json:"totalAmount" validate:"gte=0"`
	Priority    string  `json:"priority"`
	CreatedBy   string  `json:"createdBy"`
}

// BuildSummary derives the order record from the form. The order date falls
// back to the PO date and then to today; the due date falls back to the
// estimated end date and then to DefaultDueIn from now.
func BuildSummary(fd FormData, createdBy string, now time.Time) Summary {
	orderDate := firstNonEmpty(fd.SalesOrder.OrderDate, fd.ClientPO.PODate, now.Format(DateLayout))
	dueDate := firstNonEmpty(fd.SalesOrder.EstimatedEndDate, now.Add(DefaultDueIn).Format(DateLayout))

	return Summary{
		PONumber:    fd.ClientPO.PONumber,
		ClientName:  fd.ClientPO.ClientName,
		ProjectName: fd.ClientPO.ProjectName,
		ProjectCode: firstNonEmpty(fd.SalesOrder.ProjectCode, fd.ClientPO.ProjectCode),
		OrderDate:   orderDate,
		DueDate:     dueDate,
		TotalAmount: fd.SalesOrder.TotalAmount,
		Priority:    fd.SalesOrder.ProjectPriority,
		CreatedBy:   createdBy,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
