package entity

// Order status constants
const (
	OrderStatusOpen     = "open"
	OrderStatusAssigned = "assigned"
)

// Notification type constants
const (
	NotificationTypeInfo       = "info"
	NotificationTypeAssignment = "assignment"
	NotificationTypeOrder      = "order"
)

// RelatedTypeSalesOrder marks notifications that point at a sales order
const RelatedTypeSalesOrder = "sales_order"
