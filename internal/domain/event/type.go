package event

// Type identifies the type of domain event
type Type string

const (
	TypeOrderCreated        Type = "order.created"
	TypeOrderAssigned       Type = "order.assigned"
	TypeNotificationCreated Type = "notification.created"
	TypeVendorSelected      Type = "vendor.selected"
)

func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeOrderCreated,
		TypeOrderAssigned,
		TypeNotificationCreated,
		TypeVendorSelected:
		return true
	default:
		return false
	}
}
