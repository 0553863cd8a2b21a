package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/event"
)

// ErrClosed is returned once Close has been called
var ErrClosed = errors.New("dispatcher is closed")

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name        string
	EventType   event.Type
	Handler     Handler
	Description string
}

// Payload keys shared by the service that emits events and the handlers below
const (
	PayloadUserID     = "user_id"
	PayloadMessage    = "message"
	PayloadAssignee   = "assigned_to"
	PayloadPONumber   = "po_number"
	PayloadClientName = "client_name"
)

// NewChatDeliveryHandler pushes notification.created events to the
// recipient's chat. Events without a recipient are skipped.
func NewChatDeliveryHandler(sender port.MessageSender) Handler {
	return func(ctx context.Context, evt *event.Event) error {
		userID := evt.GetPayloadString(PayloadUserID)
		if userID == "" {
			return nil
		}
		return sender.SendText(ctx, userID, evt.GetPayloadString(PayloadMessage))
	}
}

// NewAssignmentHandler tells the assignee of an order.assigned event about the order
func NewAssignmentHandler(sender port.MessageSender) Handler {
	return func(ctx context.Context, evt *event.Event) error {
		assignee := evt.GetPayloadString(PayloadAssignee)
		if assignee == "" {
			return nil
		}
		text := fmt.Sprintf("Sales order #%d (%s, %s) has been assigned to you.",
			evt.OrderID,
			evt.GetPayloadString(PayloadPONumber),
			evt.GetPayloadString(PayloadClientName),
		)
		return sender.SendText(ctx, assignee, text)
	}
}
