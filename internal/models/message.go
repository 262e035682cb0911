package models

import (
	"fmt"
	"time"
)

// OrderChangedMessage signals that an order of a canteen changed. The
// payload is informational only: subscribers must re-fetch the full
// snapshot rather than patch state from it.
type OrderChangedMessage struct {
	CanteenID string      `json:"canteen_id"`
	OrderID   string      `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewOrderChangedMessage creates a change notification for an order
// status transition
func NewOrderChangedMessage(canteenID, orderID string, oldStatus, newStatus OrderStatus) *OrderChangedMessage {
	return &OrderChangedMessage{
		CanteenID: canteenID,
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Timestamp: time.Now().UTC(),
	}
}

// ChangeRoutingKey returns the routing key carrying change notifications
// for one canteen
func ChangeRoutingKey(canteenID string) string {
	return fmt.Sprintf("canteen.%s", canteenID)
}
