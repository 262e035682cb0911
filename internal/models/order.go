package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "pickedUp"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderItem represents one line item of an order
type OrderItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// LineTotal returns price * quantity for the item
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order scoped to one canteen
type Order struct {
	ID             string          `json:"id"`
	CanteenID      string          `json:"canteen_id"`
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  string          `json:"customer_phone"`
	CustomerDept   string          `json:"customer_department,omitempty"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Valid reports whether s is one of the known status values
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusPickedUp, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Next returns the single permissible successor status. Completed and
// cancelled orders are terminal and have no successor, as does any
// unknown status value.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case StatusPending:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusReady, true
	case StatusReady:
		return StatusPickedUp, true
	case StatusPickedUp:
		return StatusCompleted, true
	default:
		return "", false
	}
}

// ActionLabel returns the operator-facing verb for advancing out of s.
// Terminal states have no action and return the empty string.
func (s OrderStatus) ActionLabel() string {
	switch s {
	case StatusPending:
		return "Accept Order"
	case StatusPreparing:
		return "Mark as Ready"
	case StatusReady:
		return "Rider Picked Up"
	case StatusPickedUp:
		return "Mark as Delivered"
	default:
		return ""
	}
}

// Color returns the canonical display color for a status. Every screen
// uses this single table.
func (s OrderStatus) Color() string {
	switch s {
	case StatusPending:
		return "#f59e0b"
	case StatusPreparing, StatusReady, StatusPickedUp:
		return "#3b82f6"
	case StatusCompleted:
		return "#059669"
	default:
		return "#6b7280"
	}
}

// IsActive reports whether an order with this status belongs on the
// live operations board.
func (s OrderStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusPickedUp:
		return true
	}
	return false
}
