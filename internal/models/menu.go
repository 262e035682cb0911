package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem represents a sellable item definition in a canteen's menu
type MenuItem struct {
	ID          string          `json:"id"`
	CanteenID   string          `json:"canteen_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks the basic field constraints of a menu item
func (m *MenuItem) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(m.Name) > 100 {
		return fmt.Errorf("name must not exceed 100 characters")
	}
	if m.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if m.Category == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}

// Canteen represents a tenant scope; one operator owns one canteen and
// every order, review and menu item is scoped to exactly one canteen id
type Canteen struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
