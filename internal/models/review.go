package models

import (
	"fmt"
	"time"
)

// Review represents customer feedback for a canteen. Reviews are
// immutable once created.
type Review struct {
	ID           string    `json:"id"`
	CanteenID    string    `json:"canteen_id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the rating invariant
func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", r.Rating)
	}
	return nil
}
