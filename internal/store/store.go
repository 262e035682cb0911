package store

import (
	"context"
	"errors"
	"time"

	"canteen-dashboard/internal/models"
)

var (
	// ErrNoCanteen is returned when an owner has no canteen. Callers
	// treat this as an empty-state condition, not a failure.
	ErrNoCanteen = errors.New("no canteen resolved for owner")

	// ErrConflict is returned when a conditional status update matched
	// no row: the order moved on (or never existed) since the caller
	// last looked.
	ErrConflict = errors.New("order status conflict")

	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
)

// Store is the data-access surface of the managed backend. All reads are
// point-in-time snapshots scoped to one canteen; the single write is a
// conditional per-row status update.
type Store interface {
	// ResolveCanteenForOwner maps an authenticated owner to their
	// canteen id, once per session. Returns ErrNoCanteen when the owner
	// has none.
	ResolveCanteenForOwner(ctx context.Context, ownerID string) (string, error)

	// FetchOrders returns the full order snapshot for a canteen,
	// ordered by creation time descending. Items are normalized.
	FetchOrders(ctx context.Context, canteenID string) ([]models.Order, error)

	// FetchReviews returns the full review snapshot for a canteen,
	// ordered by creation time descending.
	FetchReviews(ctx context.Context, canteenID string) ([]models.Review, error)

	// UpdateOrderStatus performs the guarded single-row transition
	// fromStatus -> newStatus. Returns ErrConflict when the order is no
	// longer in fromStatus.
	UpdateOrderStatus(ctx context.Context, orderID string, fromStatus, newStatus models.OrderStatus, updatedAt time.Time) error

	// Menu item CRUD, scoped by canteen.
	ListMenuItems(ctx context.Context, canteenID string) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	SetMenuItemAvailability(ctx context.Context, canteenID, itemID string, available bool) error
	DeleteMenuItem(ctx context.Context, canteenID, itemID string) error
}
