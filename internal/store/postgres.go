package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"canteen-dashboard/internal/database"
	"canteen-dashboard/internal/logger"
	"canteen-dashboard/internal/messaging"
	"canteen-dashboard/internal/models"
)

// Postgres implements Store on the PostgreSQL backend. Successful status
// writes additionally publish a change notification for the canteen.
type Postgres struct {
	db        *database.DB
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewPostgres creates a Postgres-backed store. publisher may be nil in
// tests; change notifications are then skipped.
func NewPostgres(db *database.DB, publisher *messaging.Publisher, log *logger.Logger) *Postgres {
	return &Postgres{
		db:        db,
		publisher: publisher,
		logger:    log,
	}
}

// ResolveCanteenForOwner maps an owner id to their canteen id
func (p *Postgres) ResolveCanteenForOwner(ctx context.Context, ownerID string) (string, error) {
	var canteenID string
	err := p.db.QueryRow(ctx, database.ResolveCanteenForOwnerSQL, ownerID).Scan(&canteenID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoCanteen
		}
		return "", fmt.Errorf("failed to resolve canteen for owner: %w", err)
	}
	return canteenID, nil
}

// FetchOrders returns the normalized order snapshot for a canteen
func (p *Postgres) FetchOrders(ctx context.Context, canteenID string) ([]models.Order, error) {
	rows, err := p.db.Query(ctx, database.GetOrdersByCanteenSQL, canteenID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var (
			o        models.Order
			rawItems []byte
			amount   string
		)
		err := rows.Scan(
			&o.ID,
			&o.CanteenID,
			&o.CustomerName,
			&o.CustomerPhone,
			&o.CustomerDept,
			&rawItems,
			&amount,
			&o.Status,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}

		o.TotalAmount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse order amount %q: %w", amount, err)
		}

		o.Items = models.NormalizeItems(json.RawMessage(rawItems))
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}

	return orders, nil
}

// FetchReviews returns the review snapshot for a canteen
func (p *Postgres) FetchReviews(ctx context.Context, canteenID string) ([]models.Review, error) {
	rows, err := p.db.Query(ctx, database.GetReviewsByCanteenSQL, canteenID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		err := rows.Scan(
			&r.ID,
			&r.CanteenID,
			&r.CustomerName,
			&r.Rating,
			&r.Comment,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review rows: %w", err)
	}

	return reviews, nil
}

// UpdateOrderStatus performs the guarded single-row status transition
func (p *Postgres) UpdateOrderStatus(ctx context.Context, orderID string, fromStatus, newStatus models.OrderStatus, updatedAt time.Time) error {
	affected, err := p.db.ExecAffected(ctx, database.UpdateOrderStatusSQL,
		string(newStatus), updatedAt, orderID, string(fromStatus))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}

	p.notifyOrderChange(ctx, orderID, fromStatus, newStatus)
	return nil
}

// notifyOrderChange publishes a change notification for the order's
// canteen. Publish failures are logged, not propagated: the write
// already succeeded and other sessions recover on their next refresh.
func (p *Postgres) notifyOrderChange(ctx context.Context, orderID string, oldStatus, newStatus models.OrderStatus) {
	if p.publisher == nil {
		return
	}

	var canteenID string
	var current string
	if err := p.db.QueryRow(ctx, database.GetOrderCanteenSQL, orderID).Scan(&canteenID, &current); err != nil {
		p.logger.Error("change_publish_failed", "Failed to look up canteen for change notification", "", err, map[string]interface{}{
			"order_id": orderID,
		})
		return
	}

	msg := models.NewOrderChangedMessage(canteenID, orderID, oldStatus, newStatus)
	if err := p.publisher.PublishOrderChange(ctx, msg); err != nil {
		p.logger.Error("change_publish_failed", "Failed to publish order change", "", err, map[string]interface{}{
			"order_id":   orderID,
			"canteen_id": canteenID,
		})
	}
}

// ListMenuItems returns all menu items of a canteen
func (p *Postgres) ListMenuItems(ctx context.Context, canteenID string) ([]models.MenuItem, error) {
	rows, err := p.db.Query(ctx, database.GetMenuItemsByCanteenSQL, canteenID)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var (
			m     models.MenuItem
			price string
		)
		err := rows.Scan(
			&m.ID,
			&m.CanteenID,
			&m.Name,
			&m.Description,
			&price,
			&m.Category,
			&m.ImageURL,
			&m.IsAvailable,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item row: %w", err)
		}

		m.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse menu item price %q: %w", price, err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu item rows: %w", err)
	}

	return items, nil
}

// CreateMenuItem inserts a new menu item and fills in its id and
// timestamps
func (p *Postgres) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	err := p.db.QueryRow(ctx, database.InsertMenuItemSQL,
		item.ID, item.CanteenID, item.Name, item.Description,
		item.Price.String(), item.Category, item.ImageURL, item.IsAvailable,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}

	return nil
}

// UpdateMenuItem updates an existing menu item's editable fields
func (p *Postgres) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	affected, err := p.db.ExecAffected(ctx, database.UpdateMenuItemSQL,
		item.Name, item.Description, item.Price.String(), item.Category, item.ImageURL,
		item.ID, item.CanteenID)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMenuItemAvailability toggles whether a menu item can be ordered
func (p *Postgres) SetMenuItemAvailability(ctx context.Context, canteenID, itemID string, available bool) error {
	affected, err := p.db.ExecAffected(ctx, database.SetMenuItemAvailabilitySQL, available, itemID, canteenID)
	if err != nil {
		return fmt.Errorf("failed to set menu item availability: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMenuItem removes a menu item
func (p *Postgres) DeleteMenuItem(ctx context.Context, canteenID, itemID string) error {
	affected, err := p.db.ExecAffected(ctx, database.DeleteMenuItemSQL, itemID, canteenID)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
