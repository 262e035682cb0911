package database

// Canteen queries
const (
	ResolveCanteenForOwnerSQL = `
		SELECT id FROM canteens WHERE owner_id = $1`
)

// Order queries
const (
	GetOrdersByCanteenSQL = `
		SELECT id, canteen_id, customer_name, customer_phone,
			   COALESCE(customer_department, ''), items, total_amount::text,
			   status, created_at, updated_at
		FROM orders
		WHERE canteen_id = $1
		ORDER BY created_at DESC`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	GetOrderCanteenSQL = `
		SELECT canteen_id, status FROM orders WHERE id = $1`
)

// Review queries
const (
	GetReviewsByCanteenSQL = `
		SELECT id, canteen_id, customer_name, rating, COALESCE(comment, ''), created_at
		FROM reviews
		WHERE canteen_id = $1
		ORDER BY created_at DESC`
)

// Menu item queries
const (
	GetMenuItemsByCanteenSQL = `
		SELECT id, canteen_id, name, COALESCE(description, ''), price::text,
			   category, COALESCE(image_url, ''), is_available, created_at, updated_at
		FROM menu_items
		WHERE canteen_id = $1
		ORDER BY created_at DESC`

	InsertMenuItemSQL = `
		INSERT INTO menu_items (id, canteen_id, name, description, price, category, image_url, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	UpdateMenuItemSQL = `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4, image_url = $5, updated_at = NOW()
		WHERE id = $6 AND canteen_id = $7`

	SetMenuItemAvailabilitySQL = `
		UPDATE menu_items SET is_available = $1, updated_at = NOW()
		WHERE id = $2 AND canteen_id = $3`

	DeleteMenuItemSQL = `
		DELETE FROM menu_items WHERE id = $1 AND canteen_id = $2`
)
