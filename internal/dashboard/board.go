package dashboard

import (
	"sort"
	"strings"

	"canteen-dashboard/internal/models"
)

// LiveBoard returns the orders still in active fulfillment, most recent
// creation first. Completed and cancelled orders never appear. The board
// is rebuilt from scratch on every snapshot so it cannot drift from
// stored truth.
func LiveBoard(orders []models.Order) []models.Order {
	board := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status.IsActive() {
			board = append(board, o)
		}
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].CreatedAt.After(board[j].CreatedAt)
	})

	return board
}

// FilterOrders narrows an order snapshot for the history view. status
// filters on an exact status ("" or "all" keeps everything); query
// matches case-insensitively against customer name, or as a substring of
// the phone number.
func FilterOrders(orders []models.Order, status, query string) []models.Order {
	filtered := make([]models.Order, 0, len(orders))
	query = strings.ToLower(strings.TrimSpace(query))

	for _, o := range orders {
		if status != "" && status != "all" && string(o.Status) != status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(o.CustomerName), query) &&
			!strings.Contains(o.CustomerPhone, query) {
			continue
		}
		filtered = append(filtered, o)
	}

	return filtered
}
