package dashboard

import (
	"testing"
	"time"

	"canteen-dashboard/internal/models"
)

func TestLiveBoard_FiltersTerminalStatuses(t *testing.T) {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	orders := []models.Order{
		{ID: "a", Status: models.StatusPending, CreatedAt: base.Add(1 * time.Minute)},
		{ID: "b", Status: models.StatusCompleted, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "c", Status: models.StatusReady, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "d", Status: models.StatusCancelled, CreatedAt: base.Add(4 * time.Minute)},
		{ID: "e", Status: models.StatusPreparing, CreatedAt: base.Add(5 * time.Minute)},
	}

	board := LiveBoard(orders)

	wantIDs := []string{"e", "c", "a"}
	if len(board) != len(wantIDs) {
		t.Fatalf("board has %d orders, want %d", len(board), len(wantIDs))
	}
	for i, id := range wantIDs {
		if board[i].ID != id {
			t.Errorf("board[%d].ID = %q, want %q", i, board[i].ID, id)
		}
	}
}

func TestLiveBoard_IncludesPickedUp(t *testing.T) {
	orders := []models.Order{
		{ID: "a", Status: models.StatusPickedUp, CreatedAt: time.Now()},
	}
	if board := LiveBoard(orders); len(board) != 1 {
		t.Fatalf("pickedUp order missing from board, got %d orders", len(board))
	}
}

func TestLiveBoard_Empty(t *testing.T) {
	if board := LiveBoard(nil); len(board) != 0 {
		t.Fatalf("empty snapshot produced %d board entries", len(board))
	}
}

func TestFilterOrders(t *testing.T) {
	orders := []models.Order{
		{ID: "a", CustomerName: "Alice Tan", CustomerPhone: "0812345678", Status: models.StatusCompleted},
		{ID: "b", CustomerName: "Bob", CustomerPhone: "0899999999", Status: models.StatusPending},
		{ID: "c", CustomerName: "alicia", CustomerPhone: "0800000000", Status: models.StatusCancelled},
	}

	tests := []struct {
		name    string
		status  string
		query   string
		wantIDs []string
	}{
		{"no filter", "", "", []string{"a", "b", "c"}},
		{"all keyword", "all", "", []string{"a", "b", "c"}},
		{"by status", "completed", "", []string{"a"}},
		{"name case-insensitive", "", "ALIC", []string{"a", "c"}},
		{"phone substring", "", "9999", []string{"b"}},
		{"status and query", "cancelled", "alic", []string{"c"}},
		{"no match", "pending", "alice", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterOrders(orders, tt.status, tt.query)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d orders, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("result[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}
