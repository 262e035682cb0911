package models

import "testing"

func TestOrderStatus_Next(t *testing.T) {
	tests := []struct {
		current OrderStatus
		want    OrderStatus
		ok      bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusPickedUp, true},
		{StatusPickedUp, StatusCompleted, true},
		{StatusCompleted, "", false},
		{StatusCancelled, "", false},
		{OrderStatus("bogus"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			got, ok := tt.current.Next()
			if ok != tt.ok {
				t.Fatalf("Next() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Next() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrderStatus_ActionLabel(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   string
	}{
		{StatusPending, "Accept Order"},
		{StatusPreparing, "Mark as Ready"},
		{StatusReady, "Rider Picked Up"},
		{StatusPickedUp, "Mark as Delivered"},
		{StatusCompleted, ""},
		{StatusCancelled, ""},
	}

	for _, tt := range tests {
		if got := tt.status.ActionLabel(); got != tt.want {
			t.Errorf("ActionLabel(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestOrderStatus_IsActive(t *testing.T) {
	active := []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusPickedUp}
	for _, s := range active {
		if !s.IsActive() {
			t.Errorf("IsActive(%s) = false, want true", s)
		}
	}

	inactive := []OrderStatus{StatusCompleted, StatusCancelled, OrderStatus("bogus")}
	for _, s := range inactive {
		if s.IsActive() {
			t.Errorf("IsActive(%s) = true, want false", s)
		}
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusPickedUp, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("Valid(%s) = false, want true", s)
		}
	}
	if OrderStatus("delivered").Valid() {
		t.Error("Valid(delivered) = true, want false")
	}
}

func TestReview_Validate(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		r := Review{Rating: rating}
		if err := r.Validate(); err != nil {
			t.Errorf("Validate() rating %d returned error: %v", rating, err)
		}
	}

	for _, rating := range []int{0, 6, -1} {
		r := Review{Rating: rating}
		if err := r.Validate(); err == nil {
			t.Errorf("Validate() rating %d expected error", rating)
		}
	}
}
