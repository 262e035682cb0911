package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"canteen-dashboard/internal/logger"
	"canteen-dashboard/internal/models"
	"canteen-dashboard/internal/store"
)

var (
	// ErrUnknownOrder is returned when an advance targets an order not
	// present in the current snapshot
	ErrUnknownOrder = errors.New("order not in current snapshot")

	// ErrInvalidTransition is returned when the requested status is not
	// the single permissible successor of the order's current status
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Snapshot is one consistent view of a canteen's data together with
// everything derived from it. All fields are recomputed as a unit; no
// consumer ever sees a board from one fetch and stats from another.
type Snapshot struct {
	Orders      []models.Order  `json:"orders"`
	LiveOrders  []models.Order  `json:"live_orders"`
	Reviews     []models.Review `json:"reviews"`
	Stats       DashboardStats  `json:"stats"`
	ReviewStats ReviewStats     `json:"review_stats"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// Session owns the live state of one canteen's dashboard. Change
// notifications land as invalidations on a single-consumer channel; one
// goroutine drains it and performs fetch + normalize + recompute as one
// atomic unit. The external store is the sole source of truth: derived
// state is discarded and rebuilt on every refresh.
type Session struct {
	canteenID string
	store     store.Store
	logger    *logger.Logger
	now       func() time.Time

	// refreshMu serializes the whole fetch + recompute + swap. Without
	// it an advance-triggered refresh and an invalidation-triggered one
	// could interleave and the slower, staler fetch would win the swap.
	refreshMu sync.Mutex

	mu   sync.RWMutex
	snap Snapshot

	// capacity 1: a burst of notifications during a refresh collapses
	// into a single pending invalidation
	invalidated chan struct{}
}

// NewSession creates a session for one canteen
func NewSession(canteenID string, st store.Store, log *logger.Logger) *Session {
	return &Session{
		canteenID:   canteenID,
		store:       st,
		logger:      log,
		now:         time.Now,
		invalidated: make(chan struct{}, 1),
	}
}

// CanteenID returns the canteen this session is scoped to
func (s *Session) CanteenID() string {
	return s.canteenID
}

// Invalidate marks the snapshot as stale. It never blocks; overlapping
// invalidations coalesce into one pending refresh.
func (s *Session) Invalidate() {
	select {
	case s.invalidated <- struct{}{}:
	default:
	}
}

// Run performs an initial refresh and then drains invalidations until
// ctx is cancelled. Refresh failures leave the previous snapshot in
// place and are retried on the next invalidation.
func (s *Session) Run(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("initial_refresh_failed", "Initial snapshot fetch failed", requestID, err, map[string]interface{}{
			"canteen_id": s.canteenID,
		})
	}

	s.logger.Info("session_started", "Dashboard session started", requestID, map[string]interface{}{
		"canteen_id": s.canteenID,
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session_stopped", "Dashboard session stopped", requestID, map[string]interface{}{
				"canteen_id": s.canteenID,
			})
			return ctx.Err()
		case <-s.invalidated:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error("refresh_failed", "Snapshot refresh failed, previous state retained", requestID, err, map[string]interface{}{
					"canteen_id": s.canteenID,
				})
			}
		}
	}
}

// Refresh fetches orders and reviews, normalizes them and recomputes all
// derived state in one step. At most one refresh per session is in
// flight at a time, so a snapshot can never be replaced by one built
// from an older fetch. On any fetch error the previous snapshot stays
// visible.
func (s *Session) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	orders, err := s.store.FetchOrders(ctx, s.canteenID)
	if err != nil {
		return fmt.Errorf("failed to fetch orders: %w", err)
	}

	reviews, err := s.store.FetchReviews(ctx, s.canteenID)
	if err != nil {
		return fmt.Errorf("failed to fetch reviews: %w", err)
	}

	snap := Snapshot{
		Orders:      orders,
		LiveOrders:  LiveBoard(orders),
		Reviews:     reviews,
		Stats:       ComputeStats(orders, reviews, s.now()),
		ReviewStats: ComputeReviewStats(reviews),
		RefreshedAt: s.now(),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.Debug("snapshot_refreshed", "Recomputed dashboard snapshot", "", map[string]interface{}{
		"canteen_id":  s.canteenID,
		"orders":      len(orders),
		"live_orders": len(snap.LiveOrders),
		"reviews":     len(reviews),
	})

	return nil
}

// Snapshot returns the last successfully computed snapshot
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Advance moves an order to newStatus. The transition must be the single
// permissible successor of the order's current status; anything else is
// rejected without touching the store. The write itself is guarded on
// the current status, so a concurrent change from another session
// surfaces as store.ErrConflict. On success the snapshot is re-derived
// from stored state rather than patched in place.
func (s *Session) Advance(ctx context.Context, orderID string, newStatus models.OrderStatus) error {
	current, ok := s.findOrder(orderID)
	if !ok {
		return ErrUnknownOrder
	}

	next, ok := current.Status.Next()
	if !ok || next != newStatus {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, newStatus)
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, current.Status, newStatus, s.now().UTC()); err != nil {
		return err
	}

	// Recompute from true stored state; a stale in-memory patch could
	// double count revenue or miss a concurrent update
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("refresh_failed", "Post-advance refresh failed, previous state retained", "", err, map[string]interface{}{
			"canteen_id": s.canteenID,
			"order_id":   orderID,
		})
	}

	return nil
}

func (s *Session) findOrder(orderID string) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.snap.Orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return models.Order{}, false
}
