package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"canteen-dashboard/internal/logger"
	"canteen-dashboard/internal/models"
	"canteen-dashboard/internal/store"
)

// fakeStore serves canned snapshots and records status writes.
type fakeStore struct {
	mu      sync.Mutex
	orders  []models.Order
	reviews []models.Review

	fetchErr  error
	updateErr error

	// fetchHook runs after FetchOrders captures its result, outside the
	// store lock, letting tests stall a refresh mid-flight
	fetchHook func()

	updates []statusUpdate
}

type statusUpdate struct {
	orderID    string
	fromStatus models.OrderStatus
	newStatus  models.OrderStatus
}

func (f *fakeStore) ResolveCanteenForOwner(ctx context.Context, ownerID string) (string, error) {
	return "canteen-1", nil
}

func (f *fakeStore) FetchOrders(ctx context.Context, canteenID string) ([]models.Order, error) {
	f.mu.Lock()
	if f.fetchErr != nil {
		f.mu.Unlock()
		return nil, f.fetchErr
	}
	orders := append([]models.Order(nil), f.orders...)
	hook := f.fetchHook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return orders, nil
}

func (f *fakeStore) FetchReviews(ctx context.Context, canteenID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]models.Review(nil), f.reviews...), nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID string, fromStatus, newStatus models.OrderStatus, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, statusUpdate{orderID, fromStatus, newStatus})
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			f.orders[i].Status = newStatus
		}
	}
	return nil
}

func (f *fakeStore) setOrders(orders []models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = orders
}

func (f *fakeStore) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func (f *fakeStore) setFetchHook(hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchHook = hook
}

func (f *fakeStore) recordedUpdates() []statusUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statusUpdate(nil), f.updates...)
}

func (f *fakeStore) ListMenuItems(ctx context.Context, canteenID string) ([]models.MenuItem, error) {
	return nil, nil
}

func (f *fakeStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error { return nil }

func (f *fakeStore) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error { return nil }

func (f *fakeStore) SetMenuItemAvailability(ctx context.Context, canteenID, itemID string, available bool) error {
	return nil
}

func (f *fakeStore) DeleteMenuItem(ctx context.Context, canteenID, itemID string) error { return nil }

func newTestSession(t *testing.T, fs *fakeStore) *Session {
	t.Helper()
	s := NewSession("canteen-1", fs, logger.New("dashboard-test"))
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh failed: %v", err)
	}
	return s
}

func TestSession_RefreshBuildsSnapshot(t *testing.T) {
	now := time.Now()
	fs := &fakeStore{
		orders: []models.Order{
			{ID: "o1", Status: models.StatusPending, TotalAmount: decimal.NewFromInt(40), CreatedAt: now},
			{ID: "o2", Status: models.StatusCompleted, TotalAmount: decimal.NewFromInt(60), CreatedAt: now},
		},
		reviews: []models.Review{{ID: "r1", Rating: 4}},
	}

	s := newTestSession(t, fs)
	snap := s.Snapshot()

	if len(snap.Orders) != 2 {
		t.Errorf("snapshot has %d orders, want 2", len(snap.Orders))
	}
	if len(snap.LiveOrders) != 1 || snap.LiveOrders[0].ID != "o1" {
		t.Errorf("live board = %+v, want only o1", snap.LiveOrders)
	}
	if want := decimal.NewFromInt(60); !snap.Stats.TotalEarnings.Equal(want) {
		t.Errorf("TotalEarnings = %s, want %s", snap.Stats.TotalEarnings, want)
	}
	if snap.ReviewStats.TotalReviews != 1 {
		t.Errorf("TotalReviews = %d, want 1", snap.ReviewStats.TotalReviews)
	}
	if snap.RefreshedAt.IsZero() {
		t.Error("RefreshedAt not set")
	}
}

func TestSession_RefreshFailureRetainsSnapshot(t *testing.T) {
	fs := &fakeStore{
		orders: []models.Order{{ID: "o1", Status: models.StatusPending, CreatedAt: time.Now()}},
	}

	s := newTestSession(t, fs)
	before := s.Snapshot()

	fs.setFetchErr(errors.New("backend unavailable"))
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh returned nil despite fetch error")
	}

	after := s.Snapshot()
	if len(after.Orders) != len(before.Orders) || !after.RefreshedAt.Equal(before.RefreshedAt) {
		t.Errorf("failed refresh replaced snapshot: before %+v, after %+v", before, after)
	}
}

func TestSession_AdvanceValidTransition(t *testing.T) {
	fs := &fakeStore{
		orders: []models.Order{{ID: "o1", Status: models.StatusPending, CreatedAt: time.Now()}},
	}

	s := newTestSession(t, fs)

	if err := s.Advance(context.Background(), "o1", models.StatusPreparing); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	updates := fs.recordedUpdates()
	if len(updates) != 1 {
		t.Fatalf("store saw %d updates, want 1", len(updates))
	}
	got := updates[0]
	if got.fromStatus != models.StatusPending || got.newStatus != models.StatusPreparing {
		t.Errorf("update = %+v, want pending -> preparing", got)
	}

	// Advance re-derives the snapshot from the store
	snap := s.Snapshot()
	if snap.Orders[0].Status != models.StatusPreparing {
		t.Errorf("snapshot status = %s, want preparing after refresh", snap.Orders[0].Status)
	}
}

func TestSession_AdvanceOutOfSequence(t *testing.T) {
	fs := &fakeStore{
		orders: []models.Order{{ID: "o1", Status: models.StatusPending, CreatedAt: time.Now()}},
	}

	s := newTestSession(t, fs)

	// pending's only successor is preparing; skipping to ready must fail
	err := s.Advance(context.Background(), "o1", models.StatusReady)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Advance error = %v, want ErrInvalidTransition", err)
	}
	if updates := fs.recordedUpdates(); len(updates) != 0 {
		t.Errorf("rejected transition still reached the store: %+v", updates)
	}
}

func TestSession_AdvanceTerminalStatus(t *testing.T) {
	fs := &fakeStore{
		orders: []models.Order{{ID: "o1", Status: models.StatusCompleted, CreatedAt: time.Now()}},
	}

	s := newTestSession(t, fs)

	err := s.Advance(context.Background(), "o1", models.StatusPending)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Advance error = %v, want ErrInvalidTransition", err)
	}
	if updates := fs.recordedUpdates(); len(updates) != 0 {
		t.Errorf("terminal order reached the store: %+v", updates)
	}
}

func TestSession_AdvanceUnknownOrder(t *testing.T) {
	s := newTestSession(t, &fakeStore{})

	err := s.Advance(context.Background(), "missing", models.StatusPreparing)
	if !errors.Is(err, ErrUnknownOrder) {
		t.Fatalf("Advance error = %v, want ErrUnknownOrder", err)
	}
}

func TestSession_AdvanceConflictPropagates(t *testing.T) {
	fs := &fakeStore{
		orders:    []models.Order{{ID: "o1", Status: models.StatusReady, CreatedAt: time.Now()}},
		updateErr: store.ErrConflict,
	}

	s := newTestSession(t, fs)

	err := s.Advance(context.Background(), "o1", models.StatusPickedUp)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Advance error = %v, want store.ErrConflict", err)
	}

	// Failed write must not touch the snapshot
	if got := s.Snapshot().Orders[0].Status; got != models.StatusReady {
		t.Errorf("snapshot status = %s, want ready", got)
	}
}

func TestSession_RefreshesDoNotOverlap(t *testing.T) {
	now := time.Now()
	fs := &fakeStore{
		orders: []models.Order{{ID: "o1", Status: models.StatusPending, CreatedAt: now}},
	}

	s := newTestSession(t, fs)

	// Stall the next refresh after it has captured its (stale) fetch
	// result; later fetches must not be allowed to start underneath it.
	stalled := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	fs.setFetchHook(func() {
		once.Do(func() {
			close(stalled)
			<-release
		})
	})

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_ = s.Refresh(context.Background())
	}()
	<-stalled

	fs.setOrders([]models.Order{
		{ID: "o1", Status: models.StatusPending, CreatedAt: now},
		{ID: "o2", Status: models.StatusPending, CreatedAt: now},
	})

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		_ = s.Refresh(context.Background())
	}()

	select {
	case <-secondDone:
		t.Fatal("second refresh finished while the first was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-firstDone
	<-secondDone

	// The later fetch must win the swap: the stalled one-order refresh
	// cannot overwrite the two-order state fetched after it
	if got := len(s.Snapshot().Orders); got != 2 {
		t.Fatalf("snapshot has %d orders, want 2 (stale refresh overwrote newer state)", got)
	}
}

func TestSession_InvalidateCoalesces(t *testing.T) {
	s := NewSession("canteen-1", &fakeStore{}, logger.New("dashboard-test"))

	// Must never block no matter how many notifications arrive
	for i := 0; i < 10; i++ {
		s.Invalidate()
	}

	select {
	case <-s.invalidated:
	default:
		t.Fatal("no pending invalidation after Invalidate")
	}
	select {
	case <-s.invalidated:
		t.Fatal("burst of invalidations did not coalesce into one")
	default:
	}
}

func TestSession_RunRefreshesOnInvalidate(t *testing.T) {
	fs := &fakeStore{}
	s := NewSession("canteen-1", fs, logger.New("dashboard-test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Wait for the initial refresh to land
	deadline := time.After(2 * time.Second)
	for s.Snapshot().RefreshedAt.IsZero() {
		select {
		case <-deadline:
			t.Fatal("initial refresh never completed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	fs.setOrders([]models.Order{{ID: "o1", Status: models.StatusPending, CreatedAt: time.Now()}})
	s.Invalidate()

	deadline = time.After(2 * time.Second)
	for len(s.Snapshot().Orders) == 0 {
		select {
		case <-deadline:
			t.Fatal("invalidation did not trigger a refresh")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}
