package dashboard

import (
	"context"
	"fmt"
	"sync"

	"canteen-dashboard/internal/logger"
	"canteen-dashboard/internal/store"
)

// ChangeFeed delivers payload-free change notifications for a canteen.
// Every delivery triggers a full snapshot refresh on the subscribed
// session.
type ChangeFeed interface {
	Subscribe(ctx context.Context, canteenID string, onChange func()) (func(), error)
}

// Manager hands out one running session per canteen. Owner identities
// are resolved to canteen ids once and cached for the lifetime of the
// process.
type Manager struct {
	store  store.Store
	feed   ChangeFeed
	logger *logger.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*managedSession
	owners   map[string]string
}

type managedSession struct {
	session     *Session
	stop        context.CancelFunc
	unsubscribe func()
}

// NewManager creates a session manager. feed may be nil, in which case
// sessions refresh only on their own writes.
func NewManager(st store.Store, feed ChangeFeed, log *logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:    st,
		feed:     feed,
		logger:   log,
		baseCtx:  ctx,
		cancel:   cancel,
		sessions: make(map[string]*managedSession),
		owners:   make(map[string]string),
	}
}

// SessionForOwner resolves the owner's canteen and returns its session,
// creating and starting one on first use. Returns store.ErrNoCanteen
// when the owner has no canteen; callers render that as an empty state.
func (m *Manager) SessionForOwner(ctx context.Context, ownerID string) (*Session, error) {
	canteenID, err := m.resolveCanteen(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ms, ok := m.sessions[canteenID]; ok {
		return ms.session, nil
	}

	session := NewSession(canteenID, m.store, m.logger)
	sessionCtx, stop := context.WithCancel(m.baseCtx)

	var unsubscribe func()
	if m.feed != nil {
		unsubscribe, err = m.feed.Subscribe(sessionCtx, canteenID, session.Invalidate)
		if err != nil {
			stop()
			return nil, fmt.Errorf("failed to subscribe session for canteen %s: %w", canteenID, err)
		}
	}

	go func() {
		_ = session.Run(sessionCtx)
	}()

	m.sessions[canteenID] = &managedSession{
		session:     session,
		stop:        stop,
		unsubscribe: unsubscribe,
	}

	return session, nil
}

func (m *Manager) resolveCanteen(ctx context.Context, ownerID string) (string, error) {
	m.mu.Lock()
	canteenID, ok := m.owners[ownerID]
	m.mu.Unlock()
	if ok {
		return canteenID, nil
	}

	canteenID, err := m.store.ResolveCanteenForOwner(ctx, ownerID)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.owners[ownerID] = canteenID
	m.mu.Unlock()

	return canteenID, nil
}

// Close stops all sessions and their subscriptions
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for canteenID, ms := range m.sessions {
		if ms.unsubscribe != nil {
			ms.unsubscribe()
		}
		ms.stop()
		delete(m.sessions, canteenID)
	}

	m.cancel()
}
