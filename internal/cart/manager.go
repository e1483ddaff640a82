package cart

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Manager is the one construction point for per-session stores. It keeps a
// bounded in-memory index so that requests from the same session observe
// the same store instance (and therefore the same isOpen/isLoading state).
type Manager struct {
	commerce Commerce
	ids      IDStore
	logger   zerolog.Logger
	ttl      time.Duration
	now      func() time.Time

	mu     sync.Mutex
	stores map[string]*managedStore
}

type managedStore struct {
	store    *Store
	lastSeen time.Time
}

// ManagerConfig groups Manager dependencies.
type ManagerConfig struct {
	Commerce Commerce
	IDs      IDStore
	Logger   zerolog.Logger
	// TTL controls how long an idle session keeps its in-memory store.
	// The persisted cart id outlives this; an evicted session simply
	// rehydrates on its next request.
	TTL time.Duration
}

// NewManager constructs a Manager.
func NewManager(cfg ManagerConfig) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{
		commerce: cfg.Commerce,
		ids:      cfg.IDs,
		logger:   cfg.Logger,
		ttl:      ttl,
		now:      time.Now,
		stores:   make(map[string]*managedStore),
	}
}

// Session returns the store owned by the given session, creating it on
// first touch. Idle entries are pruned opportunistically.
func (m *Manager) Session(sessionID string) *Store {
	sessionID = normalizeSessionID(sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, entry := range m.stores {
		if now.Sub(entry.lastSeen) > m.ttl {
			delete(m.stores, id)
		}
	}

	entry, ok := m.stores[sessionID]
	if !ok {
		entry = &managedStore{store: NewStore(sessionID, m.commerce, m.ids, m.logger)}
		m.stores[sessionID] = entry
	}
	entry.lastSeen = now
	return entry.store
}

// Len reports the number of live session stores.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}
