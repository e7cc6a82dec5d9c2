package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/farmavida/farmavida-backend/pkg/logger"
)

// StorageFactory builds the durable storage for one session's cart.
type StorageFactory func(sessionID string) Storage

// Manager lazily materializes one Store per session and tears idle ones
// down again. The durable copy outlives eviction; a returning session
// simply hydrates a fresh store from it.
type Manager struct {
	factory  StorageFactory
	debounce time.Duration

	mu       sync.Mutex
	stores   map[string]*managedStore
	onCreate func(sessionID string, store *Store)
}

type managedStore struct {
	store      *Store
	hydrate    sync.Once
	lastAccess time.Time
}

func NewManager(factory StorageFactory, debounce time.Duration) *Manager {
	return &Manager{
		factory:  factory,
		debounce: debounce,
		stores:   make(map[string]*managedStore),
	}
}

// OnCreate registers a hook run once per materialized store, after
// hydration. Used to attach subscribers (e.g. the websocket push bridge).
// Set it before the manager starts serving requests.
func (m *Manager) OnCreate(fn func(sessionID string, store *Store)) {
	m.onCreate = fn
}

// GetOrCreate returns the session's store, hydrating a new one on first
// access.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	entry, ok := m.stores[sessionID]
	if !ok {
		entry = &managedStore{store: New(sessionID, m.factory(sessionID), m.debounce)}
		m.stores[sessionID] = entry
	}
	entry.lastAccess = time.Now()
	m.mu.Unlock()

	// A concurrent first access waits here until hydration finishes, so no
	// mutation can race the initial load.
	entry.hydrate.Do(func() {
		entry.store.Hydrate(ctx)
		if m.onCreate != nil {
			m.onCreate(sessionID, entry.store)
		}
		logger.Debug("Cart store created", map[string]interface{}{
			"session": sessionID,
		})
	})
	return entry.store
}

// Peek returns the session's store without creating one.
func (m *Manager) Peek(sessionID string) (*Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.stores[sessionID]
	if !ok {
		return nil, false
	}
	entry.lastAccess = time.Now()
	return entry.store, true
}

// Evict closes and forgets the session's store, if any.
func (m *Manager) Evict(sessionID string) {
	m.mu.Lock()
	entry, ok := m.stores[sessionID]
	if ok {
		delete(m.stores, sessionID)
	}
	m.mu.Unlock()
	if ok {
		entry.store.Close()
	}
}

// SweepIdle closes stores untouched for longer than maxIdle and returns how
// many were evicted.
func (m *Manager) SweepIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var victims []*managedStore
	for sessionID, entry := range m.stores {
		if entry.lastAccess.Before(cutoff) {
			victims = append(victims, entry)
			delete(m.stores, sessionID)
		}
	}
	m.mu.Unlock()

	for _, entry := range victims {
		entry.store.Close()
	}
	return len(victims)
}

// Len reports how many session stores are live.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Shutdown closes every live store.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	stores := m.stores
	m.stores = make(map[string]*managedStore)
	m.mu.Unlock()

	for _, entry := range stores {
		entry.store.Close()
	}
	logger.Info("All cart stores closed", map[string]interface{}{
		"count": len(stores),
	})
}
