package cart

import (
	"context"
	"sync"

	"github.com/hobbyvault/storefront/internal/logging"
	"github.com/hobbyvault/storefront/internal/storage"
)

// Manager hands out one Store per browser session.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	storage storage.Store
	remote  Remote
}

func NewManager(st storage.Store, remote Remote) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		storage: st,
		remote:  remote,
	}
}

// ForSession returns the session's store, creating and rehydrating it
// on first use. Rehydration completes before the store is handed out:
// concurrent requests for a fresh session block here instead of
// mutating a cart whose snapshot is still loading. A non-empty
// credential (a session restored after a process restart) puts the
// store into synced mode.
func (m *Manager) ForSession(ctx context.Context, sessionID, credential string) *Store {
	m.mu.Lock()
	st, ok := m.stores[sessionID]
	if !ok {
		st = NewStore(sessionID, m.storage, m.remote)
		m.stores[sessionID] = st
	}
	m.mu.Unlock()

	if err := st.Rehydrate(ctx); err != nil {
		logging.FromContext(ctx).Warn("cart_rehydrate_failed", "session", sessionID, "error", err)
	}
	if credential != "" {
		st.Resume(credential)
	}
	return st
}
