package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hobbyvault/storefront/internal/logging"
	"github.com/hobbyvault/storefront/internal/storage"
)

var (
	ErrValidation    = errors.New("cart: validation")
	ErrQuantityFloor = fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
)

// Mode says who owns the cart state.
type Mode int

const (
	// ModeGuest applies all mutations locally and persists them to
	// durable storage. No network calls are made.
	ModeGuest Mode = iota

	// ModeSynced forwards every mutation to the commerce API and
	// replaces the whole state with its response.
	ModeSynced
)

// Remote is the commerce API surface the store needs in synced mode.
type Remote interface {
	FetchCart(ctx context.Context, credential string) (State, error)
	AddItem(ctx context.Context, credential string, productID, variantID, quantity uint) (State, error)
	RemoveItem(ctx context.Context, credential, itemID string) (State, error)
	UpdateItem(ctx context.Context, credential, itemID string, quantity uint) (State, error)
}

// snapshotSuffix is the fixed durable-storage key under which a guest
// cart is serialized, scoped per session.
const snapshotSuffix = "dev_cart"

func snapshotKey(sessionID string) string {
	return "sess:" + sessionID + ":" + snapshotSuffix
}

// Store holds one session's cart. All mutations go through its methods;
// screens never touch the state directly.
//
// Mutations carry a monotonically increasing sequence number. In synced
// mode the lock is released for the duration of the network call, so
// responses may resolve out of request order; a response whose sequence
// is older than the last applied one is discarded instead of
// overwriting newer state.
type Store struct {
	mu       sync.Mutex
	mode     Mode
	cred     string
	state    State
	seq      uint64
	applied  uint64
	inflight int

	sessionID string
	storage   storage.Store
	remote    Remote

	rehydrateOnce sync.Once
}

func NewStore(sessionID string, st storage.Store, remote Remote) *Store {
	return &Store{
		sessionID: sessionID,
		storage:   st,
		remote:    remote,
	}
}

// Rehydrate restores a persisted guest snapshot, if any, on the first
// call; later calls are no-ops. A missing snapshot means a first visit:
// the cart starts empty. Every caller waits until the restore finishes,
// so no mutation can observe the store half rehydrated.
func (s *Store) Rehydrate(ctx context.Context) error {
	var err error
	s.rehydrateOnce.Do(func() { err = s.rehydrate(ctx) })
	return err
}

func (s *Store) rehydrate(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, snapshotKey(s.sessionID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cart: load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("cart: decode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Items = snap.Items
	s.state.Total = snap.Total
	return nil
}

func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// State returns a copy; the store's own slice is never aliased out.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Items = copyItems(s.state.Items)
	st.Busy = s.inflight > 0
	return st
}

// Login switches the store to synced mode and pulls the server cart.
// This is the single mode transition point; individual operations never
// probe storage for a credential.
func (s *Store) Login(ctx context.Context, credential string) (State, error) {
	s.mu.Lock()
	s.mode = ModeSynced
	s.cred = credential
	s.mu.Unlock()

	return s.Fetch(ctx)
}

// Resume puts the store back into synced mode without a fetch, for a
// session whose credential survived a process restart.
func (s *Store) Resume(credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeSynced
	s.cred = credential
}

// Logout drops the credential and clears the cart locally. The server
// cart is left intact for the user's next login.
func (s *Store) Logout(ctx context.Context) State {
	s.mu.Lock()
	s.mode = ModeGuest
	s.cred = ""
	s.mu.Unlock()

	return s.Clear(ctx)
}

// Fetch pulls the authoritative cart from the commerce API. For guests
// it is a no-op: the cart stays whatever local storage holds. On
// failure the visible state is left exactly as it was.
func (s *Store) Fetch(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.mode != ModeSynced {
		st := s.snapshotLocked()
		s.mu.Unlock()
		return st, nil
	}
	cred := s.cred
	s.mu.Unlock()

	return s.apply(ctx, func(ctx context.Context) (State, error) {
		return s.remote.FetchCart(ctx, cred)
	})
}

// Add puts the product in the cart. A line with a matching
// (product, variant) pair is incremented rather than duplicated.
func (s *Store) Add(ctx context.Context, p Product, quantity uint) (State, error) {
	if p.ProductID == 0 {
		return s.State(), fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	if s.mode == ModeSynced {
		cred := s.cred
		s.mu.Unlock()
		return s.apply(ctx, func(ctx context.Context) (State, error) {
			return s.remote.AddItem(ctx, cred, p.ProductID, p.VariantID, quantity)
		})
	}
	defer s.mu.Unlock()

	merged := false
	for i := range s.state.Items {
		if s.state.Items[i].SameLine(p.ProductID, p.VariantID) {
			s.state.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.state.Items = append(s.state.Items, Item{
			ID:        uuid.NewString(),
			ProductID: p.ProductID,
			VariantID: p.VariantID,
			Price:     p.Price,
			Quantity:  quantity,
			Name:      p.Name,
			Image:     p.Image,
		})
	}
	s.state.Total = ComputeTotal(s.state.Items)
	s.persistLocked(ctx)
	return s.snapshotLocked(), nil
}

// Remove drops the line with the given id. An unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, itemID string) (State, error) {
	s.mu.Lock()
	if s.mode == ModeSynced {
		cred := s.cred
		s.mu.Unlock()
		return s.apply(ctx, func(ctx context.Context) (State, error) {
			return s.remote.RemoveItem(ctx, cred, itemID)
		})
	}
	defer s.mu.Unlock()

	kept := s.state.Items[:0:0]
	for _, it := range s.state.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(s.state.Items) {
		return s.snapshotLocked(), nil
	}
	s.state.Items = kept
	s.state.Total = ComputeTotal(s.state.Items)
	s.persistLocked(ctx)
	return s.snapshotLocked(), nil
}

// UpdateQuantity sets the line's quantity. Anything below 1 is rejected
// with ErrQuantityFloor and the state is left untouched.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity uint) (State, error) {
	if quantity < 1 {
		return s.State(), ErrQuantityFloor
	}

	s.mu.Lock()
	if s.mode == ModeSynced {
		cred := s.cred
		s.mu.Unlock()
		return s.apply(ctx, func(ctx context.Context) (State, error) {
			return s.remote.UpdateItem(ctx, cred, itemID, quantity)
		})
	}
	defer s.mu.Unlock()

	changed := false
	for i := range s.state.Items {
		if s.state.Items[i].ID == itemID {
			s.state.Items[i].Quantity = quantity
			changed = true
			break
		}
	}
	if !changed {
		return s.snapshotLocked(), nil
	}
	s.state.Total = ComputeTotal(s.state.Items)
	s.persistLocked(ctx)
	return s.snapshotLocked(), nil
}

// Clear resets the cart locally, in both modes. It exists for logout
// and must never issue a destructive call against the server cart.
func (s *Store) Clear(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	if err := s.storage.Delete(ctx, snapshotKey(s.sessionID)); err != nil {
		logging.FromContext(ctx).Warn("cart_snapshot_delete_failed", "session", s.sessionID, "error", err)
	}
	return s.snapshotLocked()
}

// apply runs a synced-mode call outside the lock, then installs the
// response unless a later mutation already resolved.
func (s *Store) apply(ctx context.Context, call func(context.Context) (State, error)) (State, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.inflight++
	s.mu.Unlock()

	st, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if err != nil {
		logging.FromContext(ctx).Error("cart_sync_failed", "session", s.sessionID, "error", err)
		return s.snapshotLocked(), err
	}
	if seq < s.applied {
		// A newer mutation already replaced the state; this response
		// is stale and must not win.
		return s.snapshotLocked(), nil
	}
	s.applied = seq
	st.Items = copyItems(st.Items)
	s.state = st
	return s.snapshotLocked(), nil
}

// persistLocked writes the guest snapshot. Persistence failures are
// logged, not surfaced: the in-memory cart is already updated and the
// screens keep working.
func (s *Store) persistLocked(ctx context.Context) {
	snap := Snapshot{Items: s.state.Items, Total: s.state.Total}
	raw, err := json.Marshal(snap)
	if err != nil {
		logging.FromContext(ctx).Error("cart_snapshot_encode_failed", "session", s.sessionID, "error", err)
		return
	}
	if err := s.storage.Set(ctx, snapshotKey(s.sessionID), raw); err != nil {
		logging.FromContext(ctx).Warn("cart_snapshot_write_failed", "session", s.sessionID, "error", err)
	}
}
