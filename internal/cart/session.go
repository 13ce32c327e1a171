package cart

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is the cart persistence mode.
type State int

const (
	// Anonymous carts live only in the session's local storage.
	Anonymous State = iota
	// Authenticated carts additionally mirror every mutation to the
	// remote per-identity document.
	Authenticated
)

// RemoteStore persists one cart document per authenticated identity.
// Writes are whole-document overwrites, last writer wins.
type RemoteStore interface {
	ReadCart(ctx context.Context, identity string) (Items, bool, error)
	WriteCart(ctx context.Context, identity string, items Items) error
}

// Session tracks one shopper's cart across the anonymous/authenticated
// transition. Mutations update the local cart synchronously; when
// authenticated they also enqueue a mirror write of the full cart. Each
// mutation returns the mirror write's result channel, nil while anonymous.
type Session struct {
	mu       sync.Mutex
	state    State
	identity string
	items    Items
	remote   RemoteStore
	mirror   *Mirror
	logger   zerolog.Logger
}

// NewSession creates an anonymous session with an empty cart.
func NewSession(remote RemoteStore) *Session {
	return &Session{
		remote: remote,
		items:  Items{},
		logger: log.With().Str("component", "cart_session").Logger(),
	}
}

// State returns the current persistence mode.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Items returns a copy of the visible cart.
func (s *Session) Items() Items {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// Total returns the cart total in minor units.
func (s *Session) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Total()
}

// Count returns the number of units in the cart.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Count()
}

// AddItem merges the product into the cart.
func (s *Session) AddItem(item Item) <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items.Add(item)
	return s.enqueueMirrorLocked()
}

// RemoveItem drops the product from the cart.
func (s *Session) RemoveItem(productID string) <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items.Remove(productID)
	return s.enqueueMirrorLocked()
}

// SetQuantity replaces the product's quantity; zero or less removes it.
func (s *Session) SetQuantity(productID string, quantity int) <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items.SetQuantity(productID, quantity)
	return s.enqueueMirrorLocked()
}

// Clear empties the cart. When authenticated the empty cart is mirrored to
// the remote document as well.
func (s *Session) Clear() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = Items{}
	return s.enqueueMirrorLocked()
}

// enqueueMirrorLocked hands the current cart to the mirror when
// authenticated. Callers must hold s.mu.
func (s *Session) enqueueMirrorLocked() <-chan error {
	if s.state != Authenticated || s.mirror == nil {
		return nil
	}
	return s.mirror.Enqueue(s.items.Clone())
}

// Login transitions the session to Authenticated and reconciles the local
// cart against the identity's remote document: the remote cart, even an
// empty one, replaces whatever was added anonymously, and an absent remote
// cart resets the visible cart to empty. A remote read failure is logged
// and the local cart kept, so the shopper stays usable offline. Returns the
// resolved cart.
func (s *Session) Login(ctx context.Context, identity string) Items {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Authenticated {
		return s.items.Clone()
	}

	remote, exists, err := s.remote.ReadCart(ctx, identity)
	if err != nil {
		s.logger.Error().Err(err).Str("identity", identity).Msg("Remote cart read failed, keeping local cart")
	} else {
		s.items = Reconcile(s.items, remote, exists)
	}

	s.state = Authenticated
	s.identity = identity
	s.mirror = NewMirror(s.remote, identity)
	return s.items.Clone()
}

// Logout clears the local cart and returns to Anonymous. The remote
// document is left untouched; no read or write is issued beyond flushing
// mirror writes already enqueued.
func (s *Session) Logout() {
	s.mu.Lock()
	mirror := s.mirror
	s.mirror = nil
	s.items = Items{}
	s.state = Anonymous
	s.identity = ""
	s.mu.Unlock()

	if mirror != nil {
		mirror.Close()
	}
}
