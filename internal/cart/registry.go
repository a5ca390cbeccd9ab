package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

// Registry maps session ids to independently owned carts. Every mutation and
// read of a cart goes through WithCart, which holds that session's lock for
// the duration of the callback, so multi-step operations like checkout see no
// interleaving from the same session.
//
// Carts never cross sessions. With a Store configured, a session's cart is
// hydrated from its last snapshot on first access and snapshotted back after
// each mutation.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	store    Store // optional
}

type session struct {
	mu      sync.Mutex
	hydrate sync.Once
	cart    *domain.Cart
}

// NewRegistry creates a registry. store may be nil, in which case carts live
// only in memory.
func NewRegistry(store Store) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		store:    store,
	}
}

func (r *Registry) session(sessionID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		s = &session{cart: domain.NewCart()}
		r.sessions[sessionID] = s
	}
	return s
}

// WithCart runs fn with exclusive access to the session's cart and returns
// fn's error. After fn completes without error, the cart is snapshotted to
// the store. Snapshotting is best effort: a store failure is logged, never
// surfaced, and the in-memory cart stays authoritative.
func (r *Registry) WithCart(ctx context.Context, sessionID string, fn func(c *domain.Cart) error) error {
	s := r.session(sessionID)

	s.hydrate.Do(func() { r.hydrateSession(ctx, sessionID, s) })

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.cart); err != nil {
		return err
	}

	if r.store != nil {
		r.persistSnapshot(sessionID, s.cart.Snapshot())
	}
	return nil
}

func (r *Registry) hydrateSession(ctx context.Context, sessionID string, s *session) {
	if r.store == nil {
		return
	}

	record, err := r.store.GetCart(ctx, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		return
	}
	if err != nil {
		// Hydration is best effort: start from an empty cart.
		log.Printf("cart store get error: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Restore(record.Lines)
}

// persistSnapshot runs under the session lock, which keeps snapshots for one
// session ordered.
func (r *Registry) persistSnapshot(sessionID string, lines []domain.CartLine) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if len(lines) == 0 {
		err := r.store.DeleteCart(ctx, sessionID)
		if err != nil && !errors.Is(err, ErrCartNotFound) {
			log.Printf("cart store delete error: %v", err)
		}
		return
	}

	err := r.store.UpsertCart(ctx, &Record{SessionID: sessionID, Lines: lines})
	if err != nil {
		log.Printf("cart store upsert error: %v", err)
	}
}

// RemoveFromAllCarts deletes the product's line from every live session's
// cart. The catalog management path calls this before deleting a product, so
// no cart keeps referencing a product absent from the catalog.
func (r *Registry) RemoveFromAllCarts(ctx context.Context, productID int64) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		err := r.WithCart(ctx, id, func(c *domain.Cart) error {
			c.RemoveLine(productID)
			return nil
		})
		if err != nil {
			log.Printf("failed to sweep product %d from session %s: %v", productID, id, err)
		}
	}
}
