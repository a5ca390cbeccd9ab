package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_shop/internal/cart"
	"github.com/fjod/go_shop/internal/catalog"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/orders"
)

// OrderService orchestrates the cart lifecycle for each session: adding and
// removing lines against the live catalog, and turning a cart into a
// persisted order at checkout. It is the only component that mutates carts in
// response to catalog events.
type OrderService struct {
	products *ProductService
	orders   orders.OrderRepository
	carts    *cart.Registry
	cache    cart.Cache // optional
	sfg      singleflight.Group
}

func NewOrderService(products *ProductService, repo orders.OrderRepository, carts *cart.Registry, cache cart.Cache) *OrderService {
	return &OrderService{
		products: products,
		orders:   repo,
		carts:    carts,
		cache:    cache,
	}
}

// AddToCart looks the product up in the catalog and adds one unit of it to
// the session's cart. An unknown product id returns false with the cart
// unchanged; this is a normal outcome, not an error.
func (s *OrderService) AddToCart(ctx context.Context, sessionID string, productID int64) (bool, error) {
	p, err := s.products.GetByProductID(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up product %d: %w", productID, err)
	}

	err = s.carts.WithCart(ctx, sessionID, func(c *domain.Cart) error {
		c.AddItem(p, 1)
		return nil
	})
	if err != nil {
		return false, err
	}

	s.invalidateCache(sessionID)
	return true, nil
}

// RemoveFromCart deletes the product's entire line from the session's cart.
// Safe to call for a product that is not in the cart.
func (s *OrderService) RemoveFromCart(ctx context.Context, sessionID string, productID int64) error {
	err := s.carts.WithCart(ctx, sessionID, func(c *domain.Cart) error {
		c.RemoveLine(productID)
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *OrderService) IsCartEmpty(ctx context.Context, sessionID string) bool {
	empty := true
	_ = s.carts.WithCart(ctx, sessionID, func(c *domain.Cart) error {
		empty = c.IsEmpty()
		return nil
	})
	return empty
}

// GetCart returns a snapshot of the session's cart, serving repeated reads
// from the cache when one is configured.
func (s *OrderService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if s.cache == nil {
		return s.snapshotCart(ctx, sessionID)
	}

	// Singleflight collapses concurrent misses for the same session.
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		record, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			c := domain.NewCart()
			c.Restore(record.Lines)
			return c, nil
		}
		if !errors.Is(err, cart.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		c, errSnap := s.fillCart(ctx, sessionID)
		if errSnap != nil {
			return nil, errSnap
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// fillCart snapshots the session's cart and writes the snapshot to the cache
// before releasing the session lock. Mutations invalidate the cache only
// after their own locked section completes, so an invalidation always lands
// after any fill taken from the pre-mutation cart and a checkout can never be
// overwritten by a stale snapshot.
func (s *OrderService) fillCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	snapshot := domain.NewCart()
	err := s.carts.WithCart(ctx, sessionID, func(c *domain.Cart) error {
		lines := c.Snapshot()
		snapshot.Restore(lines)
		errSet := s.cache.Set(ctx, sessionID, &cart.Record{SessionID: sessionID, Lines: lines})
		if errSet != nil {
			log.Printf("cache set error: %v", errSet)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *OrderService) snapshotCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	snapshot := domain.NewCart()
	err := s.carts.WithCart(ctx, sessionID, func(c *domain.Cart) error {
		snapshot.Restore(c.Snapshot())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// SaveOrder persists the order as-is. It does not touch the cart or stock;
// CreateOrder is the checkout entry point.
func (s *OrderService) SaveOrder(ctx context.Context, order *domain.Order) error {
	return s.orders.SaveOrder(ctx, order)
}

// CreateOrder finalizes the session's cart: it validates the cart is not
// empty, snapshots the cart lines into the order, persists it, reconciles
// catalog stock against the persisted snapshot, and clears the cart. The
// whole sequence runs under the session's cart lock, so no concurrent add or
// remove on the same session can interleave between snapshot and clear.
//
// An empty cart fails with ErrEmptyCart and nothing is persisted or touched.
// A persistence failure aborts before stock is reconciled and leaves the
// cart intact. Reconciliation itself is best effort per line and never fails
// the order, which is already durable by then.
func (s *OrderService) CreateOrder(ctx context.Context, sessionID string, order *domain.Order) error {
	err := s.carts.WithCart(ctx, sessionID, func(c *domain.Cart) error {
		if c.IsEmpty() {
			return ErrEmptyCart
		}

		lines := c.CartLineList()
		order.Lines = make([]domain.OrderLine, 0, len(lines))
		for _, line := range lines {
			order.Lines = append(order.Lines, domain.OrderLine{
				Product:  line.Product,
				Quantity: line.Quantity,
			})
		}

		if err := s.orders.SaveOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		for _, adj := range s.products.UpdateProductQuantities(ctx, lines) {
			log.Printf("order %d stock %s: product %d remaining %d", order.ID, adj.Outcome, adj.ProductID, adj.Remaining)
		}

		c.Clear()
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *OrderService) invalidateCache(sessionID string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
