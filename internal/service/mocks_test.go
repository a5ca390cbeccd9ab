package service

import (
	"context"
	"sync"

	"github.com/fjod/go_shop/internal/cart"
	"github.com/fjod/go_shop/internal/catalog"
	"github.com/fjod/go_shop/internal/domain"
)

// failingOrderRepo returns Err from every persistence call.
type failingOrderRepo struct {
	Err error
}

func (f *failingOrderRepo) SaveOrder(context.Context, *domain.Order) error {
	return f.Err
}

func (f *failingOrderRepo) GetOrder(context.Context, int64) (*domain.Order, error) {
	return nil, f.Err
}

func (f *failingOrderRepo) Close() error { return nil }

// faultyProductRepo wraps a real store and fails writes on command, to drive
// the per-line failure outcome of stock reconciliation.
type faultyProductRepo struct {
	catalog.ProductRepository
	SaveErr   error
	DeleteErr error
}

func (f *faultyProductRepo) SaveProduct(ctx context.Context, p *domain.Product) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	return f.ProductRepository.SaveProduct(ctx, p)
}

func (f *faultyProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	return f.ProductRepository.DeleteProduct(ctx, id)
}

// fakeCache is an in-memory cart.Cache that records invalidations.
type fakeCache struct {
	mu      sync.Mutex
	records map[string]*cart.Record
	deletes int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[string]*cart.Record)}
}

func (f *fakeCache) Get(_ context.Context, sessionID string) (*cart.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[sessionID]
	if !ok {
		return nil, cart.ErrCacheMiss
	}
	return record, nil
}

func (f *fakeCache) Set(_ context.Context, sessionID string, record *cart.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[sessionID] = record
	f.sets++
	return nil
}

func (f *fakeCache) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, sessionID)
	f.deletes++
	return nil
}
