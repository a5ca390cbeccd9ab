package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/fjod/go_shop/internal/domain"
)

// MemoryStore implements ProductRepository with in-memory storage. Used for
// tests and for running without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]*domain.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		products: make(map[int64]*domain.Product),
	}
}

var _ ProductRepository = (*MemoryStore)(nil)

func (s *MemoryStore) GetAllProducts(_ context.Context) ([]*domain.Product, error) {
	return s.sorted(func(a, b *domain.Product) bool { return a.ID < b.ID }), nil
}

func (s *MemoryStore) GetAllAdminProducts(_ context.Context) ([]*domain.Product, error) {
	return s.sorted(func(a, b *domain.Product) bool { return a.ID > b.ID }), nil
}

func (s *MemoryStore) sorted(less func(a, b *domain.Product) bool) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (s *MemoryStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *MemoryStore) SaveProduct(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
