package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

// MemoryStore implements OrderRepository and OutboxStore in memory, for tests
// and for running without a database.
type MemoryStore struct {
	mu          sync.RWMutex
	nextOrderID int64
	nextEventID int64
	orders      map[int64]*domain.Order
	events      []*OutboxEvent
	processed   map[int64]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextOrderID: 1,
		nextEventID: 1,
		orders:      make(map[int64]*domain.Order),
		processed:   make(map[int64]bool),
	}
}

var (
	_ OrderRepository = (*MemoryStore)(nil)
	_ OutboxStore     = (*MemoryStore)(nil)
)

func (s *MemoryStore) SaveOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = s.nextOrderID
	s.nextOrderID++
	order.CreatedAt = time.Now().UTC()

	cp := *order
	s.orders[order.ID] = &cp

	payload, err := json.Marshal(map[string]interface{}{
		"order_id":     order.ID,
		"lines":        order.Lines,
		"total_amount": order.TotalAmount(),
		"created_at":   order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	s.events = append(s.events, &OutboxEvent{
		ID:          s.nextEventID,
		AggregateID: fmt.Sprint(order.ID),
		EventType:   EventTypeOrderPlaced,
		Payload:     payload,
		CreatedAt:   order.CreatedAt,
	})
	s.nextEventID++
	return nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (s *MemoryStore) GetUnprocessedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*OutboxEvent
	for _, ev := range s.events {
		if s.processed[ev.ID] {
			continue
		}
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkEventAsProcessed(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processed[id] = true
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
