package orders

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository owns persisted orders. SaveOrder assigns the order id.
type OrderRepository interface {
	SaveOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	Close() error
}

// OutboxEvent is one row of the transactional outbox written alongside an
// order, waiting to be published.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// OutboxStore is implemented by order stores that record an order-placed
// event in the same transaction as the order itself.
type OutboxStore interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

// EventTypeOrderPlaced tags outbox rows written on order persistence.
const EventTypeOrderPlaced = "order.placed"
