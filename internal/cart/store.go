package cart

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Record is a persisted snapshot of one session's cart.
type Record struct {
	SessionID string            `json:"session_id" bson:"_id"`
	Lines     []domain.CartLine `json:"lines" bson:"lines"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// Store persists cart snapshots across process restarts. The in-memory cart
// stays the owner; the store only receives write-behind snapshots and serves
// hydration on a session's first access.
type Store interface {
	GetCart(ctx context.Context, sessionID string) (*Record, error)
	UpsertCart(ctx context.Context, record *Record) error
	DeleteCart(ctx context.Context, sessionID string) error
}
