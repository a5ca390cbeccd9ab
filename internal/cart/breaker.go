package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerCache wraps a Cache with a circuit breaker so a down cache backend
// degrades to cache misses instead of stalling every request on a dead
// socket. Cache misses do not count as failures.
type BreakerCache struct {
	inner Cache
	cb    *gobreaker.CircuitBreaker[*Record]
}

func NewBreakerCache(inner Cache) *BreakerCache {
	settings := gobreaker.Settings{
		Name:    "cart-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("%s breaker state change: %v -> %v", name, from, to)
		},
	}
	return &BreakerCache{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[*Record](settings),
	}
}

var _ Cache = (*BreakerCache)(nil)

func (b *BreakerCache) Get(ctx context.Context, sessionID string) (*Record, error) {
	record, err := b.cb.Execute(func() (*Record, error) {
		return b.inner.Get(ctx, sessionID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCacheMiss
	}
	return record, err
}

func (b *BreakerCache) Set(ctx context.Context, sessionID string, record *Record) error {
	_, err := b.cb.Execute(func() (*Record, error) {
		return nil, b.inner.Set(ctx, sessionID, record)
	})
	return err
}

func (b *BreakerCache) Delete(ctx context.Context, sessionID string) error {
	_, err := b.cb.Execute(func() (*Record, error) {
		return nil, b.inner.Delete(ctx, sessionID)
	})
	return err
}
