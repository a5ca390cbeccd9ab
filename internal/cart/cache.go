package cart

import (
	"context"
	"errors"
)

// Cache holds short-lived cart snapshots for read paths.
type Cache interface {
	Get(ctx context.Context, sessionID string) (*Record, error)
	Set(ctx context.Context, sessionID string, record *Record) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
