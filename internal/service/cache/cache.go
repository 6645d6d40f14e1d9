package cache

import (
	"context"
	"time"
)

// BytesCache stores raw bytes with an optional TTL. A ttl of zero keeps the
// entry until it is deleted or the backing store is flushed.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
