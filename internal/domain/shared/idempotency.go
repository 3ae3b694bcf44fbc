package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL bounds how long an Idempotency-Key stays claimed
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore tracks Idempotency-Key claims for confirmed mutations
// (approve, reject, create and ship SPB). A non-positive ttl means
// DefaultIdempotencyTTL.
type IdempotencyStore interface {
	// MarkProcessed reports true when this call took the claim
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release frees key after a failed request so the client can retry it
	Release(ctx context.Context, key string) error
	Close() error
}
