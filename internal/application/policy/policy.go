// Package policy applies request deadlines and retries to repository calls.
package policy

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/config"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Policy bounds repository calls made on behalf of a request.
//
// Read retries only transient failures, up to maxAttempts in total.
// Write never retries.
type Policy struct {
	timeout         time.Duration
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          *zap.Logger
}

// New creates a Policy. A zero timeout leaves the caller's deadline alone.
func New(timeout time.Duration, retry config.RetryConfig, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Policy{
		timeout:         timeout,
		maxAttempts:     attempts,
		initialInterval: retry.InitialInterval,
		maxInterval:     retry.MaxInterval,
		logger:          logger,
	}
}

// Default has no deadline and a single attempt
func Default() *Policy {
	return New(0, config.RetryConfig{MaxAttempts: 1}, nil)
}

func (p *Policy) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// Write runs a state-changing call under the request deadline
func (p *Policy) Write(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return fn(ctx)
}

// Read runs a read-only call, retrying transient failures with exponential backoff.
// Each attempt gets its own deadline.
func (p *Policy) Read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	if p.initialInterval > 0 {
		b.InitialInterval = p.initialInterval
	}
	if p.maxInterval > 0 {
		b.MaxInterval = p.maxInterval
	}
	b.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		attemptCtx, cancel := p.withTimeout(ctx)
		defer cancel()

		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if !shared.IsTransient(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.For(ctx, p.logger).Warn("Retrying read after transient failure",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.maxAttempts-1)), ctx)
	return backoff.RetryNotify(operation, policy, notify)
}
