package cache

import (
	"fmt"

	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Idempotency backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type redisDialer func(config.RedisConfig) (shared.IdempotencyStore, error)

func dialRedis(cfg config.RedisConfig) (shared.IdempotencyStore, error) {
	return NewRedisStore(cfg)
}

// IdempotencyStoreFactory picks the idempotency backend at startup
type IdempotencyStoreFactory struct {
	redis    config.RedisConfig
	logger   *zap.Logger
	fallback bool
	dial     redisDialer
}

type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.logger = logger }
}

// WithInMemoryFallback lets an unreachable Redis degrade to MemoryStore.
// On by default.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.fallback = allow }
}

func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{redis: cfg, logger: zap.NewNop(), fallback: true, dial: dialRedis}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore builds the store named by backend. Empty means memory.
func (f *IdempotencyStoreFactory) CreateStore(backend string) (shared.IdempotencyStore, error) {
	log := f.logger.With(zap.String("backend", backend))

	switch backend {
	case "", BackendMemory:
		log.Info("Idempotency store ready", zap.Bool("shared", false))
		return NewMemoryStore(), nil
	case BackendRedis:
		store, err := f.dial(f.redis)
		if err == nil {
			log.Info("Idempotency store ready", zap.Bool("shared", true), zap.String("addr", f.redis.Addr()))
			return store, nil
		}
		if !f.fallback {
			return nil, fmt.Errorf("connect idempotency redis: %w", err)
		}
		log.Warn("Redis unreachable, idempotency claims are local to this replica", zap.Error(err))
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", backend)
	}
}
