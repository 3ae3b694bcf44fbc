package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the client-supplied key of a state-changing request
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds client keys
const MaxIdempotencyKeyLength = 200

// releaseTimeout bounds releasing a key after a failed request
const releaseTimeout = 2 * time.Second

// Idempotency rejects a repeated Idempotency-Key with 409. Keys are scoped
// to the user and route. A request that fails (status >= 400) releases its
// key so the client may retry. Requests without the header pass through.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || store == nil {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, "Idempotency-Key is too long")
			return
		}

		scoped := GetJWTUserID(c) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + c.Param("id") + ":" + key
		claimed, err := store.MarkProcessed(c.Request.Context(), scoped, ttl)
		if err != nil {
			// Store outage: serve the request without the guard
			log.Error("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			abortWithError(c, http.StatusConflict, dto.ErrCodeDuplicateRequest, "This request was already submitted")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), releaseTimeout)
			defer cancel()
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
