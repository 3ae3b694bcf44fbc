package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type loggerKey struct{}

type scopeKey struct{}

// scope is the request identity carried through a context. It is copied on
// every update so parent contexts never observe later changes.
type scope struct {
	requestID string
	userID    string
	role      string
	divisiID  string
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// WithContext stores logger in ctx. The stored logger stays free of request
// fields; L and For add them at log time.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request id in ctx and returns logger with it attached.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	s := scopeFrom(ctx)
	s.requestID = requestID
	return context.WithValue(ctx, scopeKey{}, s), logger.With(zap.String("request_id", requestID))
}

// WithUserID records the authenticated user in ctx.
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	s := scopeFrom(ctx)
	s.userID = userID
	return context.WithValue(ctx, scopeKey{}, s), logger.With(zap.String("user_id", userID))
}

// WithActor records the actor's role and division. An empty divisiID is
// left out of the returned logger.
func WithActor(ctx context.Context, logger *zap.Logger, role, divisiID string) (context.Context, *zap.Logger) {
	s := scopeFrom(ctx)
	s.role, s.divisiID = role, divisiID
	fields := []zap.Field{zap.String("role", role)}
	if divisiID != "" {
		fields = append(fields, zap.String("divisi_id", divisiID))
	}
	return context.WithValue(ctx, scopeKey{}, s), logger.With(fields...)
}

func GetRequestID(ctx context.Context) string { return scopeFrom(ctx).requestID }

func GetUserID(ctx context.Context) string { return scopeFrom(ctx).userID }

func GetRole(ctx context.Context) string { return scopeFrom(ctx).role }

func GetDivisiID(ctx context.Context) string { return scopeFrom(ctx).divisiID }

// GetTraceID returns the active trace id, or "".
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// For returns base with the trace and request identity of ctx attached.
// Services hold their own logger and call For on each log line so entries
// correlate with the HTTP access log.
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	fields := make([]zap.Field, 0, 6)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	s := scopeFrom(ctx)
	for _, f := range []struct{ key, value string }{
		{"request_id", s.requestID},
		{"user_id", s.userID},
		{"role", s.role},
		{"divisi_id", s.divisiID},
	} {
		if f.value != "" {
			fields = append(fields, zap.String(f.key, f.value))
		}
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// L is For applied to the logger stored in ctx.
func L(ctx context.Context) *zap.Logger {
	return For(ctx, FromContext(ctx))
}
