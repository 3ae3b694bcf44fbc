package logger

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pentol/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewFromConfig(t *testing.T) {
	l, err := NewFromConfig(
		config.AppConfig{Name: "pentol-backend", Env: "development"},
		config.LogConfig{Level: "debug", Format: "json", Output: "stderr"},
	)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestL_EnrichesWithActorFields(t *testing.T) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	base := zap.New(zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel))

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, _ = WithUserID(ctx, base, "user-1")
	ctx, _ = WithActor(ctx, base, "mandor", "div-1")
	ctx = WithContext(ctx, base)

	L(ctx).Info("record approved", zap.String("record_id", "r-1"))

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":"user-1"`)
	assert.Contains(t, out, `"role":"mandor"`)
	assert.Contains(t, out, `"divisi_id":"div-1"`)
	assert.Contains(t, out, `"record_id":"r-1"`)
}

func TestWithActor_EmptyDivision(t *testing.T) {
	ctx, l := WithActor(context.Background(), zap.NewNop(), "estate_manager", "")
	assert.NotNil(t, l)
	assert.Equal(t, "estate_manager", GetRole(ctx))
	assert.Empty(t, GetDivisiID(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestGinMiddleware_PropagatesRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("request_id", "req-42") })
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/ping", func(c *gin.Context) {
		assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
		L(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	inside := recorded.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	assert.Equal(t, "req-42", inside[0].ContextMap()["request_id"])

	req := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, req, 1)
	assert.Equal(t, int64(http.StatusNoContent), req[0].ContextMap()["status"])
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	logs := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, logs, 2)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"ERR_INTERNAL"`)
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestFor_AddsTraceAndRequestFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	ctx, _ = WithRequestID(ctx, zap.NewNop(), "req-7")

	For(ctx, zap.New(core)).Info("spb created")
	For(context.Background(), zap.New(core)).Info("bare")

	entries := recorded.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
	assert.Empty(t, entries[1].ContextMap())
}

func TestWithUserID_DoesNotLeakToParent(t *testing.T) {
	parent, _ := WithRequestID(context.Background(), zap.NewNop(), "req-1")
	child, _ := WithUserID(parent, zap.NewNop(), "user-9")

	assert.Equal(t, "user-9", GetUserID(child))
	assert.Equal(t, "req-1", GetRequestID(child))
	assert.Empty(t, GetUserID(parent))
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)
	fc := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), timeNowMinus(0), fc, nil)
	gl.Trace(context.Background(), timeNowMinus(0), fc, context.DeadlineExceeded)
	gl.Trace(context.Background(), timeNowMinus(0), fc, gormlogger.ErrRecordNotFound)
	gl.Trace(context.Background(), timeNowMinus(0), fc, assert.AnError)

	assert.Equal(t, 1, recorded.FilterMessage("SQL Query").Len())
	assert.Equal(t, 1, recorded.FilterMessage("SQL Cancelled").Len())
	assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())
}

func TestGormLogger_SlowQuery(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
	fc := func() (string, int64) { return "SELECT * FROM harvest_records", 40 }

	gl.Trace(context.Background(), timeNowMinus(time.Second), fc, nil)
	gl.Trace(context.Background(), timeNowMinus(0), fc, nil)

	slow := recorded.FilterMessage("Slow SQL").All()
	require.Len(t, slow, 1)
	assert.Equal(t, int64(40), slow[0].ContextMap()["rows"])
	assert.Zero(t, recorded.FilterMessage("SQL Query").Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}

func timeNowMinus(d time.Duration) time.Time {
	return time.Now().Add(-d)
}
