package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool          // Enable database tracing
	LogFullSQL      bool          // Include query variables in spans (dev only)
	SlowQueryThresh time.Duration // Threshold for marking queries as slow (default: 200ms)
	DBSystem        string        // Database system name (default: "postgresql")
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// DBTracingPlugin registers otelgorm plus slow query detection on a GORM DB.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = DefaultDBTracingConfig().SlowQueryThresh
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = DefaultDBTracingConfig().DBSystem
	}
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Register installs the otelgorm plugin and the timing callbacks.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := p.RegisterTimingCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// RegisterTimingCallbacks installs the before/after callbacks used for slow
// query detection.
func (p *DBTracingPlugin) RegisterTimingCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	register := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("otel_timing:before_create", p.markStart) },
		func() error { return cb.Query().Before("gorm:query").Register("otel_timing:before_query", p.markStart) },
		func() error { return cb.Update().Before("gorm:update").Register("otel_timing:before_update", p.markStart) },
		func() error { return cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", p.markStart) },
		func() error { return cb.Row().Before("gorm:row").Register("otel_timing:before_row", p.markStart) },
		func() error { return cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", p.markStart) },
		func() error { return cb.Create().After("gorm:create").Register("otel_timing:after_create", p.afterQuery) },
		func() error { return cb.Query().After("gorm:query").Register("otel_timing:after_query", p.afterQuery) },
		func() error { return cb.Update().After("gorm:update").Register("otel_timing:after_update", p.afterQuery) },
		func() error { return cb.Delete().After("gorm:delete").Register("otel_timing:after_delete", p.afterQuery) },
		func() error { return cb.Row().After("gorm:row").Register("otel_timing:after_row", p.afterQuery) },
		func() error { return cb.Raw().After("gorm:raw").Register("otel_timing:after_raw", p.afterQuery) },
	}
	for _, fn := range register {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (p *DBTracingPlugin) markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, p.now())
	}
}

// afterQuery annotates the current span and logs queries over the threshold.
func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	var elapsed time.Duration
	startTime, timed := ctx.Value(queryStartTimeKey).(time.Time)
	if timed {
		elapsed = p.now().Sub(startTime)
	}
	slow := timed && elapsed > p.config.SlowQueryThresh

	if slow {
		p.logger.Warn("Slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows_affected", db.Statement.RowsAffected),
			zap.String("trace_id", GetTraceID(ctx)),
		)
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
	if slow {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
