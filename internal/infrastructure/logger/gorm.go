package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes GORM output through zap with request correlation.
type GormLogger struct {
	logger *zap.Logger
	level  gormlogger.LogLevel
	slow   time.Duration
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a query is logged as slow.
// Zero disables slow query logging.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = threshold }
}

// NewGormLogger returns a GORM logger writing to a "gorm" child of zapLogger.
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{logger: zapLogger.Named("gorm"), level: level, slow: defaultSlowQuery}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		For(ctx, l.logger).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		For(ctx, l.logger).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		For(ctx, l.logger).Sugar().Errorf(msg, data...)
	}
}

// Trace logs one statement. Missing rows are not errors here; repositories
// turn them into NOT_FOUND. Cancelled contexts log at warn.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var msg string
	level := gormlogger.Info
	switch {
	case errors.Is(err, gormlogger.ErrRecordNotFound):
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		msg, level = "SQL Cancelled", gormlogger.Warn
	case err != nil:
		msg, level = "SQL Error", gormlogger.Error
	case l.slow > 0 && elapsed > l.slow:
		msg, level = "Slow SQL", gormlogger.Warn
	default:
		msg = "SQL Query"
	}
	if l.level < level {
		return
	}

	sql, rows := fc()
	log := For(ctx, l.logger)
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	switch level {
	case gormlogger.Error:
		log.Error(msg, append(fields, zap.Error(err))...)
	case gormlogger.Warn:
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		log.Warn(msg, append(fields, zap.Duration("threshold", l.slow))...)
	default:
		log.Debug(msg, fields...)
	}
}

// MapGormLogLevel parses a configured level. Unknown values map to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
