package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// gormAdapter implements gorm's logger.Interface on top of the package slog
// logger, so query logs share one output stream with the rest of the API.
type gormAdapter struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger builds a gorm logger that writes through slog. Queries slower
// than slowThreshold are logged at warn level.
func NewGormLogger(level gormlogger.LogLevel, slowThreshold time.Duration) gormlogger.Interface {
	return &gormAdapter{level: level, slowThreshold: slowThreshold}
}

func (a *gormAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *a
	clone.level = level
	return &clone
}

func (a *gormAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if a.level >= gormlogger.Info {
		Log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (a *gormAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if a.level >= gormlogger.Warn {
		Log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (a *gormAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if a.level >= gormlogger.Error {
		Log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (a *gormAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && a.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		Log.ErrorContext(ctx, "query failed",
			"error", err, "sql", sql, "rows", rows,
			"elapsed", elapsed, "caller", utils.FileWithLineNum())
	case a.slowThreshold > 0 && elapsed > a.slowThreshold && a.level >= gormlogger.Warn:
		sql, rows := fc()
		Log.WarnContext(ctx, "slow query",
			"sql", sql, "rows", rows,
			"elapsed", elapsed, "threshold", a.slowThreshold)
	case a.level >= gormlogger.Info:
		sql, rows := fc()
		Log.DebugContext(ctx, "query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
