package store

import (
	"context"
	"errors"
	"time"

	"github.com/JadonKrys/file-catalog/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger forwards GORM output to the service logger.
type gormLogger struct {
	log   log.LoggerService
	level logger.LogLevel
	slow  time.Duration
}

func newGormLogger(l log.LoggerService, level logger.LogLevel) logger.Interface {
	return &gormLogger{
		log:   l,
		level: level,
		slow:  200 * time.Millisecond,
	}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if g.level >= logger.Info {
		g.log.Debug(msg, data...)
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if g.level >= logger.Warn {
		g.log.Warn(msg, data...)
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if g.level >= logger.Error {
		g.log.Error(msg, data...)
	}
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		sql, rows := fc()
		g.log.Error("%s [%s, rows=%d]: %v", sql, elapsed, rows, err)
	case elapsed > g.slow && g.level >= logger.Warn:
		sql, rows := fc()
		g.log.Warn("slow query %s [%s, rows=%d]", sql, elapsed, rows)
	case g.level >= logger.Info:
		sql, rows := fc()
		g.log.Debug("%s [%s, rows=%d]", sql, elapsed, rows)
	}
}
