package store

import (
	"fmt"

	config "github.com/JadonKrys/file-catalog/internal/config/server"
	"github.com/JadonKrys/file-catalog/pkg/log"
	"gorm.io/gorm/logger"
)

// New builds the configured backend wrapped in a bounded worker pool.
// The returned store is not connected yet.
func New(cfg config.MetadataServerConfig, l log.LoggerService) (RecordStore, error) {
	var inner RecordStore

	switch cfg.Type {
	case "sqlite":
		level := logger.Warn
		if l.Enabled(log.Debug) {
			level = logger.Info
		}
		s, err := NewSQLiteStore(SQLiteConfig{
			Path:     cfg.SQLite.Path,
			LogLevel: level,
			Logger:   l,
		})
		if err != nil {
			return nil, err
		}
		inner = s
	case "badger":
		s, err := NewBadgerStore(BadgerConfig{
			Path:     cfg.Badger.Path,
			InMemory: cfg.Badger.InMemory,
			Logger:   l,
		})
		if err != nil {
			return nil, err
		}
		inner = s
	case "memory":
		inner = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported metadata store type: %q", cfg.Type)
	}

	return Bounded(inner, cfg.Workers), nil
}
