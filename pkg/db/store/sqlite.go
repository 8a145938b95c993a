package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JadonKrys/file-catalog/pkg/db/migrations"
	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/log"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements RecordStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
	Logger   log.LoggerService
}

// NewSQLiteStore creates a new SQLite-backed record store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	var gormLog logger.Interface = logger.Default.LogMode(cfg.LogLevel)
	if cfg.Logger != nil {
		gormLog = newGormLogger(cfg.Logger.Named("sqlite"), cfg.LogLevel)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormLog,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if err := s.db.WithContext(ctx).Exec(pragma).Error; err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Record operations

func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit, start int) ([]Summary, error) {
	p, err := filter.prepare()
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, p)
	if err != nil {
		return nil, err
	}

	var out []Summary
	for _, row := range rows {
		doc, err := row.Metadata()
		if err != nil {
			return nil, err
		}
		if p.matches(row.ID, doc) {
			out = append(out, Summary{ID: row.ID, UID: row.UID})
		}
	}
	return paginate(out, limit, start), nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (models.Metadata, error) {
	key, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}

	var file models.File
	err = s.db.WithContext(ctx).Where("id = ?", key).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return file.Metadata()
}

func (s *SQLiteStore) Find(ctx context.Context, filter Filter) (models.Metadata, error) {
	p, err := filter.prepare()
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, p)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		doc, err := row.Metadata()
		if err != nil {
			return nil, err
		}
		if p.matches(row.ID, doc) {
			return doc, nil
		}
	}
	return nil, ErrNotFound
}

// query pushes the identifier and uid conditions down to SQL; the rest of
// the filter is evaluated on the decoded documents.
func (s *SQLiteStore) query(ctx context.Context, p *prepared) ([]models.File, error) {
	query := s.db.WithContext(ctx).Order("id")

	if p.hasID {
		query = query.Where("id = ?", p.id)
	}
	if p.hasUID {
		query = query.Where("uid = ?", p.uid)
	}

	var rows []models.File
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SQLiteStore) Create(ctx context.Context, md models.Metadata) (string, error) {
	id, err := NewID()
	if err != nil {
		return "", err
	}

	file, err := models.NewFile(id, md)
	if err != nil {
		return "", notAcknowledged("create", id, err)
	}

	result := s.db.WithContext(ctx).Create(file)
	if result.Error != nil {
		return "", notAcknowledged("create", id, result.Error)
	}
	if result.RowsAffected != 1 {
		return "", notAcknowledged("create", id, nil)
	}
	return id, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, fields models.Metadata) error {
	return s.write(ctx, "update", id, func(current models.Metadata) models.Metadata {
		current.Merge(fields.Without(models.FieldID))
		return current
	})
}

func (s *SQLiteStore) Replace(ctx context.Context, id string, md models.Metadata) error {
	return s.write(ctx, "replace", id, func(models.Metadata) models.Metadata {
		return md.Without(models.FieldID)
	})
}

func (s *SQLiteStore) write(ctx context.Context, op, id string, apply func(models.Metadata) models.Metadata) error {
	key, err := NormalizeID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file models.File
		err := tx.Where("id = ?", key).First(&file).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notAcknowledged(op, key, nil)
		}
		if err != nil {
			return notAcknowledged(op, key, err)
		}

		current, err := file.Metadata()
		if err != nil {
			return notAcknowledged(op, key, err)
		}
		if err := file.SetMetadata(apply(current)); err != nil {
			return notAcknowledged(op, key, err)
		}

		result := tx.Model(&models.File{}).Where("id = ?", key).Updates(map[string]any{
			"uid":      file.UID,
			"checksum": file.Checksum,
			"document": file.Document,
		})
		if result.Error != nil {
			return notAcknowledged(op, key, result.Error)
		}
		if result.RowsAffected == 0 {
			return notAcknowledged(op, key, nil)
		}
		return nil
	})
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	key, err := NormalizeID(id)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&models.File{}, "id = ?", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
