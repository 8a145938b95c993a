package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/log"
	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "f:"

// BadgerConfig holds Badger-specific configuration
type BadgerConfig struct {
	Path     string
	InMemory bool
	Logger   log.LoggerService
}

// BadgerStore implements RecordStore on an embedded Badger key-value
// database. Each record is stored under "f:<id>" as canonical JSON without
// the identifier.
type BadgerStore struct {
	cfg BadgerConfig
	db  *badger.DB
}

func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if cfg.Path == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger path is required")
	}
	return &BadgerStore{cfg: cfg}, nil
}

func (s *BadgerStore) Connect(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	opts := badger.DefaultOptions(s.cfg.Path)
	if s.cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	if s.cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{log: s.cfg.Logger.Named("badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open badger database: %w", err)
	}
	s.db = db
	return nil
}

func (s *BadgerStore) Close() error {
	if s.db == nil || s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// Migrate is a no-op; documents carry no schema.
func (s *BadgerStore) Migrate(ctx context.Context) error {
	return nil
}

func (s *BadgerStore) Health(ctx context.Context) error {
	if s.db == nil || s.db.IsClosed() {
		return errors.New("badger database is not open")
	}
	return ctx.Err()
}

func badgerKey(id string) []byte {
	return []byte(badgerPrefix + id)
}

func (s *BadgerStore) List(ctx context.Context, filter Filter, limit, start int) ([]Summary, error) {
	p, err := filter.prepare()
	if err != nil {
		return nil, err
	}

	var out []Summary
	err = s.scan(ctx, p, func(id string, doc models.Metadata) bool {
		out = append(out, Summary{ID: id, UID: doc.UID()})
		return true
	})
	if err != nil {
		return nil, err
	}
	return paginate(out, limit, start), nil
}

func (s *BadgerStore) Get(ctx context.Context, id string) (models.Metadata, error) {
	key, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}

	var doc models.Metadata
	err = s.db.View(func(txn *badger.Txn) error {
		doc, err = readDocument(txn, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return withID(key, doc), nil
}

func (s *BadgerStore) Find(ctx context.Context, filter Filter) (models.Metadata, error) {
	p, err := filter.prepare()
	if err != nil {
		return nil, err
	}

	var found models.Metadata
	err = s.scan(ctx, p, func(id string, doc models.Metadata) bool {
		found = withID(id, doc)
		return false
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// scan walks records in key order and calls fn for each match until fn
// returns false.
func (s *BadgerStore) scan(ctx context.Context, p *prepared, fn func(id string, doc models.Metadata) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		if p.hasID {
			doc, err := readDocument(txn, p.id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if p.matches(p.id, doc) {
				fn(p.id, doc)
			}
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			id := string(item.Key()[len(badgerPrefix):])

			var doc models.Metadata
			err := item.Value(func(val []byte) error {
				var err error
				doc, err = models.Decode(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to decode record %s: %w", id, err)
			}
			if p.matches(id, doc) && !fn(id, doc) {
				return nil
			}
		}
		return nil
	})
}

func readDocument(txn *badger.Txn, id string) (models.Metadata, error) {
	item, err := txn.Get(badgerKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc models.Metadata
	err = item.Value(func(val []byte) error {
		doc, err = models.Decode(val)
		return err
	})
	return doc, err
}

func (s *BadgerStore) Create(ctx context.Context, md models.Metadata) (string, error) {
	id, err := NewID()
	if err != nil {
		return "", err
	}

	doc, err := models.Canonical(md.Without(models.FieldID))
	if err != nil {
		return "", notAcknowledged("create", id, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(id), doc)
	})
	if err != nil {
		return "", notAcknowledged("create", id, err)
	}
	return id, nil
}

func (s *BadgerStore) Update(ctx context.Context, id string, fields models.Metadata) error {
	return s.write("update", id, func(current models.Metadata) models.Metadata {
		current.Merge(fields.Without(models.FieldID))
		return current
	})
}

func (s *BadgerStore) Replace(ctx context.Context, id string, md models.Metadata) error {
	return s.write("replace", id, func(models.Metadata) models.Metadata {
		return md.Without(models.FieldID)
	})
}

func (s *BadgerStore) write(op, id string, apply func(models.Metadata) models.Metadata) error {
	key, err := NormalizeID(id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		current, err := readDocument(txn, key)
		if err != nil {
			return err
		}
		doc, err := models.Canonical(apply(current))
		if err != nil {
			return err
		}
		return txn.Set(badgerKey(key), doc)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
		return notAcknowledged(op, key, err)
	}
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	key, err := NormalizeID(id)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerKey(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(badgerKey(key))
	})
}

// badgerLogger adapts the service logger to badger.Logger.
type badgerLogger struct {
	log log.LoggerService
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(trimNewline(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(trimNewline(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(trimNewline(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(trimNewline(format), args...)
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}
