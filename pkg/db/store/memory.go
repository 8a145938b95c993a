package store

import (
	"context"
	"sort"
	"sync"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
)

// MemoryStore implements RecordStore on a map. Records are lost on Close.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Metadata
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.Metadata),
	}
}

func (s *MemoryStore) Connect(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]models.Metadata)
	return nil
}

func (s *MemoryStore) Migrate(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Health(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) List(ctx context.Context, filter Filter, limit, start int) ([]Summary, error) {
	p, err := filter.prepare()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Summary
	for _, id := range s.sortedIDs() {
		doc := s.records[id]
		if p.matches(id, doc) {
			out = append(out, Summary{ID: id, UID: doc.UID()})
		}
	}
	return paginate(out, limit, start), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Metadata, error) {
	key, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return withID(key, doc), nil
}

func (s *MemoryStore) Find(ctx context.Context, filter Filter) (models.Metadata, error) {
	p, err := filter.prepare()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.sortedIDs() {
		if doc := s.records[id]; p.matches(id, doc) {
			return withID(id, doc), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Create(ctx context.Context, md models.Metadata) (string, error) {
	doc, err := models.Normalize(md.Without(models.FieldID))
	if err != nil {
		return "", notAcknowledged("create", "", err)
	}
	id, err := NewID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = doc
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fields models.Metadata) error {
	return s.write("update", id, func(doc models.Metadata) (models.Metadata, error) {
		patch, err := models.Normalize(fields.Without(models.FieldID))
		if err != nil {
			return nil, err
		}
		doc.Merge(patch)
		return doc, nil
	})
}

func (s *MemoryStore) Replace(ctx context.Context, id string, md models.Metadata) error {
	return s.write("replace", id, func(models.Metadata) (models.Metadata, error) {
		return models.Normalize(md.Without(models.FieldID))
	})
}

func (s *MemoryStore) write(op, id string, apply func(models.Metadata) (models.Metadata, error)) error {
	key, err := NormalizeID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.records[key]
	if !ok {
		return notAcknowledged(op, key, nil)
	}
	next, err := apply(doc.Clone())
	if err != nil {
		return notAcknowledged(op, key, err)
	}
	s.records[key] = next
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	key, err := NormalizeID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; !ok {
		return ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// sortedIDs must be called with mu held.
func (s *MemoryStore) sortedIDs() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func withID(id string, doc models.Metadata) models.Metadata {
	out := doc.Clone()
	out[models.FieldID] = id
	return out
}
