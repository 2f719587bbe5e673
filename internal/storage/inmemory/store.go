package inmemory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/storage"
)

// Store implements storage.Storage in memory.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.Record
	order   []string // ids in insertion order
}

// New creates an empty in-memory collection.
func New() *Store {
	return &Store{
		records: make(map[string]*domain.Record),
	}
}

// clone detaches stored records from callers.
func clone(r *domain.Record) *domain.Record {
	c := *r
	c.Ingredients = append(domain.Ingredients{}, r.Ingredients...)
	return &c
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.records[id]))
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(r), nil
}

func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.Record, len(ids))
	for _, id := range ids {
		if r, ok := s.records[id]; ok {
			out[id] = clone(r)
		}
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, fields domain.Fields) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &domain.Record{
		ID:           uuid.NewString(),
		Title:        fields.Title,
		Description:  fields.Description,
		Instructions: fields.Instructions,
		Ingredients:  fields.Ingredients,
	}
	s.records[r.ID] = clone(r)
	s.order = append(s.order, r.ID)
	return r, nil
}

func (s *Store) Update(ctx context.Context, id string, fields domain.Fields) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	r.Title = fields.Title
	r.Description = fields.Description
	r.Instructions = fields.Instructions
	r.Ingredients = append(domain.Ingredients{}, fields.Ingredients...)
	return clone(r), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return nil
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Backend hands out one in-memory Store per collection.
type Backend struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	return &Backend{stores: make(map[string]*Store)}
}

// Open returns the collection for kind, creating it on first use.
func (b *Backend) Open(ctx context.Context, kind domain.Kind) (storage.Storage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.stores[kind.Collection]
	if !ok {
		s = New()
		b.stores[kind.Collection] = s
	}
	return s, nil
}

func (b *Backend) Close(ctx context.Context) error {
	return nil
}
