package dataset

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store holds uploaded datasets for the lifetime of an operator session.
type Store interface {
	Create(ctx context.Context, d *Dataset) error
	GetByID(ctx context.Context, id uuid.UUID) (*Dataset, error)
	List(ctx context.Context) ([]*Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InMemoryStore is a thread-safe, in-memory Store. Each server process owns
// its own copy of the uploaded data; nothing is persisted.
type InMemoryStore struct {
	mu       sync.RWMutex
	datasets map[uuid.UUID]*Dataset
	// ordered keys for deterministic listing
	order []uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{datasets: make(map[uuid.UUID]*Dataset)}
}

func (s *InMemoryStore) Create(_ context.Context, d *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[d.ID] = d
	s.order = append(s.order, d.ID)
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("dataset %s not found", id)
	}
	return d, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Dataset, 0, len(s.order))
	for _, id := range s.order {
		if d := s.datasets[id]; d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return fmt.Errorf("dataset %s not found", id)
	}
	delete(s.datasets, id)
	for i, did := range s.order {
		if did == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
