package scheduling

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemoryAttemptRepo keeps attempts for the lifetime of the process. It is
// the default when no database is configured.
type InMemoryAttemptRepo struct {
	mu       sync.RWMutex
	attempts []*Attempt
}

func NewInMemoryAttemptRepo() *InMemoryAttemptRepo {
	return &InMemoryAttemptRepo{}
}

func (r *InMemoryAttemptRepo) Create(_ context.Context, a *Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
	return nil
}

func (r *InMemoryAttemptRepo) GetByID(_ context.Context, id uuid.UUID) (*Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.attempts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("attempt %s not found", id)
}

func (r *InMemoryAttemptRepo) List(_ context.Context, patientID string, limit, offset int) ([]*Attempt, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*Attempt, 0, len(r.attempts))
	// newest first
	for i := len(r.attempts) - 1; i >= 0; i-- {
		a := r.attempts[i]
		if patientID != "" && a.PatientID != patientID {
			continue
		}
		matched = append(matched, a)
	}

	total := len(matched)
	if offset >= total {
		return []*Attempt{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
