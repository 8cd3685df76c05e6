package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// AttemptRepository records every scheduling try for later diagnosis.
type AttemptRepository interface {
	Create(ctx context.Context, a *Attempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*Attempt, error)
	// List returns attempts newest first. An empty patientID matches all.
	List(ctx context.Context, patientID string, limit, offset int) ([]*Attempt, int, error)
}
