package dataset

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/riskdash/riskdash/internal/domain/risk"
)

type Service struct {
	store      Store
	classifier *risk.Classifier
}

func NewService(store Store, classifier *risk.Classifier) *Service {
	return &Service{store: store, classifier: classifier}
}

// Classifier returns the classifier this service annotates records with.
func (s *Service) Classifier() *risk.Classifier { return s.classifier }

// Ingest parses an uploaded CSV and registers it as a new dataset.
func (s *Service) Ingest(ctx context.Context, name string, r io.Reader) (*Dataset, error) {
	columns, records, err := ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("ingest %q: %w", name, err)
	}

	d := &Dataset{
		ID:         uuid.New(),
		Name:       name,
		Columns:    columns,
		Records:    records,
		UploadedAt: time.Now(),
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Dataset, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	datasets, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(datasets))
	for i, d := range datasets {
		out[i] = d.Summary()
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Records returns the labeled, filtered view of a dataset, paginated. The
// label is recomputed on every read.
func (s *Service) Records(ctx context.Context, id uuid.UUID, selector Selector, limit, offset int) ([]LabeledRecord, int, error) {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	filtered := FilterRecords(d.Records, s.classifier, selector)
	total := len(filtered)
	if offset >= total {
		return []LabeledRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

// Export writes the labeled, filtered view of a dataset as CSV.
func (s *Service) Export(ctx context.Context, id uuid.UUID, selector Selector, w io.Writer) error {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return WriteCSV(w, d.Columns, FilterRecords(d.Records, s.classifier, selector))
}

// FindRecord looks up a single labeled record by patient identifier.
func (s *Service) FindRecord(ctx context.Context, id uuid.UUID, patientID string) (*LabeledRecord, error) {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, rec := range Annotate(d.Records, s.classifier) {
		if rec.PatientID == patientID {
			r := rec
			return &r, nil
		}
	}
	return nil, fmt.Errorf("patient %s not found in dataset %s", patientID, id)
}
