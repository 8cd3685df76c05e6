package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riskdash/riskdash/internal/domain/risk"
)

// Record is one immutable row of an uploaded patient table. Columns beyond
// the two required ones are carried through unmodified in Extra.
type Record struct {
	PatientID      string            `json:"patient_id"`
	TotalRiskScore float64           `json:"total_risk_score"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// LabeledRecord is a Record together with its derived risk label. The label
// is computed at read time and never persisted.
type LabeledRecord struct {
	PatientID      string            `json:"patient_id"`
	TotalRiskScore float64           `json:"total_risk_score"`
	RiskLabel      risk.Label        `json:"risk_label"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Dataset is one uploaded patient table, held in memory for the duration of
// an operator session.
type Dataset struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Columns    []string  `json:"columns"`
	Records    []Record  `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Summary is the upload/list view of a dataset: everything but the rows.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Columns     []string  `json:"columns"`
	RecordCount int       `json:"record_count"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func (d *Dataset) Summary() Summary {
	return Summary{
		ID:          d.ID,
		Name:        d.Name,
		Columns:     d.Columns,
		RecordCount: len(d.Records),
		UploadedAt:  d.UploadedAt,
	}
}

// Selector narrows a record listing to one risk level.
type Selector string

const (
	SelectAll      Selector = "all"
	SelectHighRisk Selector = "high"
	SelectLowRisk  Selector = "low"
)

// ParseSelector maps the filter control's value to a Selector. An empty
// value means all records.
func ParseSelector(s string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return SelectAll, nil
	case "high", "high risk", "high-risk":
		return SelectHighRisk, nil
	case "low", "low risk", "low-risk":
		return SelectLowRisk, nil
	default:
		return "", fmt.Errorf("invalid risk selector: %q", s)
	}
}

func (s Selector) label() risk.Label {
	if s == SelectHighRisk {
		return risk.HighRisk
	}
	return risk.LowRisk
}

// Annotate derives the risk label for every record, preserving order. The
// input is never mutated.
func Annotate(records []Record, classifier *risk.Classifier) []LabeledRecord {
	out := make([]LabeledRecord, len(records))
	for i, r := range records {
		out[i] = LabeledRecord{
			PatientID:      r.PatientID,
			TotalRiskScore: r.TotalRiskScore,
			RiskLabel:      classifier.Classify(r.TotalRiskScore),
			Extra:          r.Extra,
		}
	}
	return out
}

// FilterRecords returns the subsequence of records whose derived label
// matches the selector, in original relative order. SelectAll returns every
// record. An empty input yields an empty output.
func FilterRecords(records []Record, classifier *risk.Classifier, selector Selector) []LabeledRecord {
	annotated := Annotate(records, classifier)
	if selector == SelectAll {
		return annotated
	}

	want := selector.label()
	out := []LabeledRecord{}
	for _, r := range annotated {
		if r.RiskLabel == want {
			out = append(out, r)
		}
	}
	return out
}
