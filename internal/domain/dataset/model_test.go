package dataset

import (
	"testing"

	"github.com/riskdash/riskdash/internal/domain/risk"
)

func sampleRecords() []Record {
	return []Record{
		{PatientID: "P1", TotalRiskScore: 0.92},
		{PatientID: "P2", TotalRiskScore: 0.31},
		{PatientID: "P3", TotalRiskScore: 0.7},
		{PatientID: "P4", TotalRiskScore: 0.71},
		{PatientID: "P5", TotalRiskScore: 0.05},
	}
}

func TestParseSelector(t *testing.T) {
	cases := []struct {
		in   string
		want Selector
	}{
		{"", SelectAll},
		{"all", SelectAll},
		{"All", SelectAll},
		{"high", SelectHighRisk},
		{"High Risk", SelectHighRisk},
		{"low", SelectLowRisk},
		{"low-risk", SelectLowRisk},
	}
	for _, tc := range cases {
		got, err := ParseSelector(tc.in)
		if err != nil {
			t.Errorf("ParseSelector(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSelector(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseSelector_Invalid(t *testing.T) {
	if _, err := ParseSelector("medium"); err == nil {
		t.Error("expected error for invalid selector")
	}
}

func TestFilterRecords_AllIsIdentity(t *testing.T) {
	records := sampleRecords()
	classifier := risk.NewClassifier(risk.DefaultThreshold)

	got := FilterRecords(records, classifier, SelectAll)
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i, rec := range got {
		if rec.PatientID != records[i].PatientID {
			t.Errorf("position %d: expected %s, got %s", i, records[i].PatientID, rec.PatientID)
		}
	}
}

func TestFilterRecords_HighRiskSubsetInOrder(t *testing.T) {
	records := sampleRecords()
	classifier := risk.NewClassifier(risk.DefaultThreshold)

	got := FilterRecords(records, classifier, SelectHighRisk)
	want := []string{"P1", "P4"}
	if len(got) != len(want) {
		t.Fatalf("expected %d high-risk records, got %d", len(want), len(got))
	}
	for i, rec := range got {
		if rec.PatientID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], rec.PatientID)
		}
		if rec.RiskLabel != risk.HighRisk {
			t.Errorf("%s: expected High Risk label, got %s", rec.PatientID, rec.RiskLabel)
		}
	}
}

func TestFilterRecords_PartitionExact(t *testing.T) {
	records := sampleRecords()
	classifier := risk.NewClassifier(risk.DefaultThreshold)

	high := FilterRecords(records, classifier, SelectHighRisk)
	low := FilterRecords(records, classifier, SelectLowRisk)

	if len(high)+len(low) != len(records) {
		t.Fatalf("expected partition of %d records, got %d + %d", len(records), len(high), len(low))
	}

	seen := map[string]bool{}
	for _, r := range high {
		seen[r.PatientID] = true
	}
	for _, r := range low {
		if seen[r.PatientID] {
			t.Errorf("%s appears in both subsets", r.PatientID)
		}
		seen[r.PatientID] = true
	}
	for _, r := range records {
		if !seen[r.PatientID] {
			t.Errorf("%s missing from partition", r.PatientID)
		}
	}
}

func TestFilterRecords_BoundaryScoreIsLowRisk(t *testing.T) {
	classifier := risk.NewClassifier(risk.DefaultThreshold)
	got := FilterRecords([]Record{{PatientID: "P3", TotalRiskScore: 0.7}}, classifier, SelectLowRisk)
	if len(got) != 1 {
		t.Fatalf("expected boundary score to be low risk, got %d low-risk records", len(got))
	}
}

func TestFilterRecords_EmptyInput(t *testing.T) {
	classifier := risk.NewClassifier(risk.DefaultThreshold)
	if got := FilterRecords(nil, classifier, SelectHighRisk); len(got) != 0 {
		t.Errorf("expected empty output for empty input, got %d", len(got))
	}
}

func TestFilterRecords_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	classifier := risk.NewClassifier(risk.DefaultThreshold)
	FilterRecords(records, classifier, SelectHighRisk)
	if records[0].PatientID != "P1" || records[0].TotalRiskScore != 0.92 {
		t.Error("expected input records to be untouched")
	}
}

func TestAnnotate_ThresholdChangeRecomputesLabels(t *testing.T) {
	records := []Record{{PatientID: "P2", TotalRiskScore: 0.6}}

	strict := Annotate(records, risk.NewClassifier(0.7))
	if strict[0].RiskLabel != risk.LowRisk {
		t.Errorf("expected Low Risk at threshold 0.7, got %s", strict[0].RiskLabel)
	}

	loose := Annotate(records, risk.NewClassifier(0.5))
	if loose[0].RiskLabel != risk.HighRisk {
		t.Errorf("expected High Risk at threshold 0.5, got %s", loose[0].RiskLabel)
	}
}
