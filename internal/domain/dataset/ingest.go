package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	patientIDColumn = "patient_id"
	riskScoreColumn = "total_risk_score"
)

// ParseCSV reads an uploaded patient table. The header must contain
// patient_id and total_risk_score; every other column passes through
// unmodified into Record.Extra. Rows are kept in file order.
func ParseCSV(r io.Reader) ([]string, []Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("empty upload")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	idIdx, scoreIdx := -1, -1
	for i, col := range header {
		name := strings.TrimSpace(col)
		columns[i] = name
		switch name {
		case patientIDColumn:
			idIdx = i
		case riskScoreColumn:
			scoreIdx = i
		}
	}
	if idIdx < 0 {
		return nil, nil, fmt.Errorf("missing required column %q", patientIDColumn)
	}
	if scoreIdx < 0 {
		return nil, nil, fmt.Errorf("missing required column %q", riskScoreColumn)
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		score, err := strconv.ParseFloat(strings.TrimSpace(row[scoreIdx]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid %s %q", line, riskScoreColumn, row[scoreIdx])
		}

		rec := Record{
			PatientID:      strings.TrimSpace(row[idIdx]),
			TotalRiskScore: score,
		}
		for i, val := range row {
			if i == idIdx || i == scoreIdx {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[columns[i]] = val
		}
		records = append(records, rec)
	}

	return columns, records, nil
}

// WriteCSV renders labeled records back out as CSV for download. Columns
// appear in the original upload order with risk_label appended.
func WriteCSV(w io.Writer, columns []string, records []LabeledRecord) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, columns...), "risk_label")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := make([]string, 0, len(header))
		for _, col := range columns {
			switch col {
			case patientIDColumn:
				row = append(row, rec.PatientID)
			case riskScoreColumn:
				row = append(row, strconv.FormatFloat(rec.TotalRiskScore, 'g', -1, 64))
			default:
				row = append(row, rec.Extra[col])
			}
		}
		row = append(row, string(rec.RiskLabel))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
