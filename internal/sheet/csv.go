package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
)

// readCSV reads a delimited export; the first record is the header. CSV
// headers are always text.
func readCSV(r io.Reader) (*coverage.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv file is empty")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]coverage.Column, len(header))
	for i, h := range header {
		columns[i] = coverage.Column{Name: strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rows = append(rows, record)
	}

	return &coverage.Table{Columns: columns, Rows: dataRows(rows, len(columns))}, nil
}
