package coverage

import "fmt"

// BuildSummary zips the monthly aggregates with their DOC values.
func BuildSummary(aggs []MonthlyAggregate, docDays []float64) ([]SummaryRow, error) {
	if len(aggs) != len(docDays) {
		return nil, fmt.Errorf("summary misaligned: %d months, %d doc values", len(aggs), len(docDays))
	}

	rows := make([]SummaryRow, len(aggs))
	for i, a := range aggs {
		rows[i] = SummaryRow{
			Month:   a.Month,
			Stock:   a.Stock,
			Demand:  a.Demand,
			DOCDays: docDays[i],
		}
	}
	return rows, nil
}
