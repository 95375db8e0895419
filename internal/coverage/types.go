package coverage

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Column is one header cell of the input table.
type Column struct {
	Name string    // header text as it appears in the sheet
	Date time.Time // set when the header cell holds a calendar value
}

// IsDate reports whether the header carried a structured calendar value.
func (c Column) IsDate() bool {
	return !c.Date.IsZero()
}

// Table is the rectangular planning export handed over by the reader.
// Rows are aligned with Columns; short rows are treated as empty cells.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Cell returns the raw text at row r, column c or "" when out of range.
func (t *Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) {
		return ""
	}
	row := t.Rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

// Quantity is a numeric cell value that may be missing.
type Quantity struct {
	Value float64
	Valid bool
}

// Known returns a valid Quantity.
func Known(v float64) Quantity {
	return Quantity{Value: v, Valid: true}
}

// OrZero returns the value, or 0 when missing.
func (q Quantity) OrZero() float64 {
	if !q.Valid {
		return 0
	}
	return q.Value
}

var quantitySanitizer = strings.NewReplacer(",", "", " ", "", "\u00a0", "")

// ParseQuantity coerces a raw cell into a Quantity. Anything that is not a
// finite number becomes missing.
func ParseQuantity(raw string) Quantity {
	v := quantitySanitizer.Replace(strings.TrimSpace(raw))
	if v == "" {
		return Quantity{}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Quantity{}
	}
	return Known(f)
}

// MonthColumn pairs a header with the month it resolves to.
type MonthColumn struct {
	Index  int       `json:"index"`  // position in Table.Columns
	Header string    `json:"header"` // original header text
	Month  time.Time `json:"month"`  // first day of the month, UTC
}

// LongRow is one (row x month) cell after reshaping.
type LongRow struct {
	Location string
	Category string
	Class    Class
	Month    time.Time
	Value    Quantity
}

// MonthlyAggregate holds the two series values of one month.
type MonthlyAggregate struct {
	Month  time.Time
	Stock  float64
	Demand float64
}

// SummaryRow is one line of the DOC result table.
type SummaryRow struct {
	Month   time.Time `json:"month"`
	Stock   float64   `json:"monthly_projected_stock"`
	Demand  float64   `json:"monthly_consensus_demand"`
	DOCDays float64   `json:"doc_days"`
}

// LabelMatch shows how a distinct category label was classified.
type LabelMatch struct {
	Label      string `json:"label"`
	Normalized string `json:"normalized"`
	Class      Class  `json:"class"`
}

// Stats counts what the run saw. Rows counts input rows, every other field
// counts long rows.
type Stats struct {
	Rows         int `json:"rows"`
	LongRows     int `json:"long_rows"`
	StockRows    int `json:"stock_rows"`
	DemandRows   int `json:"demand_rows"`
	Unclassified int `json:"unclassified"`
}

// Result is the output of a single calculator run.
type Result struct {
	Months             []MonthColumn `json:"months"`
	Summary            []SummaryRow  `json:"summary"`
	Labels             []LabelMatch  `json:"labels"`
	Warnings           []string      `json:"warnings,omitempty"`
	NaiveFirstMonthDOC *float64      `json:"naive_first_month_doc,omitempty"`
	Stats              Stats         `json:"stats"`
}

// monthStart truncates t to the first day of its month in UTC.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
