package domain

import (
	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
)

const dateLayout = "2006-01-02"

// CoverageReport is the JSON body returned by the analyze and demo endpoints.
type CoverageReport struct {
	Source             string           `json:"source"`
	Options            coverage.Options `json:"options"`
	Months             []MonthColumn    `json:"months"`
	Summary            []SummaryRow     `json:"summary"`
	Labels             []LabelMatch     `json:"labels"`
	Warnings           []string         `json:"warnings"`
	NaiveFirstMonthDOC *float64         `json:"naive_first_month_doc"`
	Stats              coverage.Stats   `json:"stats"`
	Cached             bool             `json:"cached"`
}

type MonthColumn struct {
	Header string `json:"header"`
	Month  string `json:"month"`
}

// SummaryRow carries both the raw numbers and their display strings.
type SummaryRow struct {
	Month                  string  `json:"month"`
	MonthlyProjectedStock  float64 `json:"monthly_projected_stock"`
	MonthlyConsensusDemand float64 `json:"monthly_consensus_demand"`
	DOCDays                float64 `json:"doc_days"`
	Display                Display `json:"display"`
}

type Display struct {
	MonthlyProjectedStock  string `json:"monthly_projected_stock"`
	MonthlyConsensusDemand string `json:"monthly_consensus_demand"`
	DOCDays                string `json:"doc_days"`
}

type LabelMatch struct {
	Label      string `json:"label"`
	Normalized string `json:"normalized"`
	Class      string `json:"class"`
	ClassLabel string `json:"class_label"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// NewCoverageReport converts a calculator result into its JSON form.
func NewCoverageReport(source string, opts coverage.Options, res *coverage.Result, cached bool) CoverageReport {
	report := CoverageReport{
		Source:             source,
		Options:            opts,
		Months:             make([]MonthColumn, 0, len(res.Months)),
		Summary:            make([]SummaryRow, 0, len(res.Summary)),
		Labels:             make([]LabelMatch, 0, len(res.Labels)),
		Warnings:           res.Warnings,
		NaiveFirstMonthDOC: res.NaiveFirstMonthDOC,
		Stats:              res.Stats,
		Cached:             cached,
	}
	if report.Warnings == nil {
		report.Warnings = []string{}
	}

	for _, m := range res.Months {
		report.Months = append(report.Months, MonthColumn{Header: m.Header, Month: m.Month.Format(dateLayout)})
	}
	for _, s := range res.Summary {
		report.Summary = append(report.Summary, SummaryRow{
			Month:                  s.Month.Format(dateLayout),
			MonthlyProjectedStock:  coverage.RoundFloat(s.Stock, 2),
			MonthlyConsensusDemand: coverage.RoundFloat(s.Demand, 2),
			DOCDays:                coverage.RoundFloat(s.DOCDays, 2),
			Display: Display{
				MonthlyProjectedStock:  coverage.FormatValue(s.Stock, 2),
				MonthlyConsensusDemand: coverage.FormatValue(s.Demand, 2),
				DOCDays:                coverage.FormatValue(s.DOCDays, 2),
			},
		})
	}
	for _, l := range res.Labels {
		report.Labels = append(report.Labels, LabelMatch{
			Label:      l.Label,
			Normalized: l.Normalized,
			Class:      l.Class.String(),
			ClassLabel: ClassLabel(l.Class),
		})
	}
	return report
}

// TaxonomyEntry is one class of the classifier taxonomy with its patterns.
type TaxonomyEntry struct {
	Class      string   `json:"class"`
	ClassLabel string   `json:"class_label"`
	Patterns   []string `json:"patterns"`
}

// NewTaxonomyEntries lists taxonomy in priority order.
func NewTaxonomyEntries(taxonomy *coverage.Taxonomy) []TaxonomyEntry {
	entries := taxonomy.Entries()
	out := make([]TaxonomyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, TaxonomyEntry{
			Class:      e.Class.String(),
			ClassLabel: ClassLabel(e.Class),
			Patterns:   e.Patterns,
		})
	}
	return out
}
