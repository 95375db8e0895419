package coverage

import (
	"context"
	"strings"
)

const (
	DefaultSiteMarker     = "eip"
	DefaultLocationColumn = "Plant"
	DefaultCategoryColumn = "Key Figure"
)

// Options are the per-run settings supplied by the caller.
type Options struct {
	SiteMarker       string  `json:"site_marker"`
	UnitMultiplier   float64 `json:"unit_multiplier"`
	LocationColumn   string  `json:"location_column"`
	CategoryColumn   string  `json:"category_column"`
	AssumeSiteDemand bool    `json:"assume_site_demand"`
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SiteMarker:     DefaultSiteMarker,
		UnitMultiplier: 1,
		LocationColumn: DefaultLocationColumn,
		CategoryColumn: DefaultCategoryColumn,
	}
}

// WithDefaults fills empty fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if strings.TrimSpace(o.SiteMarker) == "" {
		o.SiteMarker = d.SiteMarker
	}
	if o.UnitMultiplier == 0 {
		o.UnitMultiplier = d.UnitMultiplier
	}
	if strings.TrimSpace(o.LocationColumn) == "" {
		o.LocationColumn = d.LocationColumn
	}
	if strings.TrimSpace(o.CategoryColumn) == "" {
		o.CategoryColumn = d.CategoryColumn
	}
	return o
}

// Calculator runs the DOC pipeline over one table at a time. It holds only
// read-only configuration and is safe for concurrent use.
type Calculator struct {
	opts       Options
	classifier *Classifier
}

// NewCalculator creates a calculator. A nil taxonomy selects DefaultTaxonomy.
func NewCalculator(opts Options, taxonomy *Taxonomy) *Calculator {
	return &Calculator{
		opts:       opts.WithDefaults(),
		classifier: NewClassifier(taxonomy),
	}
}

// Options returns the effective options.
func (c *Calculator) Options() Options {
	return c.opts
}

// Classifier returns the calculator's classifier.
func (c *Calculator) Classifier() *Classifier {
	return c.classifier
}

// Run computes the DOC summary for table. Input-shape problems are returned as
// errors wrapping ErrInputShape; every other condition is recovered.
func (c *Calculator) Run(ctx context.Context, table *Table) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields, err := ResolveFields(table.Columns, c.opts.LocationColumn, c.opts.CategoryColumn)
	if err != nil {
		return nil, err
	}

	months := DetectMonthColumns(table.Columns)
	if len(months) == 0 {
		return nil, ErrNoMonthColumns
	}

	long := Reshape(table, months, fields, c.classifier)

	result := &Result{
		Months: months,
		Labels: c.labelMatches(table, fields),
		Stats:  c.stats(table, long),
	}

	if result.Stats.StockRows == 0 && result.Stats.DemandRows == 0 {
		result.Summary = []SummaryRow{}
		result.Warnings = append(result.Warnings, WarnNoMatchingRows)
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aggs := Aggregate(long, monthAxis(months), AggregateOptions{
		SiteMarker:       c.opts.SiteMarker,
		UnitMultiplier:   c.opts.UnitMultiplier,
		AssumeSiteDemand: c.opts.AssumeSiteDemand,
	})

	summary, err := BuildSummary(aggs, SimulateSeries(aggs))
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	result.NaiveFirstMonthDOC = naiveFirstMonth(aggs)

	return result, nil
}

// labelMatches lists each distinct category label in first-seen order.
func (c *Calculator) labelMatches(table *Table, fields FieldBinding) []LabelMatch {
	seen := make(map[string]struct{})
	out := make([]LabelMatch, 0)
	for r := range table.Rows {
		label := table.Cell(r, fields.Category)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		normalized := NormalizeText(label)
		out = append(out, LabelMatch{
			Label:      label,
			Normalized: normalized,
			Class:      c.classifier.ClassifyNormalized(normalized),
		})
	}
	return out
}

func (c *Calculator) stats(table *Table, long []LongRow) Stats {
	s := Stats{Rows: len(table.Rows), LongRows: len(long)}
	marker := strings.ToLower(c.opts.SiteMarker)
	for _, r := range long {
		switch {
		case r.Class == ClassProjectedStock:
			s.StockRows++
		case r.Class == ClassConsensus && (c.opts.AssumeSiteDemand || isSite(r.Location, marker)):
			s.DemandRows++
		case r.Class == ClassUnclassified:
			s.Unclassified++
		}
	}
	return s
}

// naiveFirstMonth is the one-month-ahead estimate stock[0] / demand[1] * 30.
func naiveFirstMonth(aggs []MonthlyAggregate) *float64 {
	if len(aggs) < 2 || aggs[1].Demand <= 0 {
		return nil
	}
	v := aggs[0].Stock / aggs[1].Demand * DaysPerMonth
	return &v
}
