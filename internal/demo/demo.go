// Package demo builds a synthetic planning export for trying out the
// calculator without real data.
package demo

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
)

// Options controls the generated table.
type Options struct {
	Start  time.Time // first month; zero means January of the current year
	Months int       // number of month columns; zero means 12
	Seed   int64     // same seed, same table
}

// DefaultSeed is used by the CLI and the HTTP demo endpoint.
const DefaultSeed = 42

var plants = []string{"EIP01", "EIP02", "TR-IST", "TR-ANK"}

var keyFigures = []string{
	"Beginning Stock",
	"Transport Receipt",
	"Kısıtsız Consensus Sell-in Forecast / Malzeme Tüketim Mik.",
	"Recommended Order",
	"Unconstrained Projected Stock",
	"Unconstrained Days of Coverage",
}

// Table generates a planning export with one row per plant and key figure.
// Month headers alternate between structured dates and "YYYY-MM-DD 00:00:00"
// text so both header encodings are exercised.
func Table(opts Options) *coverage.Table {
	if opts.Months <= 0 {
		opts.Months = 12
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Date(time.Now().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)

	rng := rand.New(rand.NewSource(opts.Seed))

	columns := []coverage.Column{
		{Name: coverage.DefaultLocationColumn},
		{Name: coverage.DefaultCategoryColumn},
	}
	for i := 0; i < opts.Months; i++ {
		m := start.AddDate(0, i, 0)
		if i%2 == 0 {
			columns = append(columns, coverage.Column{Name: m.Format("2006-01-02"), Date: m})
		} else {
			columns = append(columns, coverage.Column{Name: m.Format("2006-01-02") + " 00:00:00"})
		}
	}

	var rows [][]string
	for _, plant := range plants {
		base := 800 + rng.Float64()*1200
		for _, kf := range keyFigures {
			row := []string{plant, kf}
			for i := 0; i < opts.Months; i++ {
				row = append(row, value(rng, kf, base, i))
			}
			rows = append(rows, row)
		}
	}

	return &coverage.Table{Columns: columns, Rows: rows}
}

func value(rng *rand.Rand, keyFigure string, base float64, month int) string {
	var v float64
	switch keyFigure {
	case "Unconstrained Projected Stock":
		v = base*3 - float64(month)*base*0.2 + rng.Float64()*base*0.5
	case "Unconstrained Days of Coverage":
		v = 30 + rng.Float64()*90
	default:
		v = base * (0.6 + rng.Float64()*0.8)
	}
	if v < 0 {
		v = 0
	}
	return strconv.FormatFloat(coverage.RoundFloat(v, 0), 'f', -1, 64)
}
