package coverage

import (
	"strings"
	"time"
)

// AggregateOptions controls the demand pass.
type AggregateOptions struct {
	SiteMarker       string  // case-insensitive substring of the location
	UnitMultiplier   float64 // applied to each demand value before clipping
	AssumeSiteDemand bool    // count every consensus row as the designated site
}

// Aggregate sums projected stock (all locations) and designated-site
// consensus demand per month. Every month of axis is present in the output,
// in axis order, with zero for months without rows.
func Aggregate(rows []LongRow, axis []time.Time, opts AggregateOptions) []MonthlyAggregate {
	marker := strings.ToLower(strings.TrimSpace(opts.SiteMarker))
	mult := opts.UnitMultiplier
	if mult == 0 {
		mult = 1
	}

	stock := make(map[time.Time]float64, len(axis))
	demand := make(map[time.Time]float64, len(axis))
	for _, r := range rows {
		switch r.Class {
		case ClassProjectedStock:
			stock[r.Month] += r.Value.OrZero()
		case ClassConsensus:
			if !opts.AssumeSiteDemand && !isSite(r.Location, marker) {
				continue
			}
			v := r.Value.OrZero() * mult
			if v < 0 {
				v = 0
			}
			demand[r.Month] += v
		}
	}

	out := make([]MonthlyAggregate, len(axis))
	for i, m := range axis {
		out[i] = MonthlyAggregate{Month: m, Stock: stock[m], Demand: demand[m]}
	}
	return out
}

func isSite(location, marker string) bool {
	return strings.Contains(strings.ToLower(location), marker)
}
