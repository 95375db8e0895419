package coverage

import "math"

const (
	// DaysPerMonth is the fixed month length used by the simulation.
	DaysPerMonth = 30
	// MaxDOCNoRunout is returned when stock outlasts the whole horizon.
	MaxDOCNoRunout = 600.0
)

// DaysOfCoverage walks futureDemand month by month and returns the number of
// days the stock lasts. futureDemand starts at the month after the evaluated
// one. Negative or NaN demand counts as zero.
func DaysOfCoverage(stock Quantity, futureDemand []float64) float64 {
	if !stock.Valid || math.IsNaN(stock.Value) || stock.Value <= 0 {
		return 0
	}

	cum := 0.0
	fullMonths := 0
	for _, d := range futureDemand {
		if math.IsNaN(d) || d < 0 {
			d = 0
		}
		if d == 0 {
			fullMonths++
			continue
		}
		if cum+d < stock.Value {
			cum += d
			fullMonths++
			continue
		}

		remaining := math.Max(0, stock.Value-cum)
		return float64(fullMonths)*DaysPerMonth + remaining/d*DaysPerMonth
	}
	return MaxDOCNoRunout
}

// SimulateSeries evaluates DaysOfCoverage for every month, each time with the
// demand of the strictly later months.
func SimulateSeries(aggs []MonthlyAggregate) []float64 {
	demand := make([]float64, len(aggs))
	for i, a := range aggs {
		demand[i] = a.Demand
	}

	out := make([]float64, len(aggs))
	for i, a := range aggs {
		out[i] = DaysOfCoverage(Known(a.Stock), demand[i+1:])
	}
	return out
}
