package coverage

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// RoundFloat rounds v to the given number of decimal places.
func RoundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// FormatValue renders numeric kinds with a fixed number of decimals and a
// comma thousands separator. Months render as YYYY-MM-DD; anything else is
// passed through fmt.Sprint.
func FormatValue(v any, decimals int) string {
	switch n := v.(type) {
	case float64:
		return formatFloat(n, decimals)
	case float32:
		return formatFloat(float64(n), decimals)
	case int:
		return formatFloat(float64(n), decimals)
	case int64:
		return formatFloat(float64(n), decimals)
	case Quantity:
		if !n.Valid {
			return ""
		}
		return formatFloat(n.Value, decimals)
	case time.Time:
		return n.Format("2006-01-02")
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if decimals < 0 {
		decimals = 0
	}

	neg := v < 0
	if neg {
		v = -v
	}

	s := strconv.FormatFloat(RoundFloat(v, decimals), 'f', decimals, 64)
	intPart, fracPart := s, ""
	if decimals > 0 {
		intPart, fracPart = s[:len(s)-decimals-1], s[len(s)-decimals:]
	}

	// insert thousands separators
	if len(intPart) > 3 {
		var buf []byte
		count := 0
		for i := len(intPart) - 1; i >= 0; i-- {
			buf = append(buf, intPart[i])
			count++
			if count == 3 && i != 0 {
				buf = append(buf, ',')
				count = 0
			}
		}
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
		intPart = string(buf)
	}

	prefix := ""
	if neg && (RoundFloat(v, decimals) != 0) {
		prefix = "-"
	}
	if fracPart == "" {
		return prefix + intPart
	}
	return prefix + intPart + "." + fracPart
}
