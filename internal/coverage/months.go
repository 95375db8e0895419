package coverage

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// monthHeaderPattern matches a leading YYYY-MM-DD or YYYY/MM/DD date; any
// suffix (a time of day, a label) is allowed.
var monthHeaderPattern = regexp.MustCompile(`^(\d{4})[-/](\d{2})[-/](\d{2})`)

// ResolveHeaderMonth returns the month a header stands for, if any. Dates
// that match the pattern but do not exist on the calendar are rejected.
func ResolveHeaderMonth(col Column) (time.Time, bool) {
	if col.IsDate() {
		return monthStart(col.Date), true
	}

	m := monthHeaderPattern.FindStringSubmatch(strings.TrimSpace(col.Name))
	if m == nil {
		return time.Time{}, false
	}

	d, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, false
	}
	return monthStart(d), true
}

// DetectMonthColumns returns one column per distinct month, ascending.
// When several headers resolve to the same month the leftmost one wins.
func DetectMonthColumns(columns []Column) []MonthColumn {
	seen := make(map[time.Time]struct{})
	out := make([]MonthColumn, 0, len(columns))
	for i, col := range columns {
		month, ok := ResolveHeaderMonth(col)
		if !ok {
			continue
		}
		if _, dup := seen[month]; dup {
			continue
		}
		seen[month] = struct{}{}
		out = append(out, MonthColumn{Index: i, Header: col.Name, Month: month})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// monthAxis returns the months of cols in order.
func monthAxis(cols []MonthColumn) []time.Time {
	axis := make([]time.Time, len(cols))
	for i, c := range cols {
		axis[i] = c.Month
	}
	return axis
}
