package coverage

import "strings"

// FieldBinding locates the two metadata columns of a table.
type FieldBinding struct {
	Location int
	Category int
}

// ResolveFields finds the location and category columns by header name.
// Names are matched after trimming, then case-insensitively.
func ResolveFields(columns []Column, locationName, categoryName string) (FieldBinding, error) {
	loc, err := findColumn(columns, locationName)
	if err != nil {
		return FieldBinding{}, err
	}
	cat, err := findColumn(columns, categoryName)
	if err != nil {
		return FieldBinding{}, err
	}
	return FieldBinding{Location: loc, Category: cat}, nil
}

func findColumn(columns []Column, name string) (int, error) {
	want := strings.TrimSpace(name)
	for i, c := range columns {
		if strings.TrimSpace(c.Name) == want {
			return i, nil
		}
	}
	for i, c := range columns {
		if strings.EqualFold(strings.TrimSpace(c.Name), want) {
			return i, nil
		}
	}

	available := make([]string, 0, len(columns))
	for _, c := range columns {
		available = append(available, c.Name)
	}
	return -1, &MissingColumnError{Column: name, Available: available}
}

// Reshape pivots the wide table into one LongRow per (row, month column).
// The class is computed here once and carried by every LongRow.
func Reshape(table *Table, months []MonthColumn, fields FieldBinding, classifier *Classifier) []LongRow {
	out := make([]LongRow, 0, len(table.Rows)*len(months))
	for r := range table.Rows {
		location := table.Cell(r, fields.Location)
		category := table.Cell(r, fields.Category)
		class := classifier.Classify(category)
		for _, mc := range months {
			out = append(out, LongRow{
				Location: location,
				Category: category,
				Class:    class,
				Month:    mc.Month,
				Value:    ParseQuantity(table.Cell(r, mc.Index)),
			})
		}
	}
	return out
}
