package coverage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInputShape marks a table that cannot be processed at all.
var ErrInputShape = errors.New("invalid input shape")

// ErrNoMonthColumns is returned when no header resolves to a month.
var ErrNoMonthColumns = fmt.Errorf("%w: no month columns found (headers must be dates or start with YYYY-MM-DD / YYYY/MM/DD)", ErrInputShape)

// WarnNoMatchingRows is reported when neither projected stock nor consensus
// demand rows are present after filtering.
const WarnNoMatchingRows = "no projected stock or consensus demand rows matched; summary is empty"

// MissingColumnError is returned when a configured metadata column is absent.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: required column %q not found (available: %s)",
		ErrInputShape, e.Column, strings.Join(e.Available, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrInputShape
}
