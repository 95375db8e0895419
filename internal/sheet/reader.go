package sheet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/xuri/excelize/v2"
)

// Format identifies the input file kind.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat maps a filename extension to a Format.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q for %s (expected .xlsx, .xlsm or .csv)", filepath.Ext(name), name)
	}
}

// ReadFile reads the first sheet of a workbook, or a CSV file, into a table.
func ReadFile(path string) (*coverage.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, format)
}

// ReadBytes reads an uploaded file held in memory.
func ReadBytes(name string, data []byte) (*coverage.Table, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), format)
}

// Read parses r according to format.
func Read(r io.Reader, format Format) (*coverage.Table, error) {
	switch format {
	case FormatXLSX:
		return readWorkbook(r)
	case FormatCSV:
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// readWorkbook loads the first sheet. The first row is the header row; date
// formatted numeric header cells become structured dates.
func readWorkbook(r io.Reader) (*coverage.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	date1904, err := uses1904Dates(f)
	if err != nil {
		return nil, err
	}

	header := rows[0]
	columns := make([]coverage.Column, len(header))
	for i, raw := range header {
		columns[i] = coverage.Column{Name: strings.TrimSpace(raw)}
		if date, ok := headerDate(f, sheet, i, raw, date1904); ok {
			columns[i].Date = date
		}
	}

	return &coverage.Table{Columns: columns, Rows: dataRows(rows[1:], len(columns))}, nil
}

// dataRows pads rows to width and drops rows without any non-blank cell.
func dataRows(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		out = append(out, row)
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// uses1904Dates reports whether serial dates count from 1904-01-01.
func uses1904Dates(f *excelize.File) (bool, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return false, fmt.Errorf("failed to read workbook properties: %w", err)
	}
	return props.Date1904 != nil && *props.Date1904, nil
}

// headerDate reports whether the header cell at column index col holds a
// numeric value with a date number format.
func headerDate(f *excelize.File, sheet string, col int, raw string, date1904 bool) (time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}

	cell, err := excelize.CoordinatesToCellName(col+1, 1)
	if err != nil {
		return time.Time{}, false
	}
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return time.Time{}, false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil || !isDateFormat(style) {
		return time.Time{}, false
	}

	date, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// isDateFormat recognizes built-in date formats and custom formats carrying
// both a month and a day or year token outside quoted literals.
func isDateFormat(style *excelize.Style) bool {
	switch id := style.NumFmt; {
	case id >= 14 && id <= 17, id == 22, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}

	code := strings.ToLower(stripQuoted(*style.CustomNumFmt))
	hasMonth := strings.Contains(code, "m")
	return hasMonth && (strings.Contains(code, "y") || strings.Contains(code, "d"))
}

func stripQuoted(code string) string {
	var b strings.Builder
	inQuote := false
	for _, r := range code {
		if r == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			b.WriteRune(r)
		}
	}
	return b.String()
}
