package sheet

import (
	"fmt"
	"io"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/xuri/excelize/v2"
)

const (
	// SummarySheet is the sheet name of the exported summary workbook.
	SummarySheet = "DOC"
	// SummaryFileName is the default download name.
	SummaryFileName = "DOC_summary.xlsx"
	// ContentTypeXLSX is the MIME type of written workbooks.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SummaryHeaders are the column titles of the summary sheet.
var SummaryHeaders = []string{"month", "monthly_projected_stock", "monthly_consensus_demand", "DOC_days"}

var summaryWidths = []float64{12, 24, 26, 12}

// WriteSummary writes the DOC summary as a one-sheet workbook.
func WriteSummary(w io.Writer, rows []coverage.SummaryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(SummaryHeaders))
	for i, h := range SummaryHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}
	numStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	for i, r := range rows {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := []interface{}{r.Month, r.Stock, r.Demand, r.DOCDays}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}
	}

	if last := len(rows) + 1; last > 1 {
		if err := f.SetCellStyle(SummarySheet, "A2", fmt.Sprintf("A%d", last), dateStyle); err != nil {
			return fmt.Errorf("failed to style month column: %w", err)
		}
		if err := f.SetCellStyle(SummarySheet, "B2", fmt.Sprintf("D%d", last), numStyle); err != nil {
			return fmt.Errorf("failed to style numeric columns: %w", err)
		}
	}

	for i, width := range summaryWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SummarySheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteTable writes a planning table to a one-sheet workbook. Date headers
// are written as real date cells so readers see structured dates.
func WriteTable(w io.Writer, sheetName string, table *coverage.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	for i, col := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if col.IsDate() {
			if err := f.SetCellValue(sheetName, cell, col.Date); err != nil {
				return fmt.Errorf("failed to write header %s: %w", cell, err)
			}
			if err := f.SetCellStyle(sheetName, cell, cell, dateStyle); err != nil {
				return fmt.Errorf("failed to style header %s: %w", cell, err)
			}
			continue
		}
		if err := f.SetCellStr(sheetName, cell, col.Name); err != nil {
			return fmt.Errorf("failed to write header %s: %w", cell, err)
		}
	}

	for r, row := range table.Rows {
		for c, raw := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if q := coverage.ParseQuantity(raw); q.Valid {
				err = f.SetCellFloat(sheetName, cell, q.Value, -1, 64)
			} else {
				err = f.SetCellStr(sheetName, cell, raw)
			}
			if err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
