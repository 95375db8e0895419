package sheet

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{name: "plan.xlsx", want: FormatXLSX},
		{name: "PLAN.XLSM", want: FormatXLSX},
		{name: "export.csv", want: FormatCSV},
		{name: "legacy.xls", wantErr: true},
		{name: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCSV(t *testing.T) {
	input := "\ufeffPlant,Key Figure,2025-01-01,2025-02-01\n" +
		"EIP01,Projected Stock,\"1,200\",300\n" +
		",,,\n" +
		"EIP01,Consensus,100\n"

	table, err := Read(strings.NewReader(input), FormatCSV)
	require.NoError(t, err)

	require.Len(t, table.Columns, 4)
	assert.Equal(t, "Plant", table.Columns[0].Name)
	assert.False(t, table.Columns[2].IsDate())

	require.Len(t, table.Rows, 2, "blank rows are dropped")
	assert.Equal(t, "1,200", table.Rows[0][2])
	assert.Equal(t, []string{"EIP01", "Consensus", "100", ""}, table.Rows[1])
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""), FormatCSV)
	assert.Error(t, err)
}

func TestReadWorkbook_DateHeaders(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	table := &coverage.Table{
		Columns: []coverage.Column{
			{Name: "Plant"},
			{Name: "Key Figure"},
			{Name: "Jan", Date: jan},
			{Name: "2025-02-01"},
		},
		Rows: [][]string{
			{"EIP01", "Projected Stock", "300", "200"},
			{"EIP01", "Consensus", "100", "150"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, "Plan", table))

	got, err := ReadBytes("plan.xlsx", buf.Bytes())
	require.NoError(t, err)

	require.Len(t, got.Columns, 4)
	assert.False(t, got.Columns[0].IsDate())
	assert.True(t, got.Columns[2].IsDate())
	assert.Equal(t, jan, got.Columns[2].Date.UTC())
	assert.False(t, got.Columns[3].IsDate())
	assert.Equal(t, "2025-02-01", got.Columns[3].Name)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, "300", got.Rows[0][2])
	assert.Equal(t, "Consensus", got.Rows[1][1])

	months := coverage.DetectMonthColumns(got.Columns)
	require.Len(t, months, 2)
	assert.Equal(t, jan, months[0].Month)
}

func TestReadWorkbook_Date1904Headers(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	date1904 := true
	require.NoError(t, f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &date1904}))

	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "Plant"))
	require.NoError(t, f.SetCellStr("Sheet1", "B1", "Key Figure"))
	// 2025-01-01 counted from 1904-01-01; the 1900 system reads it as 2020-12-31.
	require.NoError(t, f.SetCellInt("Sheet1", "C1", 44196))
	require.NoError(t, f.SetCellStyle("Sheet1", "C1", "C1", style))
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "EIP01"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(buf.Bytes()), FormatXLSX)
	require.NoError(t, err)
	require.True(t, got.Columns[2].IsDate())

	months := coverage.DetectMonthColumns(got.Columns)
	require.Len(t, months, 1)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), months[0].Month)
}

func TestReadWorkbook_NumericHeaderWithoutDateFormat(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "Plant"))
	require.NoError(t, f.SetCellStr("Sheet1", "B1", "Key Figure"))
	require.NoError(t, f.SetCellInt("Sheet1", "C1", 45658))
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "EIP01"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(buf.Bytes()), FormatXLSX)
	require.NoError(t, err)
	require.Len(t, got.Columns, 3)
	assert.False(t, got.Columns[2].IsDate(), "plain numbers are not months")
	assert.Equal(t, []string{"EIP01", "", ""}, got.Rows[0])
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.csv")
	require.NoError(t, os.WriteFile(path, []byte("Plant,Key Figure\nEIP01,Consensus\n"), 0o644))

	table, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestIsDateFormat(t *testing.T) {
	custom := func(code string) *excelize.Style { return &excelize.Style{CustomNumFmt: &code} }

	assert.True(t, isDateFormat(&excelize.Style{NumFmt: 14}))
	assert.True(t, isDateFormat(&excelize.Style{NumFmt: 22}))
	assert.False(t, isDateFormat(&excelize.Style{NumFmt: 2}))
	assert.True(t, isDateFormat(custom("yyyy-mm-dd")))
	assert.True(t, isDateFormat(custom("mmm yyyy")))
	assert.False(t, isDateFormat(custom(`0.00 "mm"`)))
	assert.False(t, isDateFormat(custom("#,##0")))
}
