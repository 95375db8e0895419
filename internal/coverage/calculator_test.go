package coverage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planningTable() *Table {
	return &Table{
		Columns: []Column{
			{Name: "Plant"},
			{Name: "Key Figure"},
			{Name: "2025-01-01 00:00:00"},
			{Name: "45689", Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
			{Name: "2025/03/01"},
		},
		Rows: [][]string{
			{"EIP01", "Unconstrained Projected Stock", "300", "200", "0"},
			{"EIP01", "Kısıtsız Consensus Sell-in Forecast / Malzeme Tüketim Mik.", "100", "150", "50"},
			{"TR02", "Consensus", "999", "999", "999"},
			{"EIP01", "Beginning Stock", "5000", "5000", "5000"},
			{"EIP01", "Comment line", "x", "y", "z"},
		},
	}
}

func TestCalculator_Run_EndToEnd(t *testing.T) {
	calc := NewCalculator(DefaultOptions(), nil)

	res, err := calc.Run(context.Background(), planningTable())
	require.NoError(t, err)

	require.Len(t, res.Months, 3)
	require.Len(t, res.Summary, 3)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, SummaryRow{Month: month(2025, 1), Stock: 300, Demand: 100, DOCDays: 600}, res.Summary[0])
	assert.Equal(t, SummaryRow{Month: month(2025, 2), Stock: 200, Demand: 150, DOCDays: 600}, res.Summary[1])
	assert.Equal(t, SummaryRow{Month: month(2025, 3), Stock: 0, Demand: 50, DOCDays: 0}, res.Summary[2])

	require.NotNil(t, res.NaiveFirstMonthDOC)
	assert.InDelta(t, 60, *res.NaiveFirstMonthDOC, 1e-9)

	assert.Equal(t, Stats{Rows: 5, LongRows: 15, StockRows: 3, DemandRows: 3, Unclassified: 3}, res.Stats)

	require.Len(t, res.Labels, 5)
	assert.Equal(t, ClassConsensus, res.Labels[1].Class)
	assert.Equal(t, "kisitsiz consensus sell-in forecast / malzeme tuketim mik.", res.Labels[1].Normalized)
	assert.Equal(t, ClassUnclassified, res.Labels[4].Class)
}

func TestCalculator_Run_BoundaryScenario(t *testing.T) {
	table := &Table{
		Columns: []Column{{Name: "Plant"}, {Name: "Key Figure"}, {Name: "2025-01-01"}, {Name: "2025-02-01"}, {Name: "2025-03-01"}, {Name: "2025-04-01"}},
		Rows: [][]string{
			{"eip", "Projected Stock", "100", "", "", ""},
			{"eip", "Consensus", "0", "40", "40", "40"},
		},
	}

	res, err := NewCalculator(Options{}, nil).Run(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, res.Summary, 4)
	assert.InDelta(t, 75, res.Summary[0].DOCDays, 1e-9)
	assert.Equal(t, 0.0, res.Summary[1].DOCDays)
}

func TestCalculator_Run_AssumeSiteDemand(t *testing.T) {
	opts := DefaultOptions()
	opts.AssumeSiteDemand = true

	res, err := NewCalculator(opts, nil).Run(context.Background(), planningTable())
	require.NoError(t, err)
	assert.Equal(t, 1099.0, res.Summary[0].Demand)
}

func TestCalculator_Run_CustomBindings(t *testing.T) {
	table := &Table{
		Columns: []Column{{Name: "Site"}, {Name: "Line"}, {Name: "2025-01-01"}, {Name: "2025-02-01"}},
		Rows: [][]string{
			{"DC-North", "projected stock", "100", "100"},
			{"DC-North", "consensus", "10", "50"},
		},
	}

	calc := NewCalculator(Options{SiteMarker: "north", LocationColumn: "Site", CategoryColumn: "Line", UnitMultiplier: 2}, nil)
	res, err := calc.Run(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, res.Summary, 2)
	assert.Equal(t, 100.0, res.Summary[1].Demand)
	assert.InDelta(t, 30, res.Summary[0].DOCDays, 1e-9)
}

func TestCalculator_Run_NoMonthColumns(t *testing.T) {
	table := &Table{
		Columns: []Column{{Name: "Plant"}, {Name: "Key Figure"}, {Name: "Region"}},
		Rows:    [][]string{{"EIP", "Consensus", "x"}},
	}

	res, err := NewCalculator(DefaultOptions(), nil).Run(context.Background(), table)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoMonthColumns)
	assert.ErrorIs(t, err, ErrInputShape)
}

func TestCalculator_Run_MissingMetadataColumn(t *testing.T) {
	table := &Table{Columns: []Column{{Name: "Key Figure"}, {Name: "2025-01-01"}}}

	_, err := NewCalculator(DefaultOptions(), nil).Run(context.Background(), table)
	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, DefaultLocationColumn, missing.Column)
}

func TestCalculator_Run_EmptyResultWarns(t *testing.T) {
	table := &Table{
		Columns: []Column{{Name: "Plant"}, {Name: "Key Figure"}, {Name: "2025-01-01"}},
		Rows: [][]string{
			{"EIP", "Transport Receipt", "10"},
			{"TR1", "Consensus", "10"},
		},
	}

	res, err := NewCalculator(DefaultOptions(), nil).Run(context.Background(), table)
	require.NoError(t, err)
	assert.NotNil(t, res.Summary)
	assert.Empty(t, res.Summary)
	assert.Equal(t, []string{WarnNoMatchingRows}, res.Warnings)
	assert.Nil(t, res.NaiveFirstMonthDOC)
}

func TestCalculator_Run_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCalculator(DefaultOptions(), nil).Run(ctx, planningTable())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions_WithDefaults(t *testing.T) {
	got := Options{SiteMarker: "  ", UnitMultiplier: 0}.WithDefaults()
	assert.Equal(t, DefaultOptions(), got)

	kept := Options{SiteMarker: "dc", UnitMultiplier: 0.001, LocationColumn: "Site", CategoryColumn: "KF"}.WithDefaults()
	assert.Equal(t, "dc", kept.SiteMarker)
	assert.Equal(t, 0.001, kept.UnitMultiplier)
}
