package coverage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	jan, feb, mar := month(2025, 1), month(2025, 2), month(2025, 3)
	axis := []time.Time{jan, feb, mar}

	rows := []LongRow{
		{Location: "EIP-01", Class: ClassConsensus, Month: jan, Value: Known(-50)},
		{Location: "eip-02", Class: ClassConsensus, Month: jan, Value: Known(30)},
		{Location: "TR-01", Class: ClassConsensus, Month: jan, Value: Known(1000)},
		{Location: "EIP-01", Class: ClassConsensus, Month: feb, Value: Quantity{}},
		{Location: "TR-01", Class: ClassProjectedStock, Month: jan, Value: Known(200)},
		{Location: "EIP-01", Class: ClassProjectedStock, Month: jan, Value: Known(100)},
		{Location: "EIP-01", Class: ClassProjectedStock, Month: feb, Value: Quantity{}},
		{Location: "EIP-01", Class: ClassBeginningStock, Month: jan, Value: Known(9999)},
		{Location: "EIP-01", Class: ClassUnclassified, Month: jan, Value: Known(9999)},
	}

	got := Aggregate(rows, axis, AggregateOptions{SiteMarker: "EIP"})
	require.Len(t, got, 3)

	assert.Equal(t, MonthlyAggregate{Month: jan, Stock: 300, Demand: 30}, got[0])
	assert.Equal(t, MonthlyAggregate{Month: feb, Stock: 0, Demand: 0}, got[1])
	assert.Equal(t, MonthlyAggregate{Month: mar, Stock: 0, Demand: 0}, got[2])
}

func TestAggregate_UnitMultiplierBeforeClip(t *testing.T) {
	jan := month(2025, 1)
	rows := []LongRow{
		{Location: "EIP", Class: ClassConsensus, Month: jan, Value: Known(10)},
		{Location: "EIP", Class: ClassConsensus, Month: jan, Value: Known(-4)},
	}

	got := Aggregate(rows, []time.Time{jan}, AggregateOptions{SiteMarker: "eip", UnitMultiplier: 2.5})
	require.Len(t, got, 1)
	assert.Equal(t, 25.0, got[0].Demand)
}

func TestAggregate_AssumeSiteDemand(t *testing.T) {
	jan := month(2025, 1)
	rows := []LongRow{
		{Location: "TR-01", Class: ClassConsensus, Month: jan, Value: Known(40)},
		{Location: "", Class: ClassConsensus, Month: jan, Value: Known(2)},
	}

	off := Aggregate(rows, []time.Time{jan}, AggregateOptions{SiteMarker: "eip"})
	assert.Equal(t, 0.0, off[0].Demand)

	on := Aggregate(rows, []time.Time{jan}, AggregateOptions{SiteMarker: "eip", AssumeSiteDemand: true})
	assert.Equal(t, 42.0, on[0].Demand)
}

func TestAggregate_EmptyAxis(t *testing.T) {
	assert.Empty(t, Aggregate(nil, nil, AggregateOptions{}))
}
