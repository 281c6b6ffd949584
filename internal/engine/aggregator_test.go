package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioTable is the CO2 example used across the pivot tests.
func scenarioTable() *Table {
	return NewTable([]Observation{
		{RefArea: "USA", TimePeriod: 2010, Measure: "CO2", Value: 100},
		{RefArea: "USA", TimePeriod: 2011, Measure: "CO2", Value: 150},
		{RefArea: "FRA", TimePeriod: 2010, Measure: "CO2", Value: 50},
		{RefArea: "FRA", TimePeriod: 2011, Measure: "CO2", Value: 40},
	})
}

func TestPivotSum(t *testing.T) {
	// 1. Run Pivot
	p, err := PivotSum(scenarioTable(), DimPeriod, DimArea)
	require.NoError(t, err)

	// 2. Assertions
	assert.Equal(t, []string{"2010", "2011"}, p.Index)
	assert.Equal(t, []string{"FRA", "USA"}, p.Columns, "columns are alphabetical")
	assert.Equal(t, []float64{150, 190}, p.Total)

	v, ok := p.Cell(0, 1)
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)
	assert.Equal(t, []float64{50, 40}, p.Column(0))
	assert.Equal(t, 1, p.ColumnIndex("USA"))
	assert.Equal(t, -1, p.ColumnIndex("DEU"))
}

func TestPivotSumMissingCellsAndDuplicates(t *testing.T) {
	tbl := NewTable([]Observation{
		{RefArea: "USA", TimePeriod: 2010, Measure: "AGR", Value: 1},
		{RefArea: "USA", TimePeriod: 2010, Measure: "AGR", Value: 2},
		{RefArea: "FRA", TimePeriod: 2010, Measure: "WASTE", Value: 5},
	})
	p, err := PivotSum(tbl, DimArea, DimMeasure)
	require.NoError(t, err)

	assert.Equal(t, []string{"FRA", "USA"}, p.Index)
	v, ok := p.Cell(1, 0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v, "duplicate keys are summed")

	_, ok = p.Cell(0, 0)
	assert.False(t, ok, "FRA has no AGR")
	assert.Equal(t, []float64{5, 3}, p.Total)
}

func TestPivotSumNumericPeriodOrder(t *testing.T) {
	tbl := NewTable([]Observation{
		{RefArea: "USA", TimePeriod: 10000, Measure: "CO2", Value: 1},
		{RefArea: "USA", TimePeriod: 999, Measure: "CO2", Value: 1},
	})
	p, err := PivotSum(tbl, DimPeriod, DimMeasure)
	require.NoError(t, err)
	assert.Equal(t, []string{"999", "10000"}, p.Index)
}

func TestPivotSumInvalid(t *testing.T) {
	_, err := PivotSum(scenarioTable(), "COLOR", DimArea)
	assert.ErrorIs(t, err, ErrInvalidDim)
	_, err = PivotSum(scenarioTable(), DimArea, DimArea)
	assert.ErrorIs(t, err, ErrInvalidDim)
}

func TestPivotSortByTotalDesc(t *testing.T) {
	p, err := PivotSum(scenarioTable(), DimArea, DimPeriod)
	require.NoError(t, err)
	require.Equal(t, []string{"FRA", "USA"}, p.Index)

	p.SortByTotalDesc()
	assert.Equal(t, []string{"USA", "FRA"}, p.Index)
	assert.Equal(t, []float64{250, 90}, p.Total)
	assert.Equal(t, []float64{100, 150}, p.Row(0))
}

func TestPivotEmpty(t *testing.T) {
	p, err := PivotSum(&Table{}, DimPeriod, DimMeasure)
	require.NoError(t, err)
	assert.Empty(t, p.Index)
	assert.Empty(t, p.Columns)
	assert.Empty(t, p.Total)
}

func TestSumBy(t *testing.T) {
	byArea, err := SumBy(scenarioTable(), DimArea)
	require.NoError(t, err)
	assert.Equal(t, []CategoryTotal{{"FRA", 90}, {"USA", 250}}, byArea)

	byYear, err := SumBy(scenarioTable(), DimPeriod)
	require.NoError(t, err)
	assert.Equal(t, []CategoryTotal{{"2010", 150}, {"2011", 190}}, byYear)

	SortTotalsDesc(byArea)
	assert.Equal(t, "USA", byArea[0].Category)

	empty, err := SumBy(&Table{}, DimArea)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGroupSum(t *testing.T) {
	rows, err := GroupSum(scenarioTable(), DimArea, DimPeriod)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, GroupRow{Keys: []string{"FRA", "2010"}, Value: 50}, rows[0])
	assert.Equal(t, GroupRow{Keys: []string{"USA", "2011"}, Value: 150}, rows[3])

	_, err = GroupSum(scenarioTable(), "X")
	assert.ErrorIs(t, err, ErrInvalidDim)

	rows, err = GroupSum(&Table{}, DimArea)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSignedSharesScenario(t *testing.T) {
	p, err := PivotSum(scenarioTable(), DimPeriod, DimArea)
	require.NoError(t, err)
	s := SignedShares(p)

	assert.InDelta(t, 66.67, s.Share(0, 1), 0.01)
	assert.InDelta(t, 33.33, s.Share(0, 0), 0.01)
}
