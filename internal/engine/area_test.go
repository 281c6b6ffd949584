package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeAreasConstantSeries(t *testing.T) {
	tbl := NewTable([]Observation{
		{RefArea: "USA", TimePeriod: 2010, Measure: "CO2", Value: 5},
		{RefArea: "USA", TimePeriod: 2012, Measure: "CO2", Value: 5},
		{RefArea: "USA", TimePeriod: 2015, Measure: "CO2", Value: 5},
	})
	p, err := PivotSum(tbl, DimPeriod, DimMeasure)
	require.NoError(t, err)

	shares, total, err := AttributeAreas(p)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.InDelta(t, 25.0, shares[0].Area, 1e-9)
	assert.InDelta(t, 100.0, shares[0].Percent, 1e-9)
	assert.InDelta(t, 25.0, total, 1e-9)
}

func TestAttributeAreasSinglePoint(t *testing.T) {
	tbl := NewTable([]Observation{{RefArea: "USA", TimePeriod: 2010, Measure: "CO2", Value: 5}})
	p, err := PivotSum(tbl, DimPeriod, DimMeasure)
	require.NoError(t, err)

	shares, total, err := AttributeAreas(p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, shares[0].Area)
	assert.Equal(t, 0.0, shares[0].Percent)
	assert.Equal(t, 0.0, total)
	assert.Empty(t, AreaAnnotations(p, shares, total))
}

func TestAttributeAreasSharesAndAnnotations(t *testing.T) {
	tbl := NewTable([]Observation{
		{RefArea: "USA", TimePeriod: 2010, Measure: "AGR", Value: 10},
		{RefArea: "USA", TimePeriod: 2011, Measure: "AGR", Value: 10},
		{RefArea: "USA", TimePeriod: 2012, Measure: "AGR", Value: 10},
		{RefArea: "USA", TimePeriod: 2010, Measure: "WASTE", Value: -30},
		{RefArea: "USA", TimePeriod: 2011, Measure: "WASTE", Value: -30},
		// WASTE is missing in 2012 and counts as 0.
	})
	p, err := PivotSum(tbl, DimPeriod, DimMeasure)
	require.NoError(t, err)

	shares, total, err := AttributeAreas(p)
	require.NoError(t, err)
	// AGR: 10*2 = 20. WASTE: |-30 + -15| = 45.
	assert.InDelta(t, 20, shares[0].Area, 1e-9)
	assert.InDelta(t, 45, shares[1].Area, 1e-9)
	assert.InDelta(t, 65, total, 1e-9)
	assert.InDelta(t, 100, shares[0].Percent+shares[1].Percent, 1e-9)

	notes := AreaAnnotations(p, shares, total)
	require.Len(t, notes, 2)
	assert.Equal(t, 2011, notes[0].X)
	assert.Equal(t, 5.0, notes[0].Y)
	assert.Equal(t, -5.0, notes[1].Y)
	assert.Equal(t, "AGR\nArea: 20\n30.8%", notes[0].Text)
	assert.Equal(t, 3, notes[0].FontSize)
	assert.Equal(t, 8, notes[1].FontSize)
}

func TestAttributeAreasNeedsPeriodIndex(t *testing.T) {
	p, err := PivotSum(scenarioTable(), DimArea, DimMeasure)
	require.NoError(t, err)
	_, _, err = AttributeAreas(p)
	assert.ErrorIs(t, err, ErrInvalidDim)
}
