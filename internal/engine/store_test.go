package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTableDictionaries(t *testing.T) {
	tbl := scenarioTable()

	assert.Equal(t, 4, tbl.Len())
	assert.Equal(t, []string{"USA", "FRA"}, tbl.AreaDict, "dictionary follows first appearance")
	assert.Equal(t, []int32{0, 0, 1, 1}, tbl.AreaIDs)
	assert.Equal(t, scenarioTable().Rows(), tbl.Rows())
	assert.Equal(t, "2011", tbl.Key(1, DimPeriod))
	assert.Equal(t, []int{2010, 2011}, tbl.Years())
	assert.False(t, tbl.HasNegative())
}

func TestTableNaNAndNegatives(t *testing.T) {
	tbl := NewTable([]Observation{
		{RefArea: "USA", TimePeriod: 2010, Measure: "F_CO2", Value: -3},
		{RefArea: "USA", TimePeriod: 2010, Measure: "AGR", Value: math.NaN()},
	})
	assert.True(t, tbl.HasNegative())
	assert.Equal(t, -3.0, Sum(tbl), "NaN is skipped")

	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
}

func TestDimValid(t *testing.T) {
	assert.True(t, DimArea.Valid())
	assert.True(t, Dim("TIME_PERIOD").Valid())
	assert.False(t, Dim("OBS_VALUE").Valid())
}
