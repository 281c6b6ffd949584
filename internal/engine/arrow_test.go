package engine

import (
	"bytes"
	"math"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArrow(t *testing.T) {
	tbl := NewTable([]Observation{
		{RefArea: "USA", TimePeriod: 2010, Measure: "CO2", Value: 1.5},
		{RefArea: "FRA", TimePeriod: 2011, Measure: "CH4", Value: math.NaN()},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteArrow(&buf, tbl))

	rdr, err := ipc.NewReader(&buf, ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer rdr.Release()

	assert.True(t, rdr.Schema().Equal(ObservationSchema))
	require.True(t, rdr.Next())
	rec := rdr.Record()
	require.Equal(t, int64(2), rec.NumRows())

	areas := rec.Column(0).(*array.String)
	periods := rec.Column(1).(*array.Int32)
	values := rec.Column(3).(*array.Float64)
	assert.Equal(t, "FRA", areas.Value(1))
	assert.Equal(t, int32(2010), periods.Value(0))
	assert.Equal(t, 1.5, values.Value(0))
	assert.True(t, values.IsNull(1))
}
