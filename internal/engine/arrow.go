package engine

import (
	"fmt"
	"io"
	"math"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// ObservationSchema is the Arrow layout of an exported table. Missing
// values are null.
var ObservationSchema = arrow.NewSchema([]arrow.Field{
	{Name: string(DimArea), Type: arrow.BinaryTypes.String},
	{Name: string(DimPeriod), Type: arrow.PrimitiveTypes.Int32},
	{Name: string(DimMeasure), Type: arrow.BinaryTypes.String},
	{Name: "OBS_VALUE", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
}, nil)

// Record copies t into an Arrow record. The caller releases it.
func (t *Table) Record(mem memory.Allocator) arrow.Record {
	b := array.NewRecordBuilder(mem, ObservationSchema)
	defer b.Release()

	n := t.Len()
	areas := b.Field(0).(*array.StringBuilder)
	periods := b.Field(1).(*array.Int32Builder)
	measures := b.Field(2).(*array.StringBuilder)
	values := b.Field(3).(*array.Float64Builder)
	areas.Reserve(n)
	periods.Reserve(n)
	measures.Reserve(n)
	values.Reserve(n)

	for i := 0; i < n; i++ {
		areas.Append(t.Area(i))
		periods.Append(t.Periods[i])
		measures.Append(t.Measure(i))
		if v := t.Values[i]; math.IsNaN(v) {
			values.AppendNull()
		} else {
			values.Append(v)
		}
	}
	return b.NewRecord()
}

// WriteArrow streams t to w in the Arrow IPC stream format.
func WriteArrow(w io.Writer, t *Table) error {
	mem := memory.NewGoAllocator()
	rec := t.Record(mem)
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(ObservationSchema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		wr.Close()
		return fmt.Errorf("writing arrow record: %w", err)
	}
	return wr.Close()
}
