package engine

import (
	"math"
	"sort"
	"strconv"
)

// Dim names a column of the observation table.
type Dim string

const (
	DimArea    Dim = "REF_AREA"
	DimPeriod  Dim = "TIME_PERIOD"
	DimMeasure Dim = "MEASURE"
)

// Valid reports whether d is one of the table's columns.
func (d Dim) Valid() bool {
	switch d {
	case DimArea, DimPeriod, DimMeasure:
		return true
	}
	return false
}

// textDims are the categorical string columns, in fallback order.
var textDims = []Dim{DimArea, DimMeasure}

// Observation is one (area, period, measure) data point.
type Observation struct {
	RefArea    string
	TimePeriod int
	Measure    string
	Value      float64
}

// Table holds observations in Struct-of-Arrays format.
// REF_AREA and MEASURE are dictionary encoded. Keys are not unique:
// several rows may share (area, period, measure) and every aggregation sums.
type Table struct {
	// Data Columns (Flat Arrays)
	Periods []int32
	Values  []float64

	// Dictionary Encoded IDs (0..N)
	AreaIDs    []int32
	MeasureIDs []int32

	// Dictionaries (ID -> String)
	AreaDict    []string
	MeasureDict []string
}

// NewTable builds a table from row records.
func NewTable(rows []Observation) *Table {
	b := newTableBuilder(len(rows))
	for _, r := range rows {
		b.add(r.RefArea, r.Measure, int32(r.TimePeriod), r.Value)
	}
	return b.table()
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Values)
}

func (t *Table) Area(i int) string    { return t.AreaDict[t.AreaIDs[i]] }
func (t *Table) Measure(i int) string { return t.MeasureDict[t.MeasureIDs[i]] }
func (t *Table) Period(i int) int     { return int(t.Periods[i]) }

// Row returns row i as a record.
func (t *Table) Row(i int) Observation {
	return Observation{
		RefArea:    t.Area(i),
		TimePeriod: t.Period(i),
		Measure:    t.Measure(i),
		Value:      t.Values[i],
	}
}

// Rows materializes every row.
func (t *Table) Rows() []Observation {
	out := make([]Observation, t.Len())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

// Key returns the string form of column d at row i.
func (t *Table) Key(i int, d Dim) string {
	switch d {
	case DimArea:
		return t.Area(i)
	case DimMeasure:
		return t.Measure(i)
	case DimPeriod:
		return strconv.Itoa(t.Period(i))
	}
	return ""
}

// value returns the observation at i with NaN read as zero, the way the
// sums skip missing values.
func (t *Table) value(i int) float64 {
	v := t.Values[i]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Unique returns the sorted distinct values of column d that occur in the
// table's rows. TIME_PERIOD sorts numerically.
func (t *Table) Unique(d Dim) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < t.Len(); i++ {
		k := t.Key(i, d)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sortKeys(out, d)
	return out
}

// Years returns the sorted distinct periods.
func (t *Table) Years() []int {
	seen := make(map[int32]bool)
	var out []int
	for _, p := range t.Periods {
		if !seen[p] {
			seen[p] = true
			out = append(out, int(p))
		}
	}
	sort.Ints(out)
	return out
}

// HasNegative reports whether any observation is below zero.
func (t *Table) HasNegative() bool {
	for i := 0; i < t.Len(); i++ {
		if t.Values[i] < 0 {
			return true
		}
	}
	return false
}

// sortKeys orders keys of column d: numerically for periods, lexically
// otherwise.
func sortKeys(keys []string, d Dim) {
	if d == DimPeriod {
		sort.SliceStable(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
		return
	}
	sort.Strings(keys)
}

// tableBuilder appends rows while maintaining the dictionaries.
type tableBuilder struct {
	t       *Table
	areaMap map[string]int32
	measMap map[string]int32
}

func newTableBuilder(capacity int) *tableBuilder {
	return &tableBuilder{
		t: &Table{
			Periods:    make([]int32, 0, capacity),
			Values:     make([]float64, 0, capacity),
			AreaIDs:    make([]int32, 0, capacity),
			MeasureIDs: make([]int32, 0, capacity),
		},
		areaMap: make(map[string]int32),
		measMap: make(map[string]int32),
	}
}

func (b *tableBuilder) add(area, measure string, period int32, value float64) {
	b.t.AreaIDs = append(b.t.AreaIDs, intern(area, b.areaMap, &b.t.AreaDict))
	b.t.MeasureIDs = append(b.t.MeasureIDs, intern(measure, b.measMap, &b.t.MeasureDict))
	b.t.Periods = append(b.t.Periods, period)
	b.t.Values = append(b.t.Values, value)
}

func (b *tableBuilder) table() *Table { return b.t }

func intern(s string, ids map[string]int32, dict *[]string) int32 {
	if id, ok := ids[s]; ok {
		return id
	}
	id := int32(len(*dict))
	*dict = append(*dict, s)
	ids[s] = id
	return id
}
