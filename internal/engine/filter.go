package engine

import "math"

const (
	defaultAreaCount    = 10
	defaultMeasureCount = 3
)

// FilterConfig is the user's selection. An empty list selects nothing.
// Construct it with NewFilterConfig so callers cannot alias the slices.
type FilterConfig struct {
	years    []int
	areas    []string
	measures []string
}

func NewFilterConfig(years []int, areas, measures []string) FilterConfig {
	return FilterConfig{
		years:    append([]int(nil), years...),
		areas:    append([]string(nil), areas...),
		measures: append([]string(nil), measures...),
	}
}

func (c FilterConfig) Years() []int       { return append([]int(nil), c.years...) }
func (c FilterConfig) Areas() []string    { return append([]string(nil), c.areas...) }
func (c FilterConfig) Measures() []string { return append([]string(nil), c.measures...) }

// StartYear and EndYear are the first and last selected years in
// selection order. Both report false on an empty selection.
func (c FilterConfig) StartYear() (int, bool) {
	if len(c.years) == 0 {
		return 0, false
	}
	return c.years[0], true
}

func (c FilterConfig) EndYear() (int, bool) {
	if len(c.years) == 0 {
		return 0, false
	}
	return c.years[len(c.years)-1], true
}

// WithYears returns a copy with a different year selection.
func (c FilterConfig) WithYears(years []int) FilterConfig {
	return NewFilterConfig(years, c.areas, c.measures)
}

// YearRange returns the inclusive list from..to. from > to yields nothing.
func YearRange(from, to int) []int {
	if from > to {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, y)
	}
	return out
}

// DefaultFilter selects every year, the first ten areas and the first three
// measures of the table, each in sorted order.
func DefaultFilter(t *Table) FilterConfig {
	areas := t.Unique(DimArea)
	if len(areas) > defaultAreaCount {
		areas = areas[:defaultAreaCount]
	}
	measures := t.Unique(DimMeasure)
	if len(measures) > defaultMeasureCount {
		measures = measures[:defaultMeasureCount]
	}
	return NewFilterConfig(t.Years(), areas, measures)
}

// Filter keeps rows whose period, area and measure are all selected.
// Dictionaries are carried over so IDs stay valid.
func Filter(t *Table, cfg FilterConfig) *Table {
	if t == nil {
		return &Table{}
	}
	areaOK := dictMask(t.AreaDict, cfg.areas)
	measOK := dictMask(t.MeasureDict, cfg.measures)
	yearOK := yearSet(cfg.years)

	return t.selectRows(func(i int) bool {
		return yearOK[t.Periods[i]] && areaOK[t.AreaIDs[i]] && measOK[t.MeasureIDs[i]]
	})
}

// FilterAreasPeriods applies only the area and year criteria. Indicator
// tables carry no GHS measure codes.
func FilterAreasPeriods(t *Table, areas []string, years []int) *Table {
	if t == nil {
		return &Table{}
	}
	areaOK := dictMask(t.AreaDict, areas)
	yearOK := yearSet(years)
	return t.selectRows(func(i int) bool {
		return yearOK[t.Periods[i]] && areaOK[t.AreaIDs[i]]
	})
}

// FilterValues keeps rows whose value satisfies keep. NaN rows never pass.
func FilterValues(t *Table, keep func(v float64) bool) *Table {
	if t == nil {
		return &Table{}
	}
	return t.selectRows(func(i int) bool {
		v := t.Values[i]
		return !math.IsNaN(v) && keep(v)
	})
}

func (t *Table) selectRows(keep func(i int) bool) *Table {
	out := &Table{AreaDict: t.AreaDict, MeasureDict: t.MeasureDict}
	for i := 0; i < t.Len(); i++ {
		if !keep(i) {
			continue
		}
		out.Periods = append(out.Periods, t.Periods[i])
		out.Values = append(out.Values, t.Values[i])
		out.AreaIDs = append(out.AreaIDs, t.AreaIDs[i])
		out.MeasureIDs = append(out.MeasureIDs, t.MeasureIDs[i])
	}
	return out
}

// dictMask maps dictionary IDs to selection membership.
func dictMask(dict, selected []string) []bool {
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[s] = true
	}
	mask := make([]bool, len(dict))
	for id, s := range dict {
		mask[id] = want[s]
	}
	return mask
}

func yearSet(years []int) map[int32]bool {
	set := make(map[int32]bool, len(years))
	for _, y := range years {
		set[int32(y)] = true
	}
	return set
}
