package engine

import (
	"math"
	"sort"

	"golang.org/x/exp/maps"
)

const SummaryDescription = "Greenhouse Gas Output"

// SummaryRow compares a country's first and last selected year. A side
// with no rows is NaN, and Change is NaN when the start is 0 or missing.
type SummaryRow struct {
	Area        string
	Description string
	Start       float64
	End         float64
	Change      float64
}

// Summary is the start versus end comparison of a selection.
type Summary struct {
	StartYear int
	EndYear   int
	Rows      []SummaryRow
}

// Summarize totals t per country in the first and last year of cfg and
// reports the percentage change. Countries present in either year appear.
func Summarize(t *Table, cfg FilterConfig) *Summary {
	start, ok1 := cfg.StartYear()
	end, ok2 := cfg.EndYear()
	s := &Summary{StartYear: start, EndYear: end, Rows: []SummaryRow{}}
	if !ok1 || !ok2 {
		return s
	}

	starts := make(map[string]float64)
	ends := make(map[string]float64)
	for i := 0; i < t.Len(); i++ {
		if t.Period(i) == start {
			starts[t.Area(i)] += t.value(i)
		}
		// start and end may be the same year.
		if t.Period(i) == end {
			ends[t.Area(i)] += t.value(i)
		}
	}

	areas := make(map[string]bool)
	for a := range starts {
		areas[a] = true
	}
	for a := range ends {
		areas[a] = true
	}
	names := maps.Keys(areas)
	sort.Strings(names)

	for _, a := range names {
		row := SummaryRow{Area: a, Description: SummaryDescription, Start: math.NaN(), End: math.NaN(), Change: math.NaN()}
		if v, ok := starts[a]; ok {
			row.Start = v
		}
		if v, ok := ends[a]; ok {
			row.End = v
		}
		if row.Start != 0 && !math.IsNaN(row.Start) && !math.IsNaN(row.End) {
			row.Change = (row.End - row.Start) / row.Start * 100
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}
