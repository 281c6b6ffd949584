package engine

import (
	"fmt"
	"sort"
	"strconv"
)

// CategoryTotal is one category reduced to a scalar.
type CategoryTotal struct {
	Category string
	Value    float64
}

// GroupRow is one group of a long summary. Keys follow the dims order.
type GroupRow struct {
	Keys  []string
	Value float64
}

// SumBy totals t per value of d, sorted by category.
func SumBy(t *Table, d Dim) ([]CategoryTotal, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDim, d)
	}
	if t.Len() == 0 {
		return []CategoryTotal{}, nil
	}

	out := make([]CategoryTotal, 0)
	switch d {
	case DimArea, DimMeasure:
		// Dictionary IDs index a flat array directly.
		ids, dict := t.AreaIDs, t.AreaDict
		if d == DimMeasure {
			ids, dict = t.MeasureIDs, t.MeasureDict
		}
		sums := make([]float64, len(dict))
		seen := make([]bool, len(dict))
		for i, id := range ids {
			sums[id] += t.value(i)
			seen[id] = true
		}
		for id, ok := range seen {
			if ok {
				out = append(out, CategoryTotal{Category: dict[id], Value: sums[id]})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	case DimPeriod:
		sums := make(map[int32]float64)
		for i, p := range t.Periods {
			sums[p] += t.value(i)
		}
		for _, y := range t.Years() {
			out = append(out, CategoryTotal{Category: strconv.Itoa(y), Value: sums[int32(y)]})
		}
	}
	return out, nil
}

// GroupSum is the long summary of t grouped by dims. Groups are sorted by
// their keys in dims order.
func GroupSum(t *Table, dims ...Dim) ([]GroupRow, error) {
	for _, d := range dims {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDim, d)
		}
	}
	if t.Len() == 0 {
		return []GroupRow{}, nil
	}

	axes := make([][]int, len(dims))
	labels := make([][]string, len(dims))
	for k, d := range dims {
		labels[k], axes[k] = axis(t, d)
	}

	groups := make(map[string]int)
	out := make([]GroupRow, 0)
	positions := make([][]int, 0)
	for i := 0; i < t.Len(); i++ {
		key := make([]byte, 0, 8*len(dims))
		for k := range dims {
			key = strconv.AppendInt(key, int64(axes[k][i]), 10)
			key = append(key, ',')
		}
		g, ok := groups[string(key)]
		if !ok {
			g = len(out)
			groups[string(key)] = g
			row := GroupRow{Keys: make([]string, len(dims))}
			pos := make([]int, len(dims))
			for k := range dims {
				pos[k] = axes[k][i]
				row.Keys[k] = labels[k][pos[k]]
			}
			out = append(out, row)
			positions = append(positions, pos)
		}
		out[g].Value += t.value(i)
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		pa, pb := positions[order[a]], positions[order[b]]
		for k := range pa {
			if pa[k] != pb[k] {
				return pa[k] < pb[k]
			}
		}
		return false
	})
	sorted := make([]GroupRow, len(out))
	for i, g := range order {
		sorted[i] = out[g]
	}
	return sorted, nil
}

// SortTotalsDesc orders totals by value, largest first, keeping ties stable.
func SortTotalsDesc(totals []CategoryTotal) {
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].Value > totals[j].Value })
}

// Sum adds the values of t, skipping NaN.
func Sum(t *Table) float64 {
	var s float64
	for i := 0; i < t.Len(); i++ {
		s += t.value(i)
	}
	return s
}
