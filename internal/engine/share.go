package engine

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ShareTable holds signed percentage shares of a pivot. Percent is
// flattened like PivotTable.Cells.
type ShareTable struct {
	Index    []string
	Columns  []string
	Percent  []float64
	AbsTotal []float64
}

// SignedShares converts each row of p into shares of the row's absolute
// total, keeping each cell's sign. Absolute shares of a row sum to 100, or
// the row is all zero when its absolute total is 0.
func SignedShares(p *PivotTable) *ShareTable {
	n := len(p.Columns)
	s := &ShareTable{
		Index:    append([]string(nil), p.Index...),
		Columns:  append([]string(nil), p.Columns...),
		Percent:  make([]float64, len(p.Cells)),
		AbsTotal: make([]float64, len(p.Index)),
	}
	for r := range p.Index {
		row := p.Cells[r*n : (r+1)*n]
		abs := floats.Norm(row, 1)
		s.AbsTotal[r] = abs
		if abs == 0 {
			continue
		}
		for c, v := range row {
			s.Percent[r*n+c] = v / abs * 100
		}
	}
	return s
}

// Share returns the signed share at (r, c).
func (s *ShareTable) Share(r, c int) float64 {
	return s.Percent[r*len(s.Columns)+c]
}

// Column returns the shares of category c down the index.
func (s *ShareTable) Column(c int) []float64 {
	out := make([]float64, len(s.Index))
	for r := range out {
		out[r] = s.Percent[r*len(s.Columns)+c]
	}
	return out
}

// SortByAbsTotalDesc orders rows by absolute activity, largest first.
func (s *ShareTable) SortByAbsTotalDesc() {
	n := len(s.Columns)
	order := make([]int, len(s.Index))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return s.AbsTotal[order[a]] > s.AbsTotal[order[b]] })

	index := make([]string, len(order))
	abs := make([]float64, len(order))
	pct := make([]float64, len(s.Percent))
	for i, r := range order {
		index[i] = s.Index[r]
		abs[i] = s.AbsTotal[r]
		copy(pct[i*n:(i+1)*n], s.Percent[r*n:(r+1)*n])
	}
	s.Index, s.AbsTotal, s.Percent = index, abs, pct
}
