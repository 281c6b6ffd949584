package engine

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

var ErrInvalidDim = errors.New("invalid dimension")

// PivotTable is the wide form of a table: one row per index value, one
// column per category value, cells summed.
//
// Cells and Present are flattened [Row][Column] -> [Row*NumColumns + Column].
type PivotTable struct {
	IndexDim  Dim
	ColumnDim Dim
	Index     []string
	Columns   []string
	Cells     []float64
	Present   []bool
	// Total is the row sum over every category column. Missing cells count 0.
	Total []float64
}

// axis assigns each row of t its position among the sorted distinct values
// of d.
func axis(t *Table, d Dim) (labels []string, pos []int) {
	labels = t.Unique(d)
	lookup := make(map[string]int, len(labels))
	for i, l := range labels {
		lookup[l] = i
	}
	pos = make([]int, t.Len())
	for i := range pos {
		pos[i] = lookup[t.Key(i, d)]
	}
	return labels, pos
}

// PivotSum groups t by (index, column) and sums the values into a wide
// table. Index and columns are sorted, periods numerically.
func PivotSum(t *Table, index, column Dim) (*PivotTable, error) {
	if !index.Valid() || !column.Valid() {
		return nil, fmt.Errorf("%w: pivot %q x %q", ErrInvalidDim, index, column)
	}
	if index == column {
		return nil, fmt.Errorf("%w: pivot index and column are both %s", ErrInvalidDim, index)
	}

	rows, rowPos := axis(t, index)
	cols, colPos := axis(t, column)
	numCols := len(cols)

	p := &PivotTable{
		IndexDim:  index,
		ColumnDim: column,
		Index:     rows,
		Columns:   cols,
		Cells:     make([]float64, len(rows)*numCols),
		Present:   make([]bool, len(rows)*numCols),
		Total:     make([]float64, len(rows)),
	}
	for i := 0; i < t.Len(); i++ {
		idx := rowPos[i]*numCols + colPos[i]
		p.Cells[idx] += t.value(i)
		p.Present[idx] = true
	}
	for r := range rows {
		p.Total[r] = floats.Sum(p.Cells[r*numCols : (r+1)*numCols])
	}
	return p, nil
}

func (p *PivotTable) NumRows() int { return len(p.Index) }

// Cell returns the summed value at (r, c) and whether any row contributed.
func (p *PivotTable) Cell(r, c int) (float64, bool) {
	idx := r*len(p.Columns) + c
	return p.Cells[idx], p.Present[idx]
}

// Row returns the cells of row r with missing cells as 0.
func (p *PivotTable) Row(r int) []float64 {
	n := len(p.Columns)
	return append([]float64(nil), p.Cells[r*n:(r+1)*n]...)
}

// Column returns category column c down the index, missing cells as 0.
func (p *PivotTable) Column(c int) []float64 {
	out := make([]float64, len(p.Index))
	for r := range out {
		out[r] = p.Cells[r*len(p.Columns)+c]
	}
	return out
}

// ColumnIndex finds a category column by name.
func (p *PivotTable) ColumnIndex(name string) int {
	for i, c := range p.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// SortByTotalDesc reorders the rows by Total, largest first. Ties keep
// their index order.
func (p *PivotTable) SortByTotalDesc() {
	order := make([]int, len(p.Index))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return p.Total[order[a]] > p.Total[order[b]] })
	p.permuteRows(order)
}

// permuteRows rearranges rows so that new row i is old row order[i].
func (p *PivotTable) permuteRows(order []int) {
	n := len(p.Columns)
	index := make([]string, len(order))
	total := make([]float64, len(order))
	cells := make([]float64, len(p.Cells))
	present := make([]bool, len(p.Present))
	for i, r := range order {
		index[i] = p.Index[r]
		total[i] = p.Total[r]
		copy(cells[i*n:(i+1)*n], p.Cells[r*n:(r+1)*n])
		copy(present[i*n:(i+1)*n], p.Present[r*n:(r+1)*n])
	}
	p.Index, p.Total, p.Cells, p.Present = index, total, cells, present
}
