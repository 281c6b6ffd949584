package engine

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/integrate"
)

// AreaShare is one category's integrated magnitude over the period axis.
type AreaShare struct {
	Category string
	Area     float64
	Percent  float64
}

// AreaAnnotation is a label placed inside a stacked area layer.
type AreaAnnotation struct {
	Category string
	X        int
	Y        float64
	Text     string
	FontSize int
}

// AttributeAreas integrates every category column of p over its period
// index with the trapezoidal rule. Missing cells count 0. Areas are
// absolute; shares are 0 when every area is 0. A series with fewer than two
// points has no area.
func AttributeAreas(p *PivotTable) ([]AreaShare, float64, error) {
	if p.IndexDim != DimPeriod {
		return nil, 0, fmt.Errorf("%w: area attribution needs a %s index, got %s", ErrInvalidDim, DimPeriod, p.IndexDim)
	}
	x, err := periodAxis(p.Index)
	if err != nil {
		return nil, 0, err
	}

	shares := make([]AreaShare, len(p.Columns))
	var total float64
	for c, name := range p.Columns {
		shares[c].Category = name
		if len(x) < 2 {
			continue
		}
		a := math.Abs(integrate.Trapezoidal(x, p.Column(c)))
		shares[c].Area = a
		total += a
	}
	if total > 0 {
		for c := range shares {
			shares[c].Percent = shares[c].Area / total * 100
		}
	}
	return shares, total, nil
}

func periodAxis(index []string) ([]float64, error) {
	x := make([]float64, len(index))
	for i, s := range index {
		y, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("period %q: %w", s, err)
		}
		x[i] = float64(y)
	}
	return x, nil
}

// AreaAnnotations places one label per layer at the middle period, halfway
// up the layer in stacking order. Nothing is placed when total is 0.
func AreaAnnotations(p *PivotTable, shares []AreaShare, total float64) []AreaAnnotation {
	if total <= 0 || len(p.Index) == 0 {
		return nil
	}
	mid := len(p.Index) / 2
	x, _ := strconv.Atoi(p.Index[mid])
	row := p.Row(mid)

	out := make([]AreaAnnotation, 0, len(shares))
	var below float64
	for c, s := range shares {
		top := below + row[c]
		out = append(out, AreaAnnotation{
			Category: s.Category,
			X:        x,
			Y:        (top + below) / 2,
			Text:     fmt.Sprintf("%s\nArea: %s\n%.1f%%", s.Category, FormatNumber(s.Area), s.Percent),
			FontSize: max(1, int(12*s.Area/total)),
		})
		below = top
	}
	return out
}
