package engine

import (
	"fmt"
	"strconv"
)

// Frame is one period of an animated chart.
type Frame struct {
	Period int
	Values []CategoryTotal
}

// Ranking is an animated horizontal bar race. Every frame shares the
// [0, XMax] value axis.
type Ranking struct {
	By     Dim
	Frames []Frame
	Colors map[string]string
	XMax   float64
}

// RankFrames groups t by (by, period). Each frame lists its categories by
// value, largest first. A nil colors map is assigned from t.
func RankFrames(t *Table, by Dim, colors map[string]string) (*Ranking, error) {
	if by == DimPeriod {
		return nil, fmt.Errorf("%w: cannot rank by %s", ErrInvalidDim, by)
	}
	frames, maxValue, err := periodFrames(t, by)
	if err != nil {
		return nil, err
	}
	for _, f := range frames {
		SortTotalsDesc(f.Values)
	}
	if colors == nil {
		colors = AssignColors(t, string(by))
	}
	return &Ranking{
		By:     by,
		Frames: frames,
		Colors: colors,
		XMax:   maxValue * 1.1,
	}, nil
}

// periodFrames sums t per (by, period) and returns frames in period order
// with categories sorted, plus the largest group value.
func periodFrames(t *Table, by Dim) ([]Frame, float64, error) {
	groups, err := GroupSum(t, DimPeriod, by)
	if err != nil {
		return nil, 0, err
	}
	frames := make([]Frame, 0)
	var maxValue float64
	for i, g := range groups {
		period, _ := strconv.Atoi(g.Keys[0])
		if len(frames) == 0 || frames[len(frames)-1].Period != period {
			frames = append(frames, Frame{Period: period})
		}
		f := &frames[len(frames)-1]
		f.Values = append(f.Values, CategoryTotal{Category: g.Keys[1], Value: g.Value})
		if i == 0 || g.Value > maxValue {
			maxValue = g.Value
		}
	}
	return frames, maxValue, nil
}

// Choropleth is per-country data for a world map. The color scale spans
// [0, Max].
type Choropleth struct {
	Values []CategoryTotal
	Frames []Frame
	Max    float64
}

// MapTotals sums t per country over the whole selection.
func MapTotals(t *Table) (*Choropleth, error) {
	values, err := SumBy(t, DimArea)
	if err != nil {
		return nil, err
	}
	c := &Choropleth{Values: values}
	for i, v := range values {
		if i == 0 || v.Value > c.Max {
			c.Max = v.Value
		}
	}
	return c, nil
}

// MapFrames sums t per (country, period) for an animated map.
func MapFrames(t *Table) (*Choropleth, error) {
	frames, maxValue, err := periodFrames(t, DimArea)
	if err != nil {
		return nil, err
	}
	return &Choropleth{Frames: frames, Max: maxValue}, nil
}

// Periods lists the frame periods in order.
func Periods(frames []Frame) []int {
	out := make([]int, len(frames))
	for i, f := range frames {
		out[i] = f.Period
	}
	return out
}
