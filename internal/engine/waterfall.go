package engine

import (
	"fmt"
	"math"
	"sort"
)

const TotalLabel = "TOTAL"

// WaterfallItem is one category already reduced to a single total.
type WaterfallItem struct {
	Category string
	Value    float64
}

// WaterfallBar is a floating bar spanning [Base, Base+Height].
type WaterfallBar struct {
	Category    string
	Base        float64
	Height      float64
	Color       string
	InsideText  string
	OutsideText string
	Percent     float64
	FontSize    int
	Total       bool
}

// Top is where the bar ends, which is also the next bar's base.
func (b WaterfallBar) Top() float64 { return b.Base + b.Height }

// Connector joins bar From to bar From+1 at height Y.
type Connector struct {
	From int
	Y    float64
}

// Waterfall is a positioned chart: the category bars sorted by value, then
// one TOTAL bar.
type Waterfall struct {
	Bars       []WaterfallBar
	Connectors []Connector
	GrandTotal float64
	YMin       float64
	YMax       float64
}

// PositionWaterfall sorts items by value, largest first, and stacks each on
// the running sum of those before it. The closing TOTAL bar starts at 0 and
// is the plain sum of all values. Percentages are signed shares of that sum
// and are not clamped; a zero sum yields 0%.
func PositionWaterfall(items []WaterfallItem, colors map[string]string) *Waterfall {
	w := &Waterfall{}
	if len(items) == 0 {
		return w
	}

	sorted := append([]WaterfallItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	for _, it := range sorted {
		w.GrandTotal += it.Value
	}
	barWidth := BarWidth(WaterfallPlotWidth, len(sorted)+1)

	var cumulative, lowest, peak float64
	for i, it := range sorted {
		pct := 0.0
		if w.GrandTotal != 0 {
			pct = it.Value / w.GrandTotal * 100
		}
		text := fmt.Sprintf("%s\n(%.1f%%)", FormatNumber(it.Value), pct)
		w.Bars = append(w.Bars, WaterfallBar{
			Category:    it.Category,
			Base:        cumulative,
			Height:      it.Value,
			Color:       barColor(it, colors),
			InsideText:  it.Category,
			OutsideText: text,
			Percent:     pct,
			FontSize:    WaterfallFontSize(text, barWidth),
		})
		cumulative += it.Value
		if i < len(sorted)-1 {
			w.Connectors = append(w.Connectors, Connector{From: i, Y: cumulative})
		}
		lowest = math.Min(lowest, cumulative)
		peak = math.Max(peak, cumulative)
	}

	totalText := fmt.Sprintf("%s\n(100%%)", FormatNumber(w.GrandTotal))
	w.Bars = append(w.Bars, WaterfallBar{
		Category:    TotalLabel,
		Height:      w.GrandTotal,
		Color:       ColorTotal,
		InsideText:  TotalLabel,
		OutsideText: totalText,
		Percent:     100,
		FontSize:    WaterfallFontSize(totalText, barWidth),
		Total:       true,
	})

	// 25% headroom for the outside labels.
	w.YMax = math.Max(peak, math.Max(sorted[0].Value, w.GrandTotal)) * 1.25
	w.YMin = math.Min(lowest, w.GrandTotal) * 1.25
	return w
}

func barColor(it WaterfallItem, colors map[string]string) string {
	if c, ok := colors[it.Category]; ok {
		return c
	}
	if it.Value >= 0 {
		return ColorPositive
	}
	return ColorNegative
}

// WaterfallFromTable totals t per value of by and positions the result.
func WaterfallFromTable(t *Table, by Dim, colors map[string]string) (*Waterfall, error) {
	totals, err := SumBy(t, by)
	if err != nil {
		return nil, err
	}
	items := make([]WaterfallItem, len(totals))
	for i, ct := range totals {
		items[i] = WaterfallItem{Category: ct.Category, Value: ct.Value}
	}
	return PositionWaterfall(items, colors), nil
}
