package charts

import (
	"fmt"
	"math"

	"oecddash/internal/engine"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	connectorColor = "rgb(63, 63, 63)"
	transparent    = "rgba(0,0,0,0)"
)

// floatingBar splits the span of b into the three stacked segments drawn
// for it. Bars stack per sign, so a bar crossing zero needs a segment on
// either side.
func floatingBar(b engine.WaterfallBar) (offset, value, split float64) {
	lo, hi := b.Base, b.Top()
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case lo >= 0:
		return lo, hi - lo, 0
	case hi <= 0:
		return hi, lo - hi, 0
	}
	return 0, hi, lo
}

// buildWaterfall draws each category as a floating bar on the running sum,
// sorted by value, closed by a TOTAL bar. Country bars take their palette
// color, any other category is green or red by sign.
func buildWaterfall(in Input) (Renderer, error) {
	var colors map[string]string
	if in.X == engine.DimArea {
		colors = in.AreaColors
		if colors == nil {
			colors = engine.AssignColors(in.Data, string(engine.DimArea))
		}
	}
	w, err := engine.WaterfallFromTable(in.Data, in.X, colors)
	if err != nil {
		return nil, err
	}
	name := in.Indicator
	if name == "" {
		name = in.Title
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(string(KindWaterfall), chartHeight)),
		title(fmt.Sprintf("%s Contributions by %s", name, engine.LabelForDim(in.X)), ""),
		tooltip("item"),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: engine.LabelForDim(in.X), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Gas Output (Tonnes of CO2-equivalent)", Type: "value", Min: w.YMin, Max: w.YMax}),
	)

	names := make([]string, len(w.Bars))
	offsets := make([]opts.BarData, len(w.Bars))
	values := make([]opts.BarData, len(w.Bars))
	splits := make([]opts.BarData, len(w.Bars))
	inside := make([]string, len(w.Bars))
	marks := make([]markPointDatum, len(w.Bars))
	for i, b := range w.Bars {
		names[i] = b.Category
		offset, value, split := floatingBar(b)
		style := &opts.ItemStyle{Color: b.Color, BorderColor: "white"}
		offsets[i] = opts.BarData{Value: offset}
		values[i] = opts.BarData{Value: value, ItemStyle: style}
		splits[i] = opts.BarData{Value: split, ItemStyle: style}
		inside[i] = b.InsideText
		marks[i] = markPointDatum{
			Coord:      []any{b.Category, math.Max(b.Base, b.Top())},
			Symbol:     "rect",
			SymbolSize: 1,
			Label: markPointLabel{
				Show:      true,
				Position:  "top",
				Formatter: b.OutsideText,
				FontSize:  b.FontSize,
				Color:     "white",
			},
		}
	}
	bar.SetXAxis(names)
	bar.AddSeries("offset", offsets,
		charts.WithBarChartOpts(opts.BarChart{Stack: "waterfall"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: transparent, BorderColor: transparent}),
	)
	bar.AddSeries("value", values,
		charts.WithBarChartOpts(opts.BarChart{Stack: "waterfall"}),
		insideLabel(),
	)
	bar.AddSeries("split", splits,
		charts.WithBarChartOpts(opts.BarChart{Stack: "waterfall"}),
	)

	for _, c := range w.Connectors {
		data := make([]opts.LineData, len(w.Bars))
		for i := range data {
			data[i] = opts.LineData{Value: nil}
		}
		data[c.From] = opts.LineData{Value: c.Y}
		data[c.From+1] = opts.LineData{Value: c.Y}
		line := charts.NewLine()
		line.SetXAxis(names)
		line.AddSeries(fmt.Sprintf("connector %d", c.From), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: connectorColor, Type: "dotted"}),
		)
		bar.Overlap(line)
	}

	labels, err := labelTexts(string(KindWaterfall), map[int]seriesLabels{1: {Texts: inside, FontSize: 14}})
	if err != nil {
		return nil, err
	}
	outside, err := mergeOption(string(KindWaterfall), map[string]any{
		"series": []seriesMarks{{}, {MarkPoint: &markPoint{Data: marks}}},
	})
	if err != nil {
		return nil, err
	}
	bar.AddJSFuncs(labels, outside)
	return bar, nil
}
