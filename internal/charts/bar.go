package charts

import (
	"fmt"
	"math"

	"oecddash/internal/engine"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const totalLineColor = "yellow"

func insideLabel() charts.SeriesOpts {
	return charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "inside", Color: "white"})
}

func newStackedBar(kind string, in Input, heading, yName string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(kind, chartHeight)),
		title(heading, in.Title),
		tooltip("axis"),
		legend(),
		charts.WithXAxisOpts(opts.XAxis{Name: engine.LabelForDim(in.X), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Type: "value"}),
	)
	return bar
}

func valueText(v, pct float64) string {
	return fmt.Sprintf("%s\n(%.1f%%)", engine.FormatNumber(v), math.Abs(pct))
}

// buildBar stacks every category per x value and overlays the net total as
// a line with one uniformly sized label per bar. Rows are ordered by total
// unless x is the period.
func buildBar(in Input) (Renderer, error) {
	p, err := engine.PivotSum(in.Data, in.X, in.Category)
	if err != nil {
		return nil, err
	}
	if in.X != engine.DimPeriod {
		p.SortByTotalDesc()
	}
	shares := engine.SignedShares(p)
	colors := in.colors()

	heading := fmt.Sprintf("GHS output of accumulated sum of all %s per %s",
		engine.LabelForDim(in.Category), engine.LabelForDim(in.X))
	bar := newStackedBar(string(KindBar), in, heading, "Gas Output (Tonnes of CO2-equivalent)")
	bar.SetXAxis(p.Index)

	labels := make(map[int]seriesLabels, len(p.Columns)+1)
	for c, col := range p.Columns {
		data := make([]opts.BarData, len(p.Index))
		texts := make([]string, len(p.Index))
		for r := range p.Index {
			v, ok := p.Cell(r, c)
			if !ok {
				data[r] = opts.BarData{Value: nil}
				continue
			}
			data[r] = opts.BarData{Value: v}
			texts[r] = valueText(v, shares.Share(r, c))
		}
		labels[c] = seriesLabels{Texts: texts, FontSize: 15}
		bar.AddSeries(col, data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colors[col], BorderColor: "DarkSlateGrey"}),
			insideLabel(),
		)
	}

	totals := make([]opts.LineData, len(p.Index))
	totalTexts := make([]string, len(p.Index))
	for r, v := range p.Total {
		totals[r] = opts.LineData{Value: v}
		totalTexts[r] = engine.FormatNumber(v)
	}
	labels[len(p.Columns)] = seriesLabels{Texts: totalTexts, FontSize: engine.BarTotalFontSize(totalTexts)}

	line := charts.NewLine()
	line.SetXAxis(p.Index)
	line.AddSeries("Net accumulative sum", totals,
		charts.WithLineStyleOpts(opts.LineStyle{Color: totalLineColor}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: totalLineColor}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top", Color: "white"}),
	)
	bar.Overlap(line)

	js, err := labelTexts(string(KindBar), labels)
	if err != nil {
		return nil, err
	}
	bar.AddJSFuncs(js)
	return bar, nil
}

// buildPercentBar stacks each category's signed share of its bar's
// absolute total. Bars are ordered by absolute total unless x is the
// period.
func buildPercentBar(in Input) (Renderer, error) {
	p, err := engine.PivotSum(in.Data, in.X, in.Category)
	if err != nil {
		return nil, err
	}
	shares := engine.SignedShares(p)
	if in.X != engine.DimPeriod {
		shares.SortByAbsTotalDesc()
	}
	row := make(map[string]int, len(p.Index))
	for r, label := range p.Index {
		row[label] = r
	}
	colors := in.colors()

	heading := fmt.Sprintf("GHS output of accumulated sum of all %s per %s",
		engine.LabelForDim(in.Category), engine.LabelForDim(in.X))
	bar := newStackedBar(string(KindBarPercent), in, heading, "Percentage (%)")
	bar.SetXAxis(shares.Index)

	labels := make(map[int]seriesLabels, len(shares.Columns))
	for c, col := range shares.Columns {
		data := make([]opts.BarData, len(shares.Index))
		texts := make([]string, len(shares.Index))
		for r, label := range shares.Index {
			pct := shares.Share(r, c)
			v, _ := p.Cell(row[label], c)
			data[r] = opts.BarData{Value: pct}
			texts[r] = valueText(v, pct)
		}
		labels[c] = seriesLabels{Texts: texts, FontSize: 8}
		bar.AddSeries(col, data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "percent"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colors[col], BorderColor: "DarkSlateGrey"}),
			insideLabel(),
		)
	}

	js, err := labelTexts(string(KindBarPercent), labels)
	if err != nil {
		return nil, err
	}
	bar.AddJSFuncs(js)
	return bar, nil
}
