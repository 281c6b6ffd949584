package charts

import (
	"fmt"
	"strconv"

	"oecddash/internal/engine"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type markPoint struct {
	Data []markPointDatum `json:"data"`
}

type markPointDatum struct {
	Coord      []any          `json:"coord"`
	Symbol     string         `json:"symbol"`
	SymbolSize int            `json:"symbolSize"`
	Label      markPointLabel `json:"label"`
}

type markPointLabel struct {
	Show            bool   `json:"show"`
	Position        string `json:"position,omitempty"`
	Formatter       string `json:"formatter"`
	FontSize        int    `json:"fontSize"`
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
	BorderWidth     int    `json:"borderWidth,omitempty"`
	Padding         int    `json:"padding,omitempty"`
}

type seriesMarks struct {
	MarkPoint *markPoint `json:"markPoint,omitempty"`
}

// buildLine draws one series per category over the years. With area set
// the series are stacked and every layer is annotated with its share of
// the integrated total. Negative values cannot be stacked meaningfully,
// so such data falls back to plain lines.
func buildLine(in Input, area bool) (Renderer, error) {
	p, err := engine.PivotSum(in.Data, engine.DimPeriod, in.Category)
	if err != nil {
		return nil, err
	}
	kind := KindLine
	if area {
		kind = KindArea
	}
	subtitle := in.Title
	stacked := area && !in.Data.HasNegative()
	if area && !stacked {
		subtitle = "Negative values present, showing lines instead of stacked areas"
	}
	colors := in.colors()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(string(kind), chartHeight)),
		title(fmt.Sprintf("GHS output per %s over time", engine.LabelForDim(in.Category)), subtitle),
		tooltip("axis"),
		legend(),
		charts.WithXAxisOpts(opts.XAxis{Name: engine.LabelForDim(engine.DimPeriod), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Gas Output (Tonnes of CO2-equivalent)", Type: "value"}),
	)
	line.SetXAxis(p.Index)

	for c, col := range p.Columns {
		data := make([]opts.LineData, len(p.Index))
		for r := range p.Index {
			if v, ok := p.Cell(r, c); ok {
				data[r] = opts.LineData{Value: v}
			} else if stacked {
				data[r] = opts.LineData{Value: 0}
			} else {
				data[r] = opts.LineData{Value: nil}
			}
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colors[col]}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colors[col]}),
		}
		if stacked {
			seriesOpts = append(seriesOpts,
				charts.WithLineChartOpts(opts.LineChart{Stack: "area"}),
				charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.7}),
			)
		}
		line.AddSeries(col, data, seriesOpts...)
	}
	if !stacked {
		return line, nil
	}

	shares, total, err := engine.AttributeAreas(p)
	if err != nil {
		return nil, err
	}
	notes := engine.AreaAnnotations(p, shares, total)
	if len(notes) == 0 {
		return line, nil
	}
	series := make([]seriesMarks, len(p.Columns))
	for c, n := range notes {
		series[c].MarkPoint = &markPoint{Data: []markPointDatum{{
			Coord:      []any{strconv.Itoa(n.X), n.Y},
			Symbol:     "rect",
			SymbolSize: 1,
			Label: markPointLabel{
				Show:            true,
				Formatter:       n.Text,
				FontSize:        n.FontSize,
				Color:           "white",
				BackgroundColor: "rgba(0,0,0,0.7)",
				BorderColor:     "white",
				BorderWidth:     1,
				Padding:         2,
			},
		}}}
	}
	js, err := mergeOption(string(kind), map[string]any{"series": series})
	if err != nil {
		return nil, err
	}
	line.AddJSFuncs(js)
	return line, nil
}
