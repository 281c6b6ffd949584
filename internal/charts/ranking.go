package charts

import (
	"fmt"

	"oecddash/internal/engine"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type rankFrame struct {
	Title  map[string]string `json:"title"`
	YAxis  map[string]any    `json:"yAxis"`
	Series []rankSeries      `json:"series"`
}

type rankSeries struct {
	Data []rankDatum `json:"data"`
}

type rankDatum struct {
	Value     float64           `json:"value"`
	ItemStyle map[string]string `json:"itemStyle"`
}

// buildRanking races the categories year by year as horizontal bars, the
// largest on top. The value axis is fixed across frames.
func buildRanking(in Input) (Renderer, error) {
	r, err := engine.RankFrames(in.Data, in.Category, in.Colors)
	if err != nil {
		return nil, err
	}
	heading := fmt.Sprintf("Evolution of GHS output for each %s per year", engine.LabelForDim(in.Category))

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(string(KindRanking), "700px")),
		title(heading, in.Title),
		tooltip("axis"),
		charts.WithXAxisOpts(opts.XAxis{Name: engine.LabelForDim(in.Category), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Gas Output (Tonnes of CO2-equivalent)", Type: "value"}),
	)
	if len(r.Frames) == 0 {
		bar.SetXAxis([]string{}).AddSeries("GHS Output", []opts.BarData{})
		return bar, nil
	}

	first := r.Frames[0]
	names := make([]string, len(first.Values))
	data := make([]opts.BarData, len(first.Values))
	for i, v := range first.Values {
		names[i] = v.Category
		data[i] = opts.BarData{Value: v.Value, ItemStyle: &opts.ItemStyle{Color: r.Colors[v.Category]}}
	}
	bar.SetXAxis(names).AddSeries("GHS Output", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right", Color: "white"}),
		charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: "DarkSlateGrey"}),
	)
	bar.XYReversal()

	frames := make([]any, len(r.Frames))
	for i, f := range r.Frames {
		rf := rankFrame{
			Title:  map[string]string{"text": fmt.Sprintf("%s, %d", heading, f.Period)},
			YAxis:  map[string]any{"inverse": true, "data": categories(f.Values)},
			Series: []rankSeries{{Data: make([]rankDatum, len(f.Values))}},
		}
		for j, v := range f.Values {
			rf.Series[0].Data[j] = rankDatum{Value: v.Value, ItemStyle: map[string]string{"color": r.Colors[v.Category]}}
		}
		frames[i] = rf
	}
	axis, err := mergeOption(string(KindRanking), map[string]any{
		"xAxis": map[string]any{"min": 0, "max": r.XMax},
	})
	if err != nil {
		return nil, err
	}
	play, err := animate(string(KindRanking), frames)
	if err != nil {
		return nil, err
	}
	bar.AddJSFuncs(axis, play)
	return bar, nil
}

func categories(values []engine.CategoryTotal) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.Category
	}
	return out
}
