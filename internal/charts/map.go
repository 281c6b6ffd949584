package charts

import (
	"fmt"

	"oecddash/internal/engine"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// viridisReversed runs from low (yellow) to high (purple) output.
var viridisReversed = []string{
	"#fde725", "#b5de2b", "#6ece58", "#35b779", "#1f9e89",
	"#26828e", "#31688e", "#3e4989", "#482878", "#440154",
}

const mapTitle = "GHS output by country"

func newWorldMap(kind, subtitle string, max float64) *charts.Map {
	m := charts.NewMap()
	m.RegisterMapType("world")
	m.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(kind, chartHeight)),
		title(mapTitle, subtitle),
		tooltip("item"),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max),
			InRange:    &opts.VisualMapInRange{Color: viridisReversed},
		}),
	)
	return m
}

func mapData(values []engine.CategoryTotal) []opts.MapData {
	data := make([]opts.MapData, len(values))
	for i, ct := range values {
		data[i] = opts.MapData{Name: WorldName(ct.Category), Value: ct.Value}
	}
	return data
}

func buildMap(in Input) (Renderer, error) {
	c, err := engine.MapTotals(in.Data)
	if err != nil {
		return nil, err
	}
	m := newWorldMap(string(KindMap), in.Title, c.Max)
	m.AddSeries("GHS Output", mapData(c.Values))
	return m, nil
}

type mapFrame struct {
	Title  map[string]string `json:"title"`
	Series []mapFrameSeries  `json:"series"`
}

type mapFrameSeries struct {
	Data []opts.MapData `json:"data"`
}

// buildAnimatedMap plays one frame per year on a shared color range.
func buildAnimatedMap(in Input) (Renderer, error) {
	c, err := engine.MapFrames(in.Data)
	if err != nil {
		return nil, err
	}
	m := newWorldMap(string(KindMapAnimated), in.Title, c.Max)
	if len(c.Frames) == 0 {
		m.AddSeries("GHS Output", []opts.MapData{})
		return m, nil
	}
	m.AddSeries("GHS Output", mapData(c.Frames[0].Values))

	frames := make([]any, len(c.Frames))
	for i, f := range c.Frames {
		frames[i] = mapFrame{
			Title:  map[string]string{"text": fmt.Sprintf("%s, %d", mapTitle, f.Period)},
			Series: []mapFrameSeries{{Data: mapData(f.Values)}},
		}
	}
	js, err := animate(string(KindMapAnimated), frames)
	if err != nil {
		return nil, err
	}
	m.AddJSFuncs(js)
	return m, nil
}
