package charts

import (
	"errors"
	"fmt"

	"oecddash/internal/engine"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const bubbleNote = "output of 3 variables of each country is accumulated over time except for the population being the median"

type bubbleFrame struct {
	Title  map[string]string `json:"title"`
	Series []bubbleSeries    `json:"series"`
}

type bubbleSeries struct {
	Data []bubbleDatum `json:"data"`
}

type bubbleDatum struct {
	Name       string     `json:"name"`
	Value      [2]float64 `json:"value"`
	SymbolSize int        `json:"symbolSize"`
}

// buildBubble plots GHS output against the selected indicator, one series
// per country so each keeps its color. Bubble size follows population.
func buildBubble(in Input, animated bool) (Renderer, error) {
	if in.IndicatorData == nil || in.Population == nil {
		return nil, errors.New("bubble chart needs indicator and population data")
	}
	kind := KindBubble
	var b *engine.Bubbles
	subtitle := bubbleNote
	if animated {
		kind = KindBubbleAnimated
		b = engine.AnimatedBubbles(in.Data, in.IndicatorData, in.Population, in.AreaColors)
		subtitle = in.Title
	} else {
		b = engine.StaticBubbles(in.Data, in.IndicatorData, in.Population, in.AreaColors)
	}
	heading := fmt.Sprintf("GHS output vs %s", in.Indicator)

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(string(kind), chartHeight)),
		title(heading, subtitle),
		tooltip("item"),
		legend(),
		charts.WithXAxisOpts(opts.XAxis{Name: in.Indicator, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "GHS Output", Type: "value"}),
	)

	points := b.Points
	if animated && len(b.Frames) > 0 {
		points = b.Frames[0].Points
	}
	areas := b.Areas()
	byArea := make(map[string]int, len(areas))
	for i, a := range areas {
		byArea[a] = i
		var data []opts.ScatterData
		for _, p := range points {
			if p.Area == a {
				data = append(data, opts.ScatterData{Name: p.Area, Value: []float64{p.X, p.Y}, SymbolSize: p.Size})
			}
		}
		sc.AddSeries(a, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: b.Colors[a]}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top", Color: "white", Formatter: "{a}"}),
		)
	}
	if !animated || len(b.Frames) == 0 {
		return sc, nil
	}

	frames := make([]any, len(b.Frames))
	for i, f := range b.Frames {
		bf := bubbleFrame{
			Title:  map[string]string{"text": fmt.Sprintf("%s, %d", heading, f.Period)},
			Series: make([]bubbleSeries, len(areas)),
		}
		for j := range bf.Series {
			bf.Series[j].Data = []bubbleDatum{}
		}
		for _, p := range f.Points {
			s := &bf.Series[byArea[p.Area]]
			s.Data = append(s.Data, bubbleDatum{Name: p.Area, Value: [2]float64{p.X, p.Y}, SymbolSize: p.Size})
		}
		frames[i] = bf
	}
	js, err := animate(string(kind), frames)
	if err != nil {
		return nil, err
	}
	sc.AddJSFuncs(js)
	return sc, nil
}
