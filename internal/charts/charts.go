package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"oecddash/internal/engine"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/labstack/gommon/log"
)

var ErrUnknownChart = errors.New("unknown chart")

type Kind string

const (
	KindMap            Kind = "map"
	KindMapAnimated    Kind = "map-animated"
	KindBar            Kind = "bar"
	KindBarPercent     Kind = "bar-percent"
	KindLine           Kind = "line"
	KindArea           Kind = "area"
	KindPie            Kind = "pie"
	KindTreemap        Kind = "treemap"
	KindRanking        Kind = "ranking"
	KindBubble         Kind = "bubble"
	KindBubbleAnimated Kind = "bubble-animated"
	KindWaterfall      Kind = "waterfall"
	KindSunburst       Kind = "sunburst"
)

var Kinds = []Kind{
	KindMap, KindMapAnimated, KindBar, KindBarPercent, KindLine, KindArea, KindPie,
	KindTreemap, KindRanking, KindBubble, KindBubbleAnimated, KindWaterfall, KindSunburst,
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, s)
}

// Renderer is satisfied by every go-echarts chart.
type Renderer interface {
	Render(w io.Writer) error
}

// Input is one filtered selection plus the choices a chart needs.
type Input struct {
	Title    string
	Data     *engine.Table
	X        engine.Dim
	Category engine.Dim
	// Colors maps Category values to colors. Nil assigns from Data.
	Colors map[string]string
	// AreaColors maps countries to colors for the waterfall and bubble
	// charts. Nil assigns from the plotted rows.
	AreaColors map[string]string
	Sign   engine.Sign

	Indicator     string
	IndicatorData *engine.Table
	Population    *engine.Table
}

func (in Input) colors() map[string]string {
	if in.Colors != nil {
		return in.Colors
	}
	return engine.AssignColors(in.Data, string(in.Category))
}

// Build draws one chart kind from in.
func Build(kind Kind, in Input) (Renderer, error) {
	if in.X == "" {
		in.X = engine.DimArea
	}
	if in.Category == "" {
		in.Category = engine.DimMeasure
	}
	switch kind {
	case KindMap:
		return buildMap(in)
	case KindMapAnimated:
		return buildAnimatedMap(in)
	case KindBar:
		return buildBar(in)
	case KindBarPercent:
		return buildPercentBar(in)
	case KindLine:
		return buildLine(in, false)
	case KindArea:
		return buildLine(in, true)
	case KindPie:
		return buildPie(in)
	case KindTreemap:
		return buildTreemap(in)
	case KindRanking:
		return buildRanking(in)
	case KindBubble:
		return buildBubble(in, false)
	case KindBubbleAnimated:
		return buildBubble(in, true)
	case KindWaterfall:
		return buildWaterfall(in)
	case KindSunburst:
		return buildSunburst(in)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
}

// Safe runs build and turns an error or a panic into a message panel.
func Safe(title string, build func() (Renderer, error)) (r Renderer) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("chart %q panicked: %v", title, p)
			r = Message(title, fmt.Sprintf("Error creating chart: %v", p))
		}
	}()
	r, err := build()
	if err != nil {
		log.Errorf("chart %q failed: %v", title, err)
		return Message(title, fmt.Sprintf("Error creating chart: %v", err))
	}
	return r
}

// Message is an empty panel carrying a title and a line of text.
func Message(title, text string) Renderer {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts("message", "400px")),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: text}),
	)
	return bar
}

const (
	chartWidth  = "800px"
	chartHeight = "600px"
	pageTitle   = "OECD Greenhouse Gas Dashboard"
)

func chartID(kind string) string {
	return "chart_" + strings.ReplaceAll(kind, "-", "_")
}

func initOpts(kind, height string) opts.Initialization {
	return opts.Initialization{
		PageTitle: pageTitle,
		Width:     chartWidth,
		Height:    height,
		ChartID:   chartID(kind),
		Theme:     types.ThemeChalk,
	}
}

func title(text, subtitle string) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{Title: text, Subtitle: subtitle})
}

func tooltip(trigger string) charts.GlobalOpts {
	return charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: trigger})
}

func legend() charts.GlobalOpts {
	return charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Orient: "vertical", Right: "0", Top: "middle"})
}
