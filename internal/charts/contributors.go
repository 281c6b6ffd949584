package charts

import (
	"fmt"

	"oecddash/internal/engine"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func contributorsTitle(c *engine.Contributors) string {
	return fmt.Sprintf("Proportion of %s (%s)", engine.LabelForDim(c.By), c.Sign.Label())
}

// buildPie shows the share of each kept category. An empty selection or a
// zero sum is drawn as a message.
func buildPie(in Input) (Renderer, error) {
	c, err := engine.GroupContributors(in.Data, in.Category, in.Sign, false, in.Colors)
	if err != nil {
		return nil, err
	}
	if c.Empty {
		return Message(contributorsTitle(c), c.Message), nil
	}

	data := make([]opts.PieData, len(c.Items))
	for i, it := range c.Items {
		data[i] = opts.PieData{Name: it.Category, Value: it.Percent, ItemStyle: &opts.ItemStyle{Color: it.Color}}
	}
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(string(KindPie), chartHeight)),
		title(contributorsTitle(c), in.Title),
		tooltip("item"),
		legend(),
	)
	pie.AddSeries(engine.LabelForDim(c.By), data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "inside", Formatter: "{b}\n{d}%"}),
	)
	return pie, nil
}

type treemapNode struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	ItemStyle map[string]string `json:"itemStyle,omitempty"`
	Label     map[string]any    `json:"label,omitempty"`
	Children  []treemapNode     `json:"children,omitempty"`
}

// buildTreemap tiles the kept categories by magnitude. Absorptions are
// shown as absolute values.
func buildTreemap(in Input) (Renderer, error) {
	c, err := engine.GroupContributors(in.Data, in.Category, in.Sign, true, in.Colors)
	if err != nil {
		return nil, err
	}
	if c.Empty {
		return Message(contributorsTitle(c), c.Message), nil
	}

	nodes := make([]treemapNode, len(c.Items))
	for i, it := range c.Items {
		nodes[i] = treemapNode{
			Name:      it.Category,
			Value:     it.Value,
			ItemStyle: map[string]string{"color": it.Color},
			Label:     map[string]any{"formatter": fmt.Sprintf("%s\n%.1f%%", it.Category, it.Percent)},
		}
	}
	tm := charts.NewTreeMap()
	tm.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(string(KindTreemap), chartHeight)),
		title(contributorsTitle(c), in.Title),
		tooltip("item"),
	)
	tm.AddSeries(engine.LabelForDim(c.By), nil)

	// go-echarts nodes carry no per-node style, so the data is set here.
	js, err := mergeOption(string(KindTreemap), map[string]any{
		"series": []map[string]any{{
			"data":       nodes,
			"roam":       false,
			"breadcrumb": map[string]bool{"show": false},
			"label":      map[string]any{"show": true, "position": "inside", "color": "white"},
		}},
	})
	if err != nil {
		return nil, err
	}
	tm.AddJSFuncs(js)
	return tm, nil
}

// buildSunburst draws the fixed GHS category tree. Every leaf weighs one.
func buildSunburst(in Input) (Renderer, error) {
	root := sunburstNode(engine.CategoryHierarchy())

	sb := charts.NewSunburst()
	sb.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(string(KindSunburst), chartHeight)),
		title("GHS categories", in.Title),
		tooltip("item"),
	)
	sb.AddSeries("GHS", nil)

	js, err := mergeOption(string(KindSunburst), map[string]any{
		"series": []map[string]any{{
			"data":   []treemapNode{root},
			"radius": []string{"0%", "90%"},
			"label":  map[string]any{"rotate": "radial"},
		}},
	})
	if err != nil {
		return nil, err
	}
	sb.AddJSFuncs(js)
	return sb, nil
}

func sunburstNode(n engine.CategoryNode) treemapNode {
	out := treemapNode{Name: n.Name, Value: float64(n.Leaves())}
	for _, child := range n.Children {
		out.Children = append(out.Children, sunburstNode(child))
	}
	return out
}
