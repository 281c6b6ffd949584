package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"oecddash/internal/charts"
	"oecddash/internal/engine"

	"github.com/spf13/cobra"
)

type renderFlags struct {
	topic, subtopic string
	kind            string
	out             string
	x, category     string
	sign            string
	indicator       string
	from, to        int
	areas, measures []string
}

func renderCmd() *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write one chart of a subtopic as a standalone HTML page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			repo := engine.NewRepository(cfg.Catalog(), 0)

			var w io.Writer = cmd.OutOrStdout()
			if f.out != "" && f.out != "-" {
				file, err := os.Create(f.out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			return render(cmd.Context(), repo, f, w)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.topic, "topic", "ghg", "topic id")
	fl.StringVar(&f.subtopic, "subtopic", "with-lulucf", "subtopic id")
	fl.StringVar(&f.kind, "kind", string(charts.KindBar), fmt.Sprintf("chart kind, one of %v", charts.Kinds))
	fl.StringVarP(&f.out, "out", "o", "-", "output file, - for stdout")
	fl.StringVar(&f.x, "x", string(engine.DimArea), "x axis column")
	fl.StringVar(&f.category, "category", string(engine.DimMeasure), "category column")
	fl.StringVar(&f.sign, "sign", "all", "contributor filter: all, emissions or absorption")
	fl.StringVar(&f.indicator, "indicator", "", "indicator id for bubble and waterfall charts")
	fl.IntVar(&f.from, "from", 0, "first year, 0 for the earliest")
	fl.IntVar(&f.to, "to", 0, "last year, 0 for the latest")
	fl.StringSliceVar(&f.areas, "area", nil, "countries, defaults to the first ten")
	fl.StringSliceVar(&f.measures, "measure", nil, "measures, defaults to the first three")
	return cmd
}

func render(ctx context.Context, repo *engine.Repository, f renderFlags, w io.Writer) error {
	kind, err := charts.ParseKind(f.kind)
	if err != nil {
		return err
	}
	sign, err := engine.ParseSign(f.sign)
	if err != nil {
		return err
	}
	universe, err := repo.Subtopic(ctx, f.topic, f.subtopic)
	if err != nil {
		return err
	}
	cfg := selectionFor(universe, f)
	in := charts.Input{
		Title:    f.subtopic,
		Data:     engine.Filter(universe, cfg),
		X:        engine.Dim(f.x),
		Category: engine.Dim(f.category),
		Sign:     sign,
	}
	if t, ok := repo.Catalog().Topic(f.topic); ok {
		for _, s := range t.Subtopics {
			if s.ID == f.subtopic {
				in.Title = s.Name
			}
		}
	}

	id := f.indicator
	if id == "" && (kind == charts.KindBubble || kind == charts.KindBubbleAnimated) {
		if inds := repo.Catalog().Indicators; len(inds) > 0 {
			id = inds[0].ID
		}
	}
	if id != "" {
		src, ok := repo.Catalog().Indicator(id)
		if !ok {
			return fmt.Errorf("%w: %q", engine.ErrUnknownIndicator, id)
		}
		ind, err := repo.Indicator(ctx, id)
		if err != nil {
			return err
		}
		in.Indicator = src.Name
		in.IndicatorData = engine.FilterAreasPeriods(ind, cfg.Areas(), cfg.Years())
		if kind == charts.KindWaterfall {
			in.Data = in.IndicatorData
		}
	}
	if kind == charts.KindBubble || kind == charts.KindBubbleAnimated {
		pop, err := repo.Population(ctx)
		if err != nil {
			return err
		}
		in.Population = engine.FilterAreasPeriods(pop, cfg.Areas(), cfg.Years())
	}

	r := charts.Safe(in.Title, func() (charts.Renderer, error) { return charts.Build(kind, in) })
	return r.Render(w)
}

// selectionFor applies the year, area and measure flags over the default
// selection of universe.
func selectionFor(universe *engine.Table, f renderFlags) engine.FilterConfig {
	def := engine.DefaultFilter(universe)
	years, areas, measures := def.Years(), def.Areas(), def.Measures()
	if len(f.areas) > 0 {
		areas = f.areas
	}
	if len(f.measures) > 0 {
		measures = f.measures
	}
	if f.from != 0 || f.to != 0 {
		from, to := f.from, f.to
		if len(years) > 0 {
			if from == 0 {
				from = years[0]
			}
			if to == 0 {
				to = years[len(years)-1]
			}
		}
		years = engine.YearRange(from, to)
	}
	return engine.NewFilterConfig(years, areas, measures)
}
