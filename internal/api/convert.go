package api

import (
	"oecddash/internal/engine"
	"oecddash/internal/models"
)

func toObservations(t *engine.Table, offset, end int) []models.ObservationRow {
	rows := make([]models.ObservationRow, 0, end-offset)
	for i := offset; i < end; i++ {
		o := t.Row(i)
		rows = append(rows, models.ObservationRow{
			RefArea:    o.RefArea,
			TimePeriod: o.TimePeriod,
			Measure:    o.Measure,
			Value:      models.Float(o.Value),
		})
	}
	return rows
}

func toMeasures(infos []engine.MeasureInfo) []models.Measure {
	out := make([]models.Measure, len(infos))
	for i, m := range infos {
		out[i] = models.Measure{Code: m.Code, Type: string(m.Type), Icon: m.Icon, Name: m.Name, Suffix: m.Suffix}
	}
	return out
}

func toSummary(s *engine.Summary, measures []engine.MeasureInfo) models.SummaryResponse {
	out := models.SummaryResponse{
		StartYear: s.StartYear,
		EndYear:   s.EndYear,
		Rows:      make([]models.SummaryRow, len(s.Rows)),
		Measures:  toMeasures(measures),
	}
	for i, r := range s.Rows {
		out.Rows[i] = models.SummaryRow{
			Area:        r.Area,
			Description: r.Description,
			Start:       models.Float(r.Start),
			End:         models.Float(r.End),
			Change:      models.Float(r.Change),
		}
	}
	return out
}

func toPivot(p *engine.PivotTable, s *engine.ShareTable, colors map[string]string) models.PivotResponse {
	out := models.PivotResponse{
		X:        string(p.IndexDim),
		Category: string(p.ColumnDim),
		Index:    p.Index,
		Columns:  p.Columns,
		Values:   make([][]float64, len(p.Index)),
		Totals:   p.Total,
		Shares:   make([][]float64, len(s.Index)),
		AbsTotal: s.AbsTotal,
		Colors:   colors,
	}
	for r := range p.Index {
		out.Values[r] = p.Row(r)
	}
	n := len(s.Columns)
	for r := range s.Index {
		out.Shares[r] = s.Percent[r*n : (r+1)*n]
	}
	return out
}

func toAreas(category engine.Dim, shares []engine.AreaShare, total float64, notes []engine.AreaAnnotation, stacked bool) models.AreaResponse {
	out := models.AreaResponse{
		Category:    string(category),
		Total:       total,
		Shares:      make([]models.AreaShare, len(shares)),
		Annotations: make([]models.AreaAnnotation, len(notes)),
		Stacked:     stacked,
	}
	for i, s := range shares {
		out.Shares[i] = models.AreaShare{Category: s.Category, Area: s.Area, Percent: s.Percent}
	}
	for i, n := range notes {
		out.Annotations[i] = models.AreaAnnotation{Category: n.Category, X: n.X, Y: n.Y, Text: n.Text, FontSize: n.FontSize}
	}
	return out
}

func toContributors(c *engine.Contributors) models.ContributorsResponse {
	out := models.ContributorsResponse{
		By:      string(c.By),
		Sign:    c.Sign.Label(),
		Items:   make([]models.Contribution, len(c.Items)),
		Message: c.Message,
	}
	for i, it := range c.Items {
		out.Items[i] = models.Contribution{Category: it.Category, Value: it.Value, Percent: it.Percent, Color: it.Color}
	}
	return out
}

func toWaterfall(indicator string, w *engine.Waterfall) models.WaterfallResponse {
	out := models.WaterfallResponse{
		Indicator:  indicator,
		Bars:       make([]models.WaterfallBar, len(w.Bars)),
		Connectors: make([]models.Connector, len(w.Connectors)),
		GrandTotal: w.GrandTotal,
		YMin:       w.YMin,
		YMax:       w.YMax,
	}
	for i, b := range w.Bars {
		out.Bars[i] = models.WaterfallBar{
			Category:    b.Category,
			Base:        b.Base,
			Height:      b.Height,
			Color:       b.Color,
			InsideText:  b.InsideText,
			OutsideText: b.OutsideText,
			Percent:     b.Percent,
			FontSize:    b.FontSize,
			Total:       b.Total,
		}
	}
	for i, c := range w.Connectors {
		out.Connectors[i] = models.Connector{From: c.From, To: c.From + 1, Y: c.Y}
	}
	return out
}

func toRanking(r *engine.Ranking) models.RankingResponse {
	out := models.RankingResponse{
		By:     string(r.By),
		Frames: make([]models.RankFrame, len(r.Frames)),
		Colors: r.Colors,
		XMax:   r.XMax,
	}
	for i, f := range r.Frames {
		items := make([]models.RankItem, len(f.Values))
		for j, v := range f.Values {
			items[j] = models.RankItem{Category: v.Category, Value: v.Value}
		}
		out.Frames[i] = models.RankFrame{Period: f.Period, Items: items}
	}
	return out
}

func toBubbles(indicator string, animated bool, b *engine.Bubbles) models.BubbleResponse {
	out := models.BubbleResponse{
		Indicator: indicator,
		Animated:  animated,
		Points:    make([]models.BubblePoint, len(b.Points)),
		Colors:    b.Colors,
	}
	for i, p := range b.Points {
		out.Points[i] = models.BubblePoint{
			Area:       p.Area,
			Period:     p.Period,
			X:          p.X,
			Y:          p.Y,
			Population: p.Population,
			Size:       p.Size,
		}
	}
	return out
}
