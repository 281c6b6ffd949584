package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"oecddash/internal/charts"
	"oecddash/internal/engine"
	"oecddash/internal/models"

	"github.com/labstack/echo/v4"
)

const defaultObservationLimit = 1000

type Handler struct {
	repo   atomic.Pointer[engine.Repository]
	colors *engine.ColorScheme
}

// NewHandler serves repo. A nil repo answers 503 until SetRepository is
// called; nil colors hold fixed assignments.
func NewHandler(repo *engine.Repository, colors *engine.ColorScheme) *Handler {
	if colors == nil {
		colors = engine.NewColorScheme(engine.ColorsFixed)
	}
	h := &Handler{colors: colors}
	if repo != nil {
		h.repo.Store(repo)
	}
	return h
}

func (h *Handler) SetRepository(repo *engine.Repository) {
	h.repo.Store(repo)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/topics", h.GetTopics)
	api.GET("/indicators", h.GetIndicators)
	api.POST("/cache/invalidate", h.InvalidateCache)

	sub := api.Group("/topics/:topic/:subtopic")
	sub.GET("/options", h.GetOptions)
	sub.GET("/observations", h.GetObservations)
	sub.GET("/summary", h.GetSummary)
	sub.GET("/pivot", h.GetPivot)
	sub.GET("/areas", h.GetAreas)
	sub.GET("/contributors", h.GetContributors)
	sub.GET("/waterfall", h.GetWaterfall)
	sub.GET("/ranking", h.GetRanking)
	sub.GET("/bubble", h.GetBubble)
	sub.GET("/charts/:kind", h.GetChart)
}

func (h *Handler) repository() (*engine.Repository, error) {
	repo := h.repo.Load()
	if repo == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "datasets are still loading")
	}
	return repo, nil
}

// selection is one subtopic filtered by the request's query.
type selection struct {
	repo     *engine.Repository
	topic    string
	subtopic string
	name     string
	universe *engine.Table
	cfg      engine.FilterConfig
	data     *engine.Table
}

func (s *selection) scope() string { return s.topic + "/" + s.subtopic }

func (h *Handler) selection(c echo.Context) (*selection, error) {
	repo, err := h.repository()
	if err != nil {
		return nil, err
	}
	s := &selection{repo: repo, topic: c.Param("topic"), subtopic: c.Param("subtopic")}
	s.universe, err = repo.Subtopic(c.Request().Context(), s.topic, s.subtopic)
	if err != nil {
		return nil, httpError(err)
	}
	s.cfg, err = parseFilter(c, s.universe)
	if err != nil {
		return nil, err
	}
	s.data = engine.Filter(s.universe, s.cfg)
	s.name = s.subtopic
	if t, ok := repo.Catalog().Topic(s.topic); ok {
		for _, src := range t.Subtopics {
			if src.ID == s.subtopic {
				s.name = src.Name
			}
		}
	}
	return s, nil
}

func (h *Handler) colorsFor(s *selection, column engine.Dim, visible *engine.Table) map[string]string {
	return h.colors.Colors(s.scope(), s.universe, visible, string(column))
}

// indicator loads an indicator restricted to the selected countries and
// years, with its display name.
func (s *selection) indicator(ctx context.Context, id string) (*engine.Table, string, error) {
	src, ok := s.repo.Catalog().Indicator(id)
	if !ok {
		return nil, "", httpError(fmt.Errorf("%w: %q", engine.ErrUnknownIndicator, id))
	}
	t, err := s.repo.Indicator(ctx, id)
	if err != nil {
		return nil, "", httpError(err)
	}
	return engine.FilterAreasPeriods(t, s.cfg.Areas(), s.cfg.Years()), src.Name, nil
}

func (s *selection) population(ctx context.Context) (*engine.Table, error) {
	t, err := s.repo.Population(ctx)
	if err != nil {
		return nil, httpError(err)
	}
	return engine.FilterAreasPeriods(t, s.cfg.Areas(), s.cfg.Years()), nil
}

// --- HANDLERS ---

func (h *Handler) GetTopics(c echo.Context) error {
	repo, err := h.repository()
	if err != nil {
		return err
	}
	out := models.TopicList{Topics: []models.TopicInfo{}}
	for _, t := range repo.Catalog().Topics {
		info := models.TopicInfo{ID: t.ID, Name: t.Name, Subtopics: []models.SubtopicInfo{}}
		for _, s := range t.Subtopics {
			info.Subtopics = append(info.Subtopics, models.SubtopicInfo{ID: s.ID, Name: s.Name})
		}
		if len(t.Subtopics) > 0 {
			ds, err := repo.Topic(c.Request().Context(), t.ID)
			if err != nil {
				info.Errors = append(info.Errors, models.LoadFailure{Error: err.Error()})
			} else {
				for _, le := range ds.Errors {
					info.Errors = append(info.Errors, models.LoadFailure{Subtopic: le.Subtopic, Error: le.Error()})
				}
			}
		}
		out.Topics = append(out.Topics, info)
	}
	return sendJSON(c, out)
}

func indicatorInfos(cat engine.Catalog) []models.IndicatorInfo {
	out := make([]models.IndicatorInfo, len(cat.Indicators))
	for i, s := range cat.Indicators {
		out[i] = models.IndicatorInfo{ID: s.ID, Name: s.Name}
	}
	return out
}

func (h *Handler) GetIndicators(c echo.Context) error {
	repo, err := h.repository()
	if err != nil {
		return err
	}
	return sendJSON(c, indicatorInfos(repo.Catalog()))
}

func (h *Handler) GetOptions(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	def := engine.DefaultFilter(s.universe)
	return sendJSON(c, models.Options{
		Topic:      s.topic,
		Subtopic:   s.subtopic,
		Years:      s.universe.Years(),
		Areas:      s.universe.Unique(engine.DimArea),
		Measures:   s.universe.Unique(engine.DimMeasure),
		Defaults:   models.Selection{Years: def.Years(), Areas: def.Areas(), Measures: def.Measures()},
		Indicators: indicatorInfos(s.repo.Catalog()),
		ColorMode:  h.colors.Mode().String(),
	})
}

// GetObservations pages through the filtered rows, or streams them all as
// Arrow IPC with ?format=arrow.
func (h *Handler) GetObservations(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	switch c.QueryParam("format") {
	case "", "json":
	case "arrow":
		var buf bytes.Buffer
		if err := engine.WriteArrow(&buf, s.data); err != nil {
			return httpError(err)
		}
		return sendBytes(c, mimeArrowStream, buf.Bytes())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown format %q", c.QueryParam("format")))
	}

	total := s.data.Len()
	limit, offset := getPaginationParams(c, defaultObservationLimit)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return sendJSON(c, map[string]interface{}{
		"data":   toObservations(s.data, offset, end),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetSummary(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	return sendJSON(c, toSummary(engine.Summarize(s.data, s.cfg), engine.DescribeMeasures(s.data)))
}

func (h *Handler) GetPivot(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	x, err := dimParam(c, "x", engine.DimArea)
	if err != nil {
		return err
	}
	category, err := dimParam(c, "category", engine.DimMeasure)
	if err != nil {
		return err
	}
	p, err := engine.PivotSum(s.data, x, category)
	if err != nil {
		return httpError(err)
	}
	if x != engine.DimPeriod {
		p.SortByTotalDesc()
	}
	return sendJSON(c, toPivot(p, engine.SignedShares(p), h.colorsFor(s, category, s.data)))
}

func (h *Handler) GetAreas(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	category, err := dimParam(c, "category", engine.DimMeasure)
	if err != nil {
		return err
	}
	p, err := engine.PivotSum(s.data, engine.DimPeriod, category)
	if err != nil {
		return httpError(err)
	}
	shares, total, err := engine.AttributeAreas(p)
	if err != nil {
		return httpError(err)
	}
	notes := engine.AreaAnnotations(p, shares, total)
	return sendJSON(c, toAreas(category, shares, total, notes, !s.data.HasNegative()))
}

func (h *Handler) GetContributors(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	by, err := dimParam(c, "by", engine.DimMeasure)
	if err != nil {
		return err
	}
	sign, err := signParam(c)
	if err != nil {
		return err
	}
	absolute, err := boolParam(c, "absolute")
	if err != nil {
		return err
	}
	out, err := engine.GroupContributors(s.data, by, sign, absolute, h.colorsFor(s, by, s.data))
	if err != nil {
		return httpError(err)
	}
	return sendJSON(c, toContributors(out))
}

// GetWaterfall totals the selection, or the named indicator over the
// selected countries and years, per value of by.
func (h *Handler) GetWaterfall(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	by, err := dimParam(c, "by", engine.DimArea)
	if err != nil {
		return err
	}
	table, name := s.data, ""
	if id := c.QueryParam("indicator"); id != "" {
		if table, name, err = s.indicator(c.Request().Context(), id); err != nil {
			return err
		}
	}
	var colors map[string]string
	if by == engine.DimArea {
		colors = h.colorsFor(s, engine.DimArea, table)
	}
	w, err := engine.WaterfallFromTable(table, by, colors)
	if err != nil {
		return httpError(err)
	}
	return sendJSON(c, toWaterfall(name, w))
}

func (h *Handler) GetRanking(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	by, err := dimParam(c, "by", engine.DimArea)
	if err != nil {
		return err
	}
	r, err := engine.RankFrames(s.data, by, h.colorsFor(s, by, s.data))
	if err != nil {
		return httpError(err)
	}
	return sendJSON(c, toRanking(r))
}

func (h *Handler) GetBubble(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	id := c.QueryParam("indicator")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "indicator is required")
	}
	animated, err := boolParam(c, "animated")
	if err != nil {
		return err
	}
	ind, name, err := s.indicator(c.Request().Context(), id)
	if err != nil {
		return err
	}
	pop, err := s.population(c.Request().Context())
	if err != nil {
		return err
	}
	colors := h.colorsFor(s, engine.DimArea, s.data)
	var b *engine.Bubbles
	if animated {
		b = engine.AnimatedBubbles(s.data, ind, pop, colors)
	} else {
		b = engine.StaticBubbles(s.data, ind, pop, colors)
	}
	return sendJSON(c, toBubbles(name, animated, b))
}

// GetChart renders one chart as a standalone HTML page. A chart that fails
// to build is rendered as a message panel with status 200.
func (h *Handler) GetChart(c echo.Context) error {
	s, err := h.selection(c)
	if err != nil {
		return err
	}
	kind, err := charts.ParseKind(c.Param("kind"))
	if err != nil {
		return httpError(err)
	}
	in, err := h.chartInput(c, s, kind)
	if err != nil {
		return err
	}

	r := charts.Safe(s.name, func() (charts.Renderer, error) { return charts.Build(kind, in) })
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		return httpError(err)
	}
	return sendBytes(c, echo.MIMETextHTMLCharsetUTF8, buf.Bytes())
}

func (h *Handler) chartInput(c echo.Context, s *selection, kind charts.Kind) (charts.Input, error) {
	in := charts.Input{Title: s.name, Data: s.data}
	var err error
	if in.X, err = dimParam(c, "x", engine.DimArea); err != nil {
		return in, err
	}
	if in.Category, err = dimParam(c, "category", engine.DimMeasure); err != nil {
		return in, err
	}
	if in.Sign, err = signParam(c); err != nil {
		return in, err
	}
	in.Colors = h.colorsFor(s, in.Category, s.data)

	ctx := c.Request().Context()
	id := c.QueryParam("indicator")
	switch kind {
	case charts.KindBubble, charts.KindBubbleAnimated:
		if id == "" {
			if inds := s.repo.Catalog().Indicators; len(inds) > 0 {
				id = inds[0].ID
			}
		}
		if in.IndicatorData, in.Indicator, err = s.indicator(ctx, id); err != nil {
			return in, err
		}
		if in.Population, err = s.population(ctx); err != nil {
			return in, err
		}
	case charts.KindWaterfall:
		if id != "" {
			if in.Data, in.Indicator, err = s.indicator(ctx, id); err != nil {
				return in, err
			}
		}
	}
	// After the waterfall swap, so indicator-only countries get colors too.
	in.AreaColors = h.colorsFor(s, engine.DimArea, in.Data)
	return in, nil
}

// InvalidateCache drops one topic with ?topic=, or everything.
func (h *Handler) InvalidateCache(c echo.Context) error {
	repo, err := h.repository()
	if err != nil {
		return err
	}
	topic := c.QueryParam("topic")
	if topic == "" {
		repo.InvalidateAll()
		return c.JSON(http.StatusOK, map[string]string{"invalidated": "all"})
	}
	if _, ok := repo.Catalog().Topic(topic); !ok {
		return httpError(fmt.Errorf("%w: %q", engine.ErrUnknownTopic, topic))
	}
	repo.Invalidate(topic)
	return c.JSON(http.StatusOK, map[string]string{"invalidated": topic})
}
