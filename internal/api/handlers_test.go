package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oecddash/internal/engine"
	"oecddash/internal/models"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ghgCSV = `REF_AREA,MEASURE,TIME_PERIOD,OBS_VALUE,UNIT_MULT
USA,CO2,2010,100,0
USA,CO2,2011,120,0
USA,F_CO2,2010,-20,0
FRA,CO2,2010,40,0
FRA,CO2,2011,50,0
FRA,F_CO2,2011,-5,0
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestServer(t *testing.T) (*echo.Echo, *engine.Repository) {
	t.Helper()
	dir := t.TempDir()
	cat := engine.Catalog{
		Topics: []engine.Topic{
			{ID: "ghg", Name: "Greenhouse Gas Output", Subtopics: []engine.Source{
				{ID: "with", Name: "With LULUCF", Path: writeFile(t, dir, "with.csv", ghgCSV)},
				{ID: "broken", Name: "Broken", Path: filepath.Join(dir, "missing.csv")},
			}},
			{ID: "nutrient", Name: "Nutrient Input and Output"},
		},
		Indicators: []engine.Source{
			{ID: "land", Name: "Agricultural Land Area", Path: writeFile(t, dir, "land.csv",
				"REF_AREA,TIME_PERIOD,OBS_VALUE\nUSA,2010,5\nUSA,2011,6\nFRA,2010,2\nFRA,2011,3\nJPN,2010,4\n")},
		},
		Population: writeFile(t, dir, "pop.csv",
			"REF_AREA,TIME_PERIOD,OBS_VALUE\nUSA,2010,300\nUSA,2011,310\nFRA,2010,65\nFRA,2011,66\n"),
	}
	repo := engine.NewRepository(cat, 0)

	e := echo.New()
	e.JSONSerializer = JSONSerializer{}
	NewHandler(repo, engine.NewColorScheme(engine.ColorsFixed)).RegisterRoutes(e)
	return e, repo
}

func get(e *echo.Echo, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestLoadingReturns503(t *testing.T) {
	// 1. Setup: no repository yet
	e := echo.New()
	h := NewHandler(nil, nil)
	h.RegisterRoutes(e)

	// 2. Run
	rec := get(e, "/api/topics")

	// 3. Assertions
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, repo := newTestServer(t)
	h.SetRepository(repo)
	assert.Equal(t, http.StatusOK, get(e, "/api/topics").Code)
}

func TestGetTopics(t *testing.T) {
	e, _ := newTestServer(t)

	var out models.TopicList
	decode(t, get(e, "/api/topics"), &out)

	require.Len(t, out.Topics, 2)
	ghg := out.Topics[0]
	assert.Equal(t, []models.SubtopicInfo{{ID: "with", Name: "With LULUCF"}, {ID: "broken", Name: "Broken"}}, ghg.Subtopics)
	require.Len(t, ghg.Errors, 1)
	assert.Equal(t, "broken", ghg.Errors[0].Subtopic)
	assert.Empty(t, out.Topics[1].Errors)
}

func TestGetOptions(t *testing.T) {
	e, _ := newTestServer(t)

	var out models.Options
	decode(t, get(e, "/api/topics/ghg/with/options"), &out)

	assert.Equal(t, []int{2010, 2011}, out.Years)
	assert.Equal(t, []string{"FRA", "USA"}, out.Areas)
	assert.Equal(t, []string{"CO2", "F_CO2"}, out.Measures)
	assert.Equal(t, out.Areas, out.Defaults.Areas)
	assert.Equal(t, "fixed", out.ColorMode)
	require.Len(t, out.Indicators, 1)
	assert.Equal(t, "land", out.Indicators[0].ID)
}

type observationPage struct {
	Data   []models.ObservationRow `json:"data"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

func TestGetObservations(t *testing.T) {
	e, _ := newTestServer(t)

	// 1. Filtered and paged
	var page observationPage
	decode(t, get(e, "/api/topics/ghg/with/observations?area=USA&measure=CO2,F_CO2&limit=2&offset=1"), &page)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "USA", page.Data[0].RefArea)
	require.NotNil(t, page.Data[0].Value)

	// 2. Year range
	decode(t, get(e, "/api/topics/ghg/with/observations?from=2011"), &page)
	assert.Equal(t, 3, page.Total)

	// 3. Present but empty selects nothing
	decode(t, get(e, "/api/topics/ghg/with/observations?area="), &page)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Data)

	// 4. Offset past the end
	decode(t, get(e, "/api/topics/ghg/with/observations?offset=100"), &page)
	assert.Equal(t, 6, page.Total)
	assert.Empty(t, page.Data)
}

func TestETag(t *testing.T) {
	e, _ := newTestServer(t)

	rec := get(e, "/api/topics/ghg/with/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)

	rec = get(e, "/api/topics/ghg/with/summary", "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = get(e, "/api/topics/ghg/with/summary?area=USA", "If-None-Match", tag)
	assert.Equal(t, http.StatusOK, rec.Code, "a different selection has a different tag")
}

func TestGetObservationsArrow(t *testing.T) {
	e, _ := newTestServer(t)

	rec := get(e, "/api/topics/ghg/with/observations?format=arrow")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mimeArrowStream, rec.Header().Get(echo.HeaderContentType))
	assert.NotZero(t, rec.Body.Len())

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/topics/ghg/with/observations?format=xml").Code)
}

func TestGetSummary(t *testing.T) {
	e, _ := newTestServer(t)

	var out models.SummaryResponse
	decode(t, get(e, "/api/topics/ghg/with/summary"), &out)

	assert.Equal(t, 2010, out.StartYear)
	assert.Equal(t, 2011, out.EndYear)
	require.Len(t, out.Rows, 2)
	usa := out.Rows[1]
	assert.Equal(t, "USA", usa.Area)
	require.NotNil(t, usa.Start)
	assert.Equal(t, 80.0, *usa.Start)
	assert.InDelta(t, 50, *usa.Change, 1e-9)
	require.Len(t, out.Measures, 2)
	assert.Equal(t, "gas", out.Measures[0].Type)
}

func TestGetPivot(t *testing.T) {
	e, _ := newTestServer(t)

	var out models.PivotResponse
	decode(t, get(e, "/api/topics/ghg/with/pivot?x=year&category=measure"), &out)

	assert.Equal(t, "TIME_PERIOD", out.X)
	assert.Equal(t, []string{"2010", "2011"}, out.Index)
	assert.Equal(t, []string{"CO2", "F_CO2"}, out.Columns)
	assert.Equal(t, []float64{140, -20}, out.Values[0])
	assert.Equal(t, []float64{120, 165}, out.Totals)
	assert.InDelta(t, 87.5, out.Shares[0][0], 1e-9)
	assert.InDelta(t, -12.5, out.Shares[0][1], 1e-9)
	assert.Equal(t, engine.Palette[0], out.Colors["CO2"])

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/topics/ghg/with/pivot?x=OBS_VALUE").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/topics/ghg/with/pivot?x=area&category=area").Code)
}

func TestGetAreas(t *testing.T) {
	e, _ := newTestServer(t)

	var out models.AreaResponse
	decode(t, get(e, "/api/topics/ghg/with/areas"), &out)
	assert.False(t, out.Stacked, "negative values cannot be stacked")
	require.Len(t, out.Shares, 2)

	decode(t, get(e, "/api/topics/ghg/with/areas?measure=CO2"), &out)
	assert.True(t, out.Stacked)
	require.Len(t, out.Shares, 1)
	assert.InDelta(t, 155, out.Shares[0].Area, 1e-9)
	assert.InDelta(t, 100, out.Shares[0].Percent, 1e-9)
	require.Len(t, out.Annotations, 1)
}

func TestGetContributors(t *testing.T) {
	e, _ := newTestServer(t)

	var out models.ContributorsResponse
	decode(t, get(e, "/api/topics/ghg/with/contributors?sign=absorption&absolute=true"), &out)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "F_CO2", out.Items[0].Category)
	assert.Equal(t, 25.0, out.Items[0].Value)

	decode(t, get(e, "/api/topics/ghg/with/contributors?sign=absorption&measure=CO2"), &out)
	assert.Empty(t, out.Items)
	assert.NotEmpty(t, out.Message)

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/topics/ghg/with/contributors?sign=both").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/topics/ghg/with/contributors?absolute=maybe").Code)
}

func TestGetWaterfall(t *testing.T) {
	e, _ := newTestServer(t)

	var out models.WaterfallResponse
	decode(t, get(e, "/api/topics/ghg/with/waterfall"), &out)
	require.Len(t, out.Bars, 3)
	assert.Equal(t, "USA", out.Bars[0].Category)
	assert.Equal(t, engine.TotalLabel, out.Bars[2].Category)
	assert.Equal(t, 285.0, out.GrandTotal)
	require.Len(t, out.Connectors, 1)
	assert.Equal(t, 1, out.Connectors[0].To)

	decode(t, get(e, "/api/topics/ghg/with/waterfall?indicator=land"), &out)
	assert.Equal(t, "Agricultural Land Area", out.Indicator)
	assert.Equal(t, 16.0, out.GrandTotal)

	assert.Equal(t, http.StatusNotFound, get(e, "/api/topics/ghg/with/waterfall?indicator=gdp").Code)
}

func TestGetRanking(t *testing.T) {
	e, _ := newTestServer(t)

	var out models.RankingResponse
	decode(t, get(e, "/api/topics/ghg/with/ranking"), &out)
	require.Len(t, out.Frames, 2)
	assert.Equal(t, "USA", out.Frames[0].Items[0].Category)
	assert.InDelta(t, 132, out.XMax, 1e-9)
	assert.Len(t, out.Colors, 2)

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/topics/ghg/with/ranking?by=year").Code)
}

func TestGetBubble(t *testing.T) {
	e, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/topics/ghg/with/bubble").Code)

	var out models.BubbleResponse
	decode(t, get(e, "/api/topics/ghg/with/bubble?indicator=land"), &out)
	require.Len(t, out.Points, 2)
	assert.Equal(t, "USA", out.Points[1].Area)
	assert.Equal(t, 11.0, out.Points[1].X)

	decode(t, get(e, "/api/topics/ghg/with/bubble?indicator=land&animated=true"), &out)
	assert.True(t, out.Animated)
	assert.Len(t, out.Points, 4)
}

func TestFixedColorsAgreeAcrossEndpoints(t *testing.T) {
	// 1. Setup: held colors come from the whole subtopic, so USA and F_CO2
	// take the second palette slot even when filtered down to themselves.
	e, _ := newTestServer(t)
	usa, fco2 := engine.Palette[1], engine.Palette[1]

	// 2. Run + 3. Assertions
	var pivot models.PivotResponse
	decode(t, get(e, "/api/topics/ghg/with/pivot"), &pivot)
	assert.Equal(t, fco2, pivot.Colors["F_CO2"])

	var contrib models.ContributorsResponse
	decode(t, get(e, "/api/topics/ghg/with/contributors?measure=F_CO2&sign=absorption"), &contrib)
	require.Len(t, contrib.Items, 1)
	assert.Equal(t, fco2, contrib.Items[0].Color)

	var wf models.WaterfallResponse
	decode(t, get(e, "/api/topics/ghg/with/waterfall?area=USA"), &wf)
	assert.Equal(t, usa, wf.Bars[0].Color)

	var rk models.RankingResponse
	decode(t, get(e, "/api/topics/ghg/with/ranking?area=USA"), &rk)
	assert.Equal(t, usa, rk.Colors["USA"])

	var bb models.BubbleResponse
	decode(t, get(e, "/api/topics/ghg/with/bubble?indicator=land&area=USA"), &bb)
	assert.Equal(t, usa, bb.Colors["USA"])

	for _, target := range []string{
		"/api/topics/ghg/with/charts/waterfall?area=USA",
		"/api/topics/ghg/with/charts/ranking?area=USA&category=area",
		"/api/topics/ghg/with/charts/bubble?area=USA",
		"/api/topics/ghg/with/charts/pie?measure=F_CO2&sign=absorption",
	} {
		rec := get(e, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), usa, target)
		assert.NotContains(t, rec.Body.String(), engine.Palette[0], target)
	}
}

func TestIndicatorOnlyCountryGetsPaletteColor(t *testing.T) {
	e, _ := newTestServer(t)

	var wf models.WaterfallResponse
	decode(t, get(e, "/api/topics/ghg/with/waterfall?indicator=land&area=USA,FRA,JPN"), &wf)

	colors := map[string]string{}
	for _, b := range wf.Bars {
		colors[b.Category] = b.Color
	}
	assert.Equal(t, engine.Palette[0], colors["FRA"])
	assert.Equal(t, engine.Palette[1], colors["USA"])
	assert.Equal(t, engine.Palette[2], colors["JPN"], "appended after the held countries")
}

func TestGetChart(t *testing.T) {
	e, _ := newTestServer(t)

	rec := get(e, "/api/topics/ghg/with/charts/bar?x=country")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML))
	assert.Contains(t, rec.Body.String(), "chart_bar")

	rec = get(e, "/api/topics/ghg/with/charts/bubble")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Agricultural Land Area")

	// A chart that cannot be built is still a page.
	rec = get(e, "/api/topics/ghg/with/charts/ranking?category=year")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error creating chart")

	assert.Equal(t, http.StatusNotFound, get(e, "/api/topics/ghg/with/charts/histogram").Code)
}

func TestErrorStatuses(t *testing.T) {
	e, _ := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, get(e, "/api/topics/water/with/options").Code)
	assert.Equal(t, http.StatusNotFound, get(e, "/api/topics/ghg/sector/options").Code)
	assert.Equal(t, http.StatusNotImplemented, get(e, "/api/topics/nutrient/any/options").Code)
	assert.Equal(t, http.StatusBadGateway, get(e, "/api/topics/ghg/broken/options").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/topics/ghg/with/options?from=last").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/topics/ghg/with/options?from=2012&to=2010").Code)
}

func TestInvalidateCache(t *testing.T) {
	e, repo := newTestServer(t)
	calls := 0
	repo.OnInvalidate = func() { calls++ }

	req := httptest.NewRequest(http.MethodPost, "/api/cache/invalidate?topic=ghg", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invalidated":"ghg"`)

	req = httptest.NewRequest(http.MethodPost, "/api/cache/invalidate", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, calls)

	req = httptest.NewRequest(http.MethodPost, "/api/cache/invalidate?topic=water", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?area=USA,FRA&area=JPN&area=+", nil), httptest.NewRecorder())

	v, ok := listParam(c, "area")
	assert.True(t, ok)
	assert.Equal(t, []string{"USA", "FRA", "JPN"}, v)

	_, ok = listParam(c, "measure")
	assert.False(t, ok)
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(1))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(e, "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(e, "/").Code)
}
