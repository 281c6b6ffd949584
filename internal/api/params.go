package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"oecddash/internal/engine"

	"github.com/labstack/echo/v4"
)

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// listParam reads a repeatable, comma separated parameter. ok is false
// when the parameter is absent; present but blank is an empty list.
func listParam(c echo.Context, name string) (values []string, ok bool) {
	raw, ok := c.QueryParams()[name]
	if !ok {
		return nil, false
	}
	values = []string{}
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values, true
}

func yearParam(c echo.Context, name string, def int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s: %q is not a year", name, s))
	}
	return y, nil
}

// parseFilter builds the selection from from, to, area and measure. Any
// parameter left out takes its value from the default filter of t.
func parseFilter(c echo.Context, t *engine.Table) (engine.FilterConfig, error) {
	def := engine.DefaultFilter(t)

	areas := def.Areas()
	if v, ok := listParam(c, "area"); ok {
		areas = v
	}
	measures := def.Measures()
	if v, ok := listParam(c, "measure"); ok {
		measures = v
	}

	years := def.Years()
	if c.QueryParam("from") == "" && c.QueryParam("to") == "" {
		return engine.NewFilterConfig(years, areas, measures), nil
	}
	first, last := 0, 0
	if len(years) > 0 {
		first, last = years[0], years[len(years)-1]
	}
	from, err := yearParam(c, "from", first)
	if err != nil {
		return engine.FilterConfig{}, err
	}
	to, err := yearParam(c, "to", last)
	if err != nil {
		return engine.FilterConfig{}, err
	}
	if len(years) == 0 {
		// Nothing to default against, so a single bound is both ends.
		if c.QueryParam("from") == "" {
			from = to
		}
		if c.QueryParam("to") == "" {
			to = from
		}
	}
	if from > to {
		return engine.FilterConfig{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("from %d is after to %d", from, to))
	}
	return engine.NewFilterConfig(engine.YearRange(from, to), areas, measures), nil
}

var dimAliases = map[string]engine.Dim{
	"area":    engine.DimArea,
	"country": engine.DimArea,
	"period":  engine.DimPeriod,
	"year":    engine.DimPeriod,
	"measure": engine.DimMeasure,
}

// dimParam reads a column choice by name or alias.
func dimParam(c echo.Context, name string, def engine.Dim) (engine.Dim, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	if d, ok := dimAliases[strings.ToLower(s)]; ok {
		return d, nil
	}
	if d := engine.Dim(strings.ToUpper(s)); d.Valid() {
		return d, nil
	}
	return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s: unknown column %q", name, s))
}

func boolParam(c echo.Context, name string) (bool, error) {
	s := c.QueryParam(name)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s: %q is not a boolean", name, s))
	}
	return b, nil
}

func signParam(c echo.Context) (engine.Sign, error) {
	s, err := engine.ParseSign(c.QueryParam("sign"))
	if err != nil {
		return s, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return s, nil
}
