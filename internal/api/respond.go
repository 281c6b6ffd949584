package api

import (
	"errors"
	"fmt"
	"net/http"

	"oecddash/internal/charts"
	"oecddash/internal/engine"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/zeebo/xxh3"
	"golang.org/x/time/rate"
)

const mimeArrowStream = "application/vnd.apache.arrow.stream"

// JSONSerializer is echo's JSON codec backed by goccy/go-json.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (JSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}

// RateLimit allows perSecond requests per client IP, with bursts of the
// same size.
func RateLimit(perSecond float64) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(perSecond),
		Burst: max(1, int(perSecond)),
	})
	return middleware.RateLimiter(store)
}

// etag is a strong validator over the response body.
func etag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
}

// sendBytes writes body with an ETag, or 304 when the client already has it.
func sendBytes(c echo.Context, contentType string, body []byte) error {
	tag := etag(body)
	c.Response().Header().Set("ETag", tag)
	if c.Request().Header.Get("If-None-Match") == tag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Blob(http.StatusOK, contentType, body)
}

func sendJSON(c echo.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sendBytes(c, echo.MIMEApplicationJSON, body)
}

// httpError maps engine and chart errors to HTTP statuses.
func httpError(err error) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, engine.ErrUnknownTopic),
		errors.Is(err, engine.ErrUnknownSubtopic),
		errors.Is(err, engine.ErrUnknownIndicator),
		errors.Is(err, charts.ErrUnknownChart):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, engine.ErrNotImplemented):
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error()).SetInternal(err)
	case errors.Is(err, engine.ErrInvalidDim):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, engine.ErrSubtopicFailed):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}
