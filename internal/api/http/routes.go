package httpapi

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-image/internal/chart"
	"github.com/i474232898/weather-image/internal/report"
	"github.com/i474232898/weather-image/internal/store"
	"github.com/i474232898/weather-image/internal/weather"
	"github.com/i474232898/weather-image/internal/weather/providers"
)

var validate = validator.New()

// ReportBuilder builds a report for location text.
type ReportBuilder interface {
	Build(ctx context.Context, location string, hours int) (report.Report, error)
}

// ReportStore returns the latest scheduled report for a location.
type ReportStore interface {
	GetLatest(location string) (report.Report, error)
}

// Deps are the collaborators the routes need.
type Deps struct {
	Builder  ReportBuilder
	Store    ReportStore
	Renderer *chart.Renderer
	// Timeout bounds provider calls made on behalf of a request.
	Timeout time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Timeout <= 0 {
		deps.Timeout = 30 * time.Second
	}
	if deps.Renderer == nil {
		deps.Renderer = chart.NewRenderer(chart.DefaultRenderOptions())
	}

	v1 := app.Group("/api/v1")

	v1.Get("/report", func(c *fiber.Ctx) error {
		var q reportQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), deps.Timeout)
		defer cancel()

		r, err := deps.Builder.Build(ctx, q.Location, q.Hours)
		if err != nil {
			return reportError(err)
		}
		return c.JSON(r)
	})

	v1.Get("/report/latest", func(c *fiber.Ctx) error {
		q := locationQuery{Location: c.Query("location")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if deps.Store == nil {
			return fiber.NewError(fiber.StatusNotFound, "no scheduled reports")
		}

		r, err := deps.Store.GetLatest(q.Location)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no report for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load report")
		}
		return c.JSON(r)
	})

	v1.Get("/charts/:name", func(c *fiber.Ctx) error {
		var q chartQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if q.Name != chart.NameTemperature && q.Name != chart.NamePoP {
			return fiber.NewError(fiber.StatusNotFound, "unknown chart")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), deps.Timeout)
		defer cancel()

		r, err := deps.Builder.Build(ctx, q.Location, q.Hours)
		if err != nil {
			return reportError(err)
		}

		d, ok := r.Chart(q.Name)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown chart")
		}
		if d.Empty() {
			return fiber.NewError(fiber.StatusNotFound, "no forecast data to chart")
		}

		renderer := deps.Renderer
		if q.Width > 0 || q.Height > 0 {
			renderer = renderer.WithSize(q.Width, q.Height)
		}

		format := chart.Format(q.Format)
		var buf bytes.Buffer
		if err := renderer.Render(&buf, d, format); err != nil {
			slog.Error("chart render failed", "chart", q.Name, "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
		}

		c.Set(fiber.HeaderContentType, format.ContentType())
		return c.Send(buf.Bytes())
	})
}

// reportError maps service errors onto HTTP status codes.
func reportError(err error) error {
	switch {
	case errors.Is(err, weather.ErrInvalidLocation),
		errors.Is(err, weather.ErrGeocoderUnavailable):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "location not found")
	case errors.Is(err, providers.ErrMissingAPIKey):
		slog.Error("provider not configured", "error", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "weather provider not configured")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "weather provider timed out")
	default:
		slog.Error("report failed", "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	}
}

// locationQuery holds the location query parameter.
type locationQuery struct {
	Location string `validate:"required,max=200"`
}

// reportQuery holds query parameters for the report endpoint.
type reportQuery struct {
	Location string `validate:"required,max=200"`
	Hours    int    `validate:"omitempty,min=1,max=48"`
}

func (q *reportQuery) bind(c *fiber.Ctx) error {
	q.Location = c.Query("location")
	q.Hours = c.QueryInt("hours", 0)
	return validate.Struct(q)
}

// chartQuery holds path and query parameters for the chart endpoint.
type chartQuery struct {
	Name     string `validate:"required"`
	Location string `validate:"required,max=200"`
	Hours    int    `validate:"omitempty,min=1,max=48"`
	Format   string `validate:"oneof=svg png"`
	Width    int    `validate:"omitempty,min=100,max=4096"`
	Height   int    `validate:"omitempty,min=100,max=4096"`
}

func (q *chartQuery) bind(c *fiber.Ctx) error {
	q.Name = c.Params("name")
	q.Location = c.Query("location")
	q.Hours = c.QueryInt("hours", 0)
	q.Format = c.Query("format", string(chart.FormatSVG))
	q.Width = c.QueryInt("width", 0)
	q.Height = c.QueryInt("height", 0)
	return validate.Struct(q)
}
