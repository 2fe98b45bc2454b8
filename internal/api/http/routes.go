package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/i474232898/weather-api/internal/metrics"
	"github.com/i474232898/weather-api/internal/weather"
)

const defaultDays = 5

var validate = validator.New()

// CacheChecker reports on the cache backend for the health endpoints.
type CacheChecker interface {
	Enabled() bool
	HealthCheck(ctx context.Context) bool
}

// Dependencies are the collaborators the HTTP layer needs. Cache and Metrics
// may be nil.
type Dependencies struct {
	Service *weather.Service
	Cache   CacheChecker
	Metrics *metrics.Metrics
}

type handler struct {
	deps       Dependencies
	instrument fiber.Handler
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	h := &handler{
		deps:       deps,
		instrument: func(c *fiber.Ctx) error { return c.Next() },
	}
	if deps.Metrics != nil {
		h.instrument = deps.Metrics.Instrument
		app.Get(metrics.Path, deps.Metrics.Handler())
	}

	app.Get("/", h.instrument, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the Weather API. See /api/v1/weather/current/{city}.",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current/:city", h.instrument, h.currentWeather)
	v1.Get("/weather/forecast/:city", h.instrument, h.forecast)
	v1.Get("/weather/history/:city", h.instrument, h.history)

	health := v1.Group("/health")
	health.Get("/", h.instrument, h.health)
	health.Get("/detailed", h.instrument, h.detailedHealth)
}

func (h *handler) currentWeather(c *fiber.Ctx) error {
	city := c.Params("city")

	result, err := h.deps.Service.GetCurrentWeather(c.UserContext(), city)
	if err != nil {
		return h.serviceError(err, "Weather", city)
	}
	return c.JSON(result)
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Days int `validate:"min=1,max=10"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Days int `validate:"min=1,max=30"`
}

// ValidateForecastDays checks the number of forecast days against 1..10.
func ValidateForecastDays(days int) error {
	if err := validate.Struct(forecastQuery{Days: days}); err != nil {
		return errors.New("days must be between 1 and 10")
	}
	return nil
}

// ValidateHistoryDays checks the number of history days against 1..30.
func ValidateHistoryDays(days int) error {
	if err := validate.Struct(historyQuery{Days: days}); err != nil {
		return errors.New("days must be between 1 and 30")
	}
	return nil
}

func (h *handler) forecast(c *fiber.Ctx) error {
	days, err := parseDays(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := ValidateForecastDays(days); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	city := c.Params("city")
	result, err := h.deps.Service.GetForecast(c.UserContext(), city, days)
	if err != nil {
		return h.serviceError(err, "Forecast", city)
	}
	return c.JSON(result)
}

func (h *handler) history(c *fiber.Ctx) error {
	days, err := parseDays(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := ValidateHistoryDays(days); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	city := c.Params("city")
	result, err := h.deps.Service.GetHistory(c.UserContext(), city, days)
	if err != nil {
		return h.serviceError(err, "Historical", city)
	}
	return c.JSON(result)
}

// serviceError maps domain errors onto HTTP errors without leaking details.
func (h *handler) serviceError(err error, kind, city string) error {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("%s data for city '%s' not found", kind, city))
	case errors.Is(err, weather.ErrInvalidDays):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		log.Errorf("http: %s request for %q failed: %v", kind, city, err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

// parseDays reads the optional integer `days` query parameter.
func parseDays(c *fiber.Ctx) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("days must be an integer")
	}
	return days, nil
}
