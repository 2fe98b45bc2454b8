package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveProviderCall(t *testing.T) {
	m := New()

	m.ObserveProviderCall("openweather", true)
	m.ObserveProviderCall("openweather", true)
	m.ObserveProviderCall("openweather", false)

	if got := testutil.ToFloat64(m.externalCalls.WithLabelValues("openweather", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.externalCalls.WithLabelValues("openweather", "failure")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestCacheLookup(t *testing.T) {
	m := New()

	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")); got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")); got != 2 {
		t.Fatalf("expected 2 misses, got %v", got)
	}
}

func TestInstrumentLabelsRouteTemplate(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Get("/api/v1/weather/current/:city", m.Instrument, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/missing/:city", m.Instrument, func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "nope")
	})

	for _, path := range []string{"/api/v1/weather/current/paris", "/api/v1/weather/current/london", "/missing/x"} {
		if _, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/weather/current/:city", "200")); got != 2 {
		t.Fatalf("expected 2 requests under the route template, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/missing/:city", "404")); got != 1 {
		t.Fatalf("expected error status from handler error, got %v", got)
	}
	if got := testutil.ToFloat64(m.inProgress.WithLabelValues("GET", "/api/v1/weather/current/:city")); got != 0 {
		t.Fatalf("expected no requests in progress, got %v", got)
	}
}

func TestInstrumentRecordsPanics(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(recover.New())
	app.Get("/boom", m.Instrument, func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.StatusCode)
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("expected the panicking request to be counted as 500, got %v", got)
	}
	if got := testutil.CollectAndCount(m.latency); got != 1 {
		t.Fatalf("expected one latency series, got %d", got)
	}
	if got := testutil.ToFloat64(m.inProgress.WithLabelValues("GET", "/boom")); got != 0 {
		t.Fatalf("expected no requests in progress, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveProviderCall("open_meteo", true)

	app := fiber.New()
	app.Get(Path, m.Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"api_external_calls_total", `api_name="open_meteo"`, "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected exposition to contain %q", want)
		}
	}
}
