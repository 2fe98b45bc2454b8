package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a city cannot be resolved or no provider
	// produced a usable reading.
	ErrNotFound = errors.New("weather data not found")
	// ErrInvalidDays is returned for a non-positive day count.
	ErrInvalidDays = errors.New("days must be greater than zero")
	// ErrAggregation wraps unexpected failures while building a record.
	ErrAggregation = errors.New("weather aggregation failed")

	// ErrProviderDisabled is returned by adapters that lack a required
	// credential. No network call is made.
	ErrProviderDisabled = errors.New("provider disabled")
	// ErrUpstream wraps transport, status and payload failures of a provider.
	ErrUpstream = errors.New("upstream provider error")
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	// Name is the source tag reported in aggregated records.
	Name() string
	// Enabled reports whether the provider has everything it needs to be called.
	Enabled() bool
	FetchCurrent(ctx context.Context, city string, coords Coordinates) (ProviderReading, error)
}

// Cache is the read-through store used by the Service. Implementations must
// swallow backend failures and report them as a miss or false.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) bool
}

// Recorder receives aggregation side-channel events.
type Recorder interface {
	CacheLookup(hit bool)
}

type noopRecorder struct{}

func (noopRecorder) CacheLookup(bool) {}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (string, bool)              { return "", false }
func (noopCache) Set(context.Context, string, string, time.Duration) bool { return false }
