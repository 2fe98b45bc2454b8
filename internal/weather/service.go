package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	// CurrentWeatherTTL is how long a merged current-weather record is cached.
	CurrentWeatherTTL = 5 * time.Minute
	// DefaultProviderTimeout bounds a single adapter call.
	DefaultProviderTimeout = 8 * time.Second

	currentCacheKeyPrefix = "weather:current:"
)

var errIncompleteRecord = errors.New("record has no city or sources")

// CurrentCacheKey returns the cache key of the current-weather record for city.
func CurrentCacheKey(city string) string {
	return currentCacheKeyPrefix + NormalizeCity(city)
}

// Service orchestrates cache lookups, provider fan-out and aggregation.
type Service struct {
	cache           Cache
	providers       []Provider
	recorder        Recorder
	providerTimeout time.Duration
	cacheTTL        time.Duration
	now             func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithProviderTimeout bounds each adapter call. Zero or negative disables the bound.
func WithProviderTimeout(d time.Duration) Option {
	return func(s *Service) { s.providerTimeout = d }
}

// WithCacheTTL overrides CurrentWeatherTTL.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cacheTTL = d
		}
	}
}

// WithRecorder installs an observability hook.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new Service. A nil cache disables caching.
func NewService(cache Cache, providers []Provider, opts ...Option) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	s := &Service{
		cache:           cache,
		providers:       providers,
		recorder:        noopRecorder{},
		providerTimeout: DefaultProviderTimeout,
		cacheTTL:        CurrentWeatherTTL,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers returns the configured providers in registration order.
func (s *Service) Providers() []Provider {
	out := make([]Provider, len(s.providers))
	copy(out, s.providers)
	return out
}

// GetCurrentWeather returns the aggregated current weather for city, serving
// it from cache when possible.
func (s *Service) GetCurrentWeather(ctx context.Context, city string) (*CurrentWeather, error) {
	key := CurrentCacheKey(city)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached CurrentWeather
		err := json.Unmarshal([]byte(raw), &cached)
		if err == nil && (cached.City == "" || len(cached.Sources) == 0) {
			err = errIncompleteRecord
		}
		if err != nil {
			log.Warnf("weather: discarding unreadable cache entry %s: %v", key, err)
		} else {
			s.recorder.CacheLookup(true)
			return &cached, nil
		}
	}
	s.recorder.CacheLookup(false)

	return s.aggregateAndStore(ctx, city)
}

// RefreshCurrentWeather aggregates fresh data for city, bypassing the cache
// read but still populating the cache.
func (s *Service) RefreshCurrentWeather(ctx context.Context, city string) (*CurrentWeather, error) {
	return s.aggregateAndStore(ctx, city)
}

func (s *Service) aggregateAndStore(ctx context.Context, city string) (*CurrentWeather, error) {
	coords, ok := ResolveCoordinates(city)
	if !ok {
		log.Debugf("weather: no coordinates for %q", city)
		return nil, fmt.Errorf("%w: unknown city %q", ErrNotFound, city)
	}

	result, err := s.aggregate(ctx, city, coords)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		log.Warnf("weather: encode %s for cache: %v", city, err)
		return result, nil
	}
	if !s.cache.Set(ctx, CurrentCacheKey(city), string(payload), s.cacheTTL) {
		log.Debugf("weather: cache write skipped for %s", city)
	}

	return result, nil
}

func (s *Service) aggregate(ctx context.Context, city string, coords Coordinates) (result *CurrentWeather, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("weather: aggregation for %s panicked: %v", city, r)
			result, err = nil, fmt.Errorf("%w: %v", ErrAggregation, r)
		}
	}()

	outcomes := s.fanOut(ctx, city, coords)

	readings := make([]ProviderReading, 0, len(outcomes))
	for _, o := range outcomes {
		switch o.status {
		case fetchOK:
			readings = append(readings, o.reading)
		case fetchDisabled:
			log.Debugf("weather: provider %s disabled", o.provider)
		case fetchFailed:
			log.Warnf("weather: provider %s fetch failed for %s: %v", o.provider, city, o.err)
		}
	}

	if len(readings) == 0 {
		log.Warnf("weather: no successful provider readings for %s", city)
		return nil, fmt.Errorf("%w: no provider readings for %q", ErrNotFound, city)
	}

	return AggregateReadings(city, coords, readings, s.now().UTC()), nil
}

type fetchStatus int

const (
	fetchOK fetchStatus = iota
	fetchDisabled
	fetchFailed
)

// fetchOutcome is the tagged result of one adapter call.
type fetchOutcome struct {
	provider string
	status   fetchStatus
	reading  ProviderReading
	err      error
}

// fanOut calls every provider concurrently and waits for all of them.
// Outcomes keep provider registration order.
func (s *Service) fanOut(ctx context.Context, city string, coords Coordinates) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(s.providers))

	var wg sync.WaitGroup
	for i, p := range s.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			outcomes[i] = s.fetchOne(ctx, p, city, coords)
		}(i, p)
	}
	wg.Wait()

	return outcomes
}

func (s *Service) fetchOne(ctx context.Context, p Provider, city string, coords Coordinates) (out fetchOutcome) {
	out.provider = p.Name()

	defer func() {
		if r := recover(); r != nil {
			out.status = fetchFailed
			out.err = fmt.Errorf("%w: provider panicked: %v", ErrUpstream, r)
		}
	}()

	if s.providerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
	}

	reading, err := p.FetchCurrent(ctx, city, coords)
	switch {
	case errors.Is(err, ErrProviderDisabled):
		out.status = fetchDisabled
	case err != nil:
		out.status = fetchFailed
		out.err = err
	default:
		if reading.Source == "" {
			reading.Source = out.provider
		}
		out.status = fetchOK
		out.reading = reading
	}
	return out
}
