package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2/log"

	"github.com/i474232898/weather-api/internal/weather"
)

// Refresher re-aggregates current weather for a city and repopulates the cache.
type Refresher interface {
	RefreshCurrentWeather(ctx context.Context, city string) (*weather.CurrentWeather, error)
}

// Scheduler periodically warms the current-weather cache for configured cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	cities    []string
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, service Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		cities:    cities,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		log.Info("scheduler: no cities configured; nothing to warm")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = weather.CurrentWeatherTTL
	}

	if _, err := s.scheduler.Every(interval).Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Infof("scheduler: warming %d cities every %s", len(s.cities), interval)
	return nil
}

// RunOnce refreshes every configured city concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	log.Debug("scheduler: running cache warm job")

	var wg sync.WaitGroup
	for _, city := range s.cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if _, err := s.service.RefreshCurrentWeather(ctx, city); err != nil {
				log.Warnf("scheduler: refresh failed for %s: %v", city, err)
			}
		}(city)
	}
	wg.Wait()

	log.Debug("scheduler: completed cache warm job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
