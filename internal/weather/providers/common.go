package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-api/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// CallRecorder receives one event per provider call that reached the network.
type CallRecorder interface {
	ObserveProviderCall(provider string, success bool)
}

type noopCallRecorder struct{}

func (noopCallRecorder) ObserveProviderCall(string, bool) {}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errMalformed     = errors.New("malformed payload")
)

// Option customises a provider at construction time.
type Option func(*base)

// WithBaseURL points the provider at a different upstream, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(b *base) {
		if u != "" {
			b.baseURL = u
		}
	}
}

// WithBackoff sets the retry policy for transient failures.
func WithBackoff(cfg BackoffConfig) Option {
	return func(b *base) { b.httpCfg.Backoff = cfg }
}

// WithRecorder installs the hook notified after every upstream call.
func WithRecorder(r CallRecorder) Option {
	return func(b *base) {
		if r != nil {
			b.recorder = r
		}
	}
}

// base holds the plumbing shared by every provider.
type base struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	recorder CallRecorder
}

func newBase(name, baseURL string, client *http.Client, opts []Option) base {
	b := base{
		name:    name,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      0,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		recorder: noopCallRecorder{},
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Name returns the source tag of the provider.
func (b *base) Name() string {
	return b.name
}

// State reports the circuit breaker state ("closed", "half-open", "open").
func (b *base) State() string {
	return b.circuit.State().String()
}

// getJSON performs a resilient GET, decodes the body into dst and runs
// validate on the result. The call is recorded exactly once, whatever the
// number of attempts.
func (b *base) getJSON(ctx context.Context, buildRequest func() (*http.Request, error), dst any, validate func() bool) error {
	err := b.fetchJSON(ctx, buildRequest, dst)
	if err == nil && validate != nil && !validate() {
		err = errMalformed
	}
	b.recorder.ObserveProviderCall(b.name, err == nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", weather.ErrUpstream, b.name, err)
	}
	return nil
}

func (b *base) fetchJSON(ctx context.Context, buildRequest func() (*http.Request, error), dst any) error {
	resp, err := doRequestWithResilience(ctx, b.httpCfg, b.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}

			// Drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			default:
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		// Client errors other than 429 will not improve on retry.
		if errors.Is(err, errUnexpected) || attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
