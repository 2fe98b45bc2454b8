// Package cache wraps a key-value backend behind a gateway that never lets a
// backend failure reach its callers: every error degrades to a miss or a
// no-op so that an unavailable cache cannot make the API unavailable.
package cache

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// DefaultTTL is used by Set when the caller passes a non-positive TTL.
const DefaultTTL = 10 * time.Minute

// ErrDisabled is returned by a Gateway that has no backend configured.
var ErrDisabled = errors.New("cache disabled")

// Backend is a key-value store with per-key expiry.
// Get reports found=false with a nil error on a miss.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Dialer establishes a backend connection.
type Dialer func(ctx context.Context) (Backend, error)

// Gateway connects lazily on first use and remembers the outcome. A failed
// connection is not retried; every later call reports a miss.
type Gateway struct {
	dial       Dialer
	defaultTTL time.Duration

	once    sync.Once
	backend Backend
	dialErr error
}

// NewGateway creates a Gateway. A nil dialer disables caching.
func NewGateway(dial Dialer, defaultTTL time.Duration) *Gateway {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Gateway{
		dial:       dial,
		defaultTTL: defaultTTL,
	}
}

// Enabled reports whether a backend is configured at all.
func (g *Gateway) Enabled() bool {
	return g.dial != nil
}

func (g *Gateway) client(ctx context.Context) (Backend, error) {
	g.once.Do(func() {
		if g.dial == nil {
			g.dialErr = ErrDisabled
			return
		}
		// The outcome outlives the first caller, so its deadline does not apply.
		g.backend, g.dialErr = g.dial(context.WithoutCancel(ctx))
		if g.dialErr != nil {
			log.Errorf("cache: connection failed, caching disabled: %v", g.dialErr)
			g.backend = nil
		}
	})
	return g.backend, g.dialErr
}

// Get returns the cached value for key. Any failure is a miss.
func (g *Gateway) Get(ctx context.Context, key string) (string, bool) {
	b, err := g.client(ctx)
	if err != nil {
		return "", false
	}

	v, found, err := b.Get(ctx, key)
	if err != nil {
		log.Warnf("cache: get %s: %v", key, err)
		return "", false
	}
	return v, found
}

// Set stores value under key for ttl (or the default TTL when ttl <= 0).
// It reports whether the write succeeded.
func (g *Gateway) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	b, err := g.client(ctx)
	if err != nil {
		return false
	}
	if ttl <= 0 {
		ttl = g.defaultTTL
	}

	if err := b.Set(ctx, key, value, ttl); err != nil {
		log.Warnf("cache: set %s: %v", key, err)
		return false
	}
	return true
}

// Delete removes key. It reports whether the backend accepted the call.
func (g *Gateway) Delete(ctx context.Context, key string) bool {
	b, err := g.client(ctx)
	if err != nil {
		return false
	}

	if err := b.Delete(ctx, key); err != nil {
		log.Warnf("cache: delete %s: %v", key, err)
		return false
	}
	return true
}

// HealthCheck pings the backend.
func (g *Gateway) HealthCheck(ctx context.Context) bool {
	b, err := g.client(ctx)
	if err != nil {
		return false
	}
	return b.Ping(ctx) == nil
}

// Close releases the backend if one was connected.
func (g *Gateway) Close() error {
	if c, ok := g.backend.(io.Closer); ok && g.dialErr == nil {
		return c.Close()
	}
	return nil
}
