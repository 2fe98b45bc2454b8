package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/i474232898/weather-api/internal/store"
)

type failingBackend struct{}

var errBackend = errors.New("backend down")

func (failingBackend) Get(context.Context, string) (string, bool, error) { return "", false, errBackend }
func (failingBackend) Set(context.Context, string, string, time.Duration) error {
	return errBackend
}
func (failingBackend) Delete(context.Context, string) error { return errBackend }
func (failingBackend) Ping(context.Context) error           { return errBackend }

func memoryGateway(t *testing.T) *Gateway {
	t.Helper()
	dial, err := NewDialer(MemoryURL, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewGateway(dial, time.Minute)
}

func TestGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := memoryGateway(t)

	if !g.Enabled() {
		t.Fatal("expected gateway to be enabled")
	}
	if _, found := g.Get(ctx, "weather:current:paris"); found {
		t.Fatal("expected miss on empty cache")
	}
	if !g.Set(ctx, "weather:current:paris", `{"city":"Paris"}`, 0) {
		t.Fatal("expected set to succeed")
	}
	v, found := g.Get(ctx, "weather:current:paris")
	if !found || v != `{"city":"Paris"}` {
		t.Fatalf("expected stored value, got %q found=%v", v, found)
	}
	if !g.Delete(ctx, "weather:current:paris") {
		t.Fatal("expected delete to succeed")
	}
	if _, found := g.Get(ctx, "weather:current:paris"); found {
		t.Fatal("expected miss after delete")
	}
	if !g.HealthCheck(ctx) {
		t.Fatal("expected healthy backend")
	}
	if err := g.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
}

func TestGatewayDisabled(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(nil, 0)

	if g.Enabled() {
		t.Fatal("expected gateway to be disabled")
	}
	if g.Set(ctx, "k", "v", time.Minute) {
		t.Fatal("expected set to report failure")
	}
	if _, found := g.Get(ctx, "k"); found {
		t.Fatal("expected miss")
	}
	if g.HealthCheck(ctx) {
		t.Fatal("expected unhealthy")
	}
}

func TestGatewayDialsOnce(t *testing.T) {
	ctx := context.Background()
	var dials atomic.Int32
	g := NewGateway(func(context.Context) (Backend, error) {
		dials.Add(1)
		return nil, errors.New("connection refused")
	}, time.Minute)

	for i := 0; i < 3; i++ {
		if _, found := g.Get(ctx, "k"); found {
			t.Fatal("expected miss")
		}
		if g.Set(ctx, "k", "v", 0) {
			t.Fatal("expected set to fail")
		}
	}

	if dials.Load() != 1 {
		t.Fatalf("expected a single connection attempt, got %d", dials.Load())
	}
	if err := g.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
}

func TestGatewayDialIgnoresCallerCancellation(t *testing.T) {
	g := NewGateway(func(ctx context.Context) (Backend, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return store.NewMemoryStore(0), nil
	}, time.Minute)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	g.Get(cancelled, "k")

	if !g.Set(context.Background(), "k", "v", 0) {
		t.Fatal("expected the cache to stay usable after a cancelled first caller")
	}
}

func TestGatewayBackendErrorsDegrade(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(func(context.Context) (Backend, error) { return failingBackend{}, nil }, time.Minute)

	if _, found := g.Get(ctx, "k"); found {
		t.Fatal("expected miss on backend error")
	}
	if g.Set(ctx, "k", "v", 0) {
		t.Fatal("expected set failure")
	}
	if g.Delete(ctx, "k") {
		t.Fatal("expected delete failure")
	}
	if g.HealthCheck(ctx) {
		t.Fatal("expected unhealthy")
	}
}

func TestGatewayDefaultTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := store.NewMemoryStore(0).WithClock(func() time.Time { return now })
	g := NewGateway(func(context.Context) (Backend, error) { return mem, nil }, time.Minute)

	g.Set(ctx, "k", "v", 0)

	now = now.Add(59 * time.Second)
	if _, found := g.Get(ctx, "k"); !found {
		t.Fatal("expected entry before default ttl")
	}
	now = now.Add(time.Second)
	if _, found := g.Get(ctx, "k"); found {
		t.Fatal("expected entry to expire after default ttl")
	}
}

func TestNewDialer(t *testing.T) {
	dial, err := NewDialer("", 0)
	if err != nil || dial != nil {
		t.Fatalf("expected nil dialer for empty url, got %v / %v", dial != nil, err)
	}
	if _, err := NewDialer("memcached://localhost", 0); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
	for _, u := range []string{"redis://localhost:6379/0", "rediss://cache:6380", "unix:///tmp/redis.sock"} {
		if d, err := NewDialer(u, 0); err != nil || d == nil {
			t.Fatalf("expected redis dialer for %q, got err %v", u, err)
		}
	}
}

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	g := NewGateway(RedisDialer("redis://"+mr.Addr()), time.Minute)
	defer g.Close()

	if !g.HealthCheck(ctx) {
		t.Fatal("expected redis to be reachable")
	}
	if _, found := g.Get(ctx, "k"); found {
		t.Fatal("expected miss")
	}
	if !g.Set(ctx, "k", "v", 5*time.Minute) {
		t.Fatal("expected set to succeed")
	}
	if v, found := g.Get(ctx, "k"); !found || v != "v" {
		t.Fatalf("expected stored value, got %q found=%v", v, found)
	}
	if ttl := mr.TTL("k"); ttl != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", ttl)
	}

	mr.FastForward(5 * time.Minute)
	if _, found := g.Get(ctx, "k"); found {
		t.Fatal("expected key to expire")
	}
}

func TestRedisDialerUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	g := NewGateway(RedisDialer("redis://"+addr), time.Minute)
	if g.HealthCheck(context.Background()) {
		t.Fatal("expected unreachable redis to be unhealthy")
	}
	if g.Set(context.Background(), "k", "v", 0) {
		t.Fatal("expected set to fail")
	}
}
