package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/i474232898/weather-api/internal/store"
)

// MemoryURL selects the in-process backend.
const MemoryURL = "memory://"

// NewDialer picks a backend from url: empty disables caching, "memory://"
// uses an in-process store and redis URLs use Redis.
func NewDialer(url string, memoryMaxEntries int) (Dialer, error) {
	switch {
	case url == "":
		return nil, nil
	case strings.HasPrefix(url, MemoryURL):
		return func(context.Context) (Backend, error) {
			return store.NewMemoryStore(memoryMaxEntries), nil
		}, nil
	case IsRedisURL(url):
		return RedisDialer(url), nil
	default:
		return nil, fmt.Errorf("unsupported cache url scheme: %q", url)
	}
}
