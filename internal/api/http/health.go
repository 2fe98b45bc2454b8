package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is the API version reported by the health endpoints.
const Version = "0.1.0"

var startedAt = time.Now()

// breakerState is implemented by providers that sit behind a circuit breaker.
type breakerState interface {
	State() string
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   AppName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Seconds(),
		"version":   Version,
		"services": fiber.Map{
			"cache":         h.cacheConfigured(),
			"external_apis": h.providerStatus(false),
		},
	})
}

func (h *handler) detailedHealth(c *fiber.Ctx) error {
	cacheStatus := "disabled"
	if h.deps.Cache != nil && h.deps.Cache.Enabled() {
		cacheStatus = "down"
		if h.deps.Cache.HealthCheck(c.UserContext()) {
			cacheStatus = "up"
		}
	}

	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   AppName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Seconds(),
		"version":   Version,
		"dependencies": fiber.Map{
			"redis_cache":   cacheStatus,
			"external_apis": h.providerStatus(true),
		},
	})
}

func (h *handler) cacheConfigured() string {
	if h.deps.Cache != nil && h.deps.Cache.Enabled() {
		return "enabled"
	}
	return "disabled"
}

// providerStatus reports "up" or "disabled" per provider, or the circuit
// breaker state when detailed is set.
func (h *handler) providerStatus(detailed bool) fiber.Map {
	out := fiber.Map{}
	for _, p := range h.deps.Service.Providers() {
		if !p.Enabled() {
			out[p.Name()] = "disabled"
			continue
		}
		status := "up"
		if b, ok := p.(breakerState); ok && detailed && b.State() != "closed" {
			status = "circuit " + b.State()
		}
		out[p.Name()] = status
	}
	return out
}
