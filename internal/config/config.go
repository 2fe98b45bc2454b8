package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-api/internal/weather/providers"
)

type AppConfig struct {
	Port string `mapstructure:"PORT" validate:"required,numeric"`

	// Provider credentials; an empty key disables that provider.
	OpenWeatherAPIKey string `mapstructure:"OPENWEATHER_API_KEY"`
	WeatherAPIKey     string `mapstructure:"WEATHERAPI_KEY"`

	OpenMeteoBaseURL   string `mapstructure:"OPEN_METEO_BASE_URL" validate:"required,url"`
	OpenWeatherBaseURL string `mapstructure:"OPENWEATHER_BASE_URL" validate:"required,url"`
	WeatherAPIBaseURL  string `mapstructure:"WEATHERAPI_BASE_URL" validate:"required,url"`

	// RedisURL selects the cache backend; empty disables caching.
	RedisURL              string `mapstructure:"REDIS_URL"`
	MemoryCacheMaxEntries int    `mapstructure:"MEMORY_CACHE_MAX_ENTRIES" validate:"gte=0"`

	// CacheExpiration is the general TTL in seconds; current weather uses
	// CurrentWeatherCacheTTL instead.
	CacheExpiration        int `mapstructure:"CACHE_EXPIRATION" validate:"gte=1"`
	CurrentWeatherCacheTTL int `mapstructure:"CURRENT_WEATHER_CACHE_TTL" validate:"gte=1"`

	HTTPTimeout        time.Duration `mapstructure:"HTTP_TIMEOUT" validate:"gt=0"`
	ProviderTimeout    time.Duration `mapstructure:"PROVIDER_TIMEOUT" validate:"gt=0"`
	ProviderMaxRetries int           `mapstructure:"PROVIDER_MAX_RETRIES" validate:"gte=0,lte=5"`

	// WarmCities are refreshed in the background every WarmInterval.
	WarmCities   string        `mapstructure:"WARM_CITIES"`
	WarmInterval time.Duration `mapstructure:"WARM_INTERVAL" validate:"gte=1m"`

	LogLevel string `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
}

var validate = validator.New()

// Load reads configuration from .env and the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("config: no .env file loaded: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("OPENWEATHER_API_KEY", "")
	v.SetDefault("WEATHERAPI_KEY", "")
	v.SetDefault("OPEN_METEO_BASE_URL", providers.DefaultOpenMeteoBaseURL)
	v.SetDefault("OPENWEATHER_BASE_URL", providers.DefaultOpenWeatherBaseURL)
	v.SetDefault("WEATHERAPI_BASE_URL", providers.DefaultWeatherAPIBaseURL)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("MEMORY_CACHE_MAX_ENTRIES", 1024)
	v.SetDefault("CACHE_EXPIRATION", 600)
	v.SetDefault("CURRENT_WEATHER_CACHE_TTL", 300)
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("PROVIDER_TIMEOUT", "8s")
	v.SetDefault("PROVIDER_MAX_RETRIES", 0)
	v.SetDefault("WARM_CITIES", "")
	v.SetDefault("WARM_INTERVAL", "5m")
	v.SetDefault("LOG_LEVEL", "info")
}

// Cities splits WarmCities into trimmed, non-empty names.
func (c *AppConfig) Cities() []string {
	var out []string
	for _, city := range strings.Split(c.WarmCities, ",") {
		if city = strings.TrimSpace(city); city != "" {
			out = append(out, city)
		}
	}
	return out
}

// CacheTTL returns the general cache TTL.
func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheExpiration) * time.Second
}

// CurrentWeatherTTL returns the TTL of cached current-weather records.
func (c *AppConfig) CurrentWeatherTTL() time.Duration {
	return time.Duration(c.CurrentWeatherCacheTTL) * time.Second
}

// FiberLogLevel maps LogLevel onto Fiber's logger levels.
func (c *AppConfig) FiberLogLevel() log.Level {
	switch c.LogLevel {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
