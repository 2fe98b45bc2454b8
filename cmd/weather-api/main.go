package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-api/internal/api/http"
	"github.com/i474232898/weather-api/internal/cache"
	"github.com/i474232898/weather-api/internal/config"
	"github.com/i474232898/weather-api/internal/metrics"
	"github.com/i474232898/weather-api/internal/scheduler"
	"github.com/i474232898/weather-api/internal/weather"
	"github.com/i474232898/weather-api/internal/weather/providers"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "weather-api",
		Short:         "Aggregated weather API",
		Long:          "Queries several weather providers concurrently, merges their readings and caches the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(currentCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(providersCmd())
	rootCmd.AddCommand(cacheCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// components bundles the components shared by every command.
type components struct {
	cfg     *config.AppConfig
	cache   *cache.Gateway
	metrics *metrics.Metrics
	service *weather.Service
}

func setup() (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.SetLevel(cfg.FiberLogLevel())

	dialer, err := cache.NewDialer(cfg.RedisURL, cfg.MemoryCacheMaxEntries)
	if err != nil {
		return nil, err
	}
	gateway := cache.NewGateway(dialer, cfg.CacheTTL())

	m := metrics.New()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	backoff := providers.BackoffConfig{
		MaxRetries:      cfg.ProviderMaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}

	provs := []weather.Provider{
		providers.NewOpenMeteoProvider(httpClient,
			providers.WithBaseURL(cfg.OpenMeteoBaseURL),
			providers.WithBackoff(backoff),
			providers.WithRecorder(m)),
		providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey,
			providers.WithBaseURL(cfg.OpenWeatherBaseURL),
			providers.WithBackoff(backoff),
			providers.WithRecorder(m)),
		providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey,
			providers.WithBaseURL(cfg.WeatherAPIBaseURL),
			providers.WithBackoff(backoff),
			providers.WithRecorder(m)),
	}

	// Core service orchestrating cache and providers.
	service := weather.NewService(gateway, provs,
		weather.WithProviderTimeout(cfg.ProviderTimeout),
		weather.WithCacheTTL(cfg.CurrentWeatherTTL()),
		weather.WithRecorder(m),
	)

	return &components{
		cfg:     cfg,
		cache:   gateway,
		metrics: m,
		service: service,
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.cache.Close()

			for _, p := range rt.service.Providers() {
				if p.Enabled() {
					log.Infof("provider %s enabled", p.Name())
				} else {
					log.Warnf("provider %s disabled: missing api key", p.Name())
				}
			}
			if !rt.cache.Enabled() {
				log.Warn("REDIS_URL not set; caching disabled")
			}

			// Background refresh of frequently requested cities.
			sched := scheduler.New(rt.cfg.Cities(), rt.cfg.WarmInterval, rt.service)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			app := httpapi.NewApp(true)
			httpapi.RegisterRoutes(app, httpapi.Dependencies{
				Service: rt.service,
				Cache:   rt.cache,
				Metrics: rt.metrics,
			})

			go func() {
				log.Infof("listening on :%s", rt.cfg.Port)
				if err := app.Listen(":" + rt.cfg.Port); err != nil {
					log.Errorf("fiber server stopped: %v", err)
				}
			}()

			// Wait for termination signal
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Errorf("error during shutdown: %v", err)
			}
			return nil
		},
	}
}

func currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current [city]",
		Short: "Print the aggregated current weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.cache.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			result, err := rt.service.GetCurrentWeather(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}

func forecastCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "forecast [city]",
		Short: "Print the forecast for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := httpapi.ValidateForecastDays(days); err != nil {
				return err
			}
			rt, err := setup()
			if err != nil {
				return err
			}
			result, err := rt.service.GetForecast(cmd.Context(), strings.Join(args, " "), days)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 5, "number of days (1-10)")
	return cmd
}

func historyCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history [city]",
		Short: "Print past weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := httpapi.ValidateHistoryDays(days); err != nil {
				return err
			}
			rt, err := setup()
			if err != nil {
				return err
			}
			result, err := rt.service.GetHistory(cmd.Context(), strings.Join(args, " "), days)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 5, "number of days (1-30)")
	return cmd
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List weather providers and whether they are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range rt.service.Providers() {
				status := "enabled"
				if !p.Enabled() {
					status = "disabled (missing api key)"
				}
				fmt.Fprintf(out, "%-12s %s\n", p.Name(), status)
			}
			fmt.Fprintf(out, "\nsupported cities: %s\n", strings.Join(weather.Cities(), ", "))
			return nil
		},
	}
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached weather",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear [city]",
		Short: "Drop the cached current weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.cache.Close()

			key := weather.CurrentCacheKey(strings.Join(args, " "))
			if !rt.cache.Delete(cmd.Context(), key) {
				return fmt.Errorf("could not delete %s (cache disabled or unavailable)", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", key)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check the cache backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.cache.Close()

			if !rt.cache.HealthCheck(cmd.Context()) {
				return fmt.Errorf("cache unhealthy")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache ok")
			return nil
		},
	})

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
