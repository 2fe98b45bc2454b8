package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-api/internal/weather"
)

const (
	// OpenWeatherName is the source tag of OpenWeatherMap readings.
	OpenWeatherName = "openweather"
	// DefaultOpenWeatherBaseURL is the current-weather endpoint of OpenWeatherMap.
	DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	base
	apiKey string
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		base:   newBase(OpenWeatherName, DefaultOpenWeatherBaseURL, client, opts),
		apiKey: apiKey,
	}
}

func (p *OpenWeatherProvider) Enabled() bool {
	return p.apiKey != ""
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, city string, _ weather.Coordinates) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrProviderDisabled)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Main *struct {
			Temp      *float64 `json:"temp"`
			FeelsLike *float64 `json:"feels_like"`
			TempMin   *float64 `json:"temp_min"`
			TempMax   *float64 `json:"temp_max"`
			Humidity  *float64 `json:"humidity"`
			Pressure  *float64 `json:"pressure"`
		} `json:"main"`
		Wind *struct {
			Speed *float64 `json:"speed"`
			Deg   *float64 `json:"deg"`
		} `json:"wind"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	}

	valid := func() bool {
		return payload.Main != nil && payload.Main.Temp != nil
	}
	if err := p.getJSON(ctx, buildRequest, &payload, valid); err != nil {
		return weather.ProviderReading{}, err
	}

	reading := weather.ProviderReading{
		Source: p.name,
		Temperature: weather.Temperature{
			Current:   *payload.Main.Temp,
			FeelsLike: payload.Main.FeelsLike,
			Min:       payload.Main.TempMin,
			Max:       payload.Main.TempMax,
			Unit:      weather.UnitCelsius,
		},
		Humidity: payload.Main.Humidity,
		Pressure: payload.Main.Pressure,
	}

	if payload.Wind != nil && payload.Wind.Speed != nil {
		reading.Wind = &weather.Wind{
			Speed:     *payload.Wind.Speed,
			Direction: payload.Wind.Deg,
			Unit:      weather.UnitMetersPerSecond,
		}
	}

	if len(payload.Weather) > 0 {
		w := payload.Weather[0]
		cond := &weather.Condition{
			Main:        w.Main,
			Description: w.Description,
		}
		if w.Icon != "" {
			icon := w.Icon
			cond.Icon = &icon
		}
		reading.Conditions = cond
	}

	return reading, nil
}
