package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-api/internal/weather"
)

const (
	// WeatherAPIName is the source tag of WeatherAPI.com readings.
	WeatherAPIName = "weatherapi"
	// DefaultWeatherAPIBaseURL is the current-weather endpoint of WeatherAPI.com.
	DefaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1/current.json"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	base
	apiKey string
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		base:   newBase(WeatherAPIName, DefaultWeatherAPIBaseURL, client, opts),
		apiKey: apiKey,
	}
}

func (p *WeatherAPIProvider) Enabled() bool {
	return p.apiKey != ""
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, city string, _ weather.Coordinates) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("%w: weatherapi api key is not configured", weather.ErrProviderDisabled)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("key", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Current *struct {
			TempC      *float64 `json:"temp_c"`
			FeelsLikeC *float64 `json:"feelslike_c"`
			Humidity   *float64 `json:"humidity"`
			PressureMb *float64 `json:"pressure_mb"`
			WindKph    *float64 `json:"wind_kph"`
			WindDegree *float64 `json:"wind_degree"`
			Condition  *struct {
				Text string `json:"text"`
				Icon string `json:"icon"`
			} `json:"condition"`
		} `json:"current"`
	}

	valid := func() bool {
		return payload.Current != nil && payload.Current.TempC != nil
	}
	if err := p.getJSON(ctx, buildRequest, &payload, valid); err != nil {
		return weather.ProviderReading{}, err
	}

	cur := payload.Current

	reading := weather.ProviderReading{
		Source: p.name,
		Temperature: weather.Temperature{
			Current:   *cur.TempC,
			FeelsLike: cur.FeelsLikeC,
			Unit:      weather.UnitCelsius,
		},
		Humidity: cur.Humidity,
		Pressure: cur.PressureMb,
	}

	if cur.WindKph != nil {
		reading.Wind = &weather.Wind{
			Speed:     *cur.WindKph,
			Direction: cur.WindDegree,
			Unit:      weather.UnitKilometersPerHour,
		}
	}

	// WeatherAPI only has a free-text condition; it doubles as the category.
	if cur.Condition != nil && cur.Condition.Text != "" {
		cond := &weather.Condition{
			Main:        cur.Condition.Text,
			Description: cur.Condition.Text,
		}
		if cur.Condition.Icon != "" {
			icon := cur.Condition.Icon
			cond.Icon = &icon
		}
		reading.Conditions = cond
	}

	return reading, nil
}
