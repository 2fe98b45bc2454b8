package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-api/internal/weather"
)

const (
	// OpenMeteoName is the source tag of Open-Meteo readings.
	OpenMeteoName = "open_meteo"
	// DefaultOpenMeteoBaseURL is the Open-Meteo API root; "/forecast" is appended.
	DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs no API key but requires coordinates.
type OpenMeteoProvider struct {
	base
}

func NewOpenMeteoProvider(client *http.Client, opts ...Option) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		base: newBase(OpenMeteoName, DefaultOpenMeteoBaseURL, client, opts),
	}
}

func (p *OpenMeteoProvider) Enabled() bool {
	return true
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, city string, coords weather.Coordinates) (weather.ProviderReading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coords.Lon))
		values.Set("current_weather", "true")
		values.Set("hourly", "temperature_2m,relativehumidity_2m,pressure_msl,windspeed_10m,winddirection_10m")

		u := fmt.Sprintf("%s/forecast?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		CurrentWeather *struct {
			Temperature   *float64 `json:"temperature"`
			WindSpeed     *float64 `json:"windspeed"`
			WindDirection *float64 `json:"winddirection"`
			WeatherCode   *int     `json:"weathercode"`
		} `json:"current_weather"`
		Hourly struct {
			RelativeHumidity []float64 `json:"relativehumidity_2m"`
		} `json:"hourly"`
	}

	valid := func() bool {
		cw := payload.CurrentWeather
		return cw != nil && cw.Temperature != nil && cw.WindSpeed != nil && cw.WeatherCode != nil
	}
	if err := p.getJSON(ctx, buildRequest, &payload, valid); err != nil {
		return weather.ProviderReading{}, err
	}

	cw := payload.CurrentWeather

	reading := weather.ProviderReading{
		Source: p.name,
		Temperature: weather.Temperature{
			Current: *cw.Temperature,
			Unit:    weather.UnitCelsius,
		},
		Wind: &weather.Wind{
			Speed:     *cw.WindSpeed,
			Direction: cw.WindDirection,
			Unit:      weather.UnitKilometersPerHour,
		},
		Conditions: &weather.Condition{
			Main:        ConditionFromCode(*cw.WeatherCode),
			Description: DescriptionFromCode(*cw.WeatherCode),
		},
	}

	// Open-Meteo only reports humidity hourly; the first hour stands in for now.
	if len(payload.Hourly.RelativeHumidity) > 0 {
		h := payload.Hourly.RelativeHumidity[0]
		reading.Humidity = &h
	}

	return reading, nil
}

// weatherCodeDescriptions covers the WMO codes Open-Meteo reports most often.
var weatherCodeDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	95: "Thunderstorm",
}

// ConditionFromCode maps a WMO weather code to a coarse category.
func ConditionFromCode(code int) string {
	switch {
	case code < 3:
		return "Clear"
	case code < 50:
		return "Clouds"
	case code < 70:
		return "Rain"
	case code < 80:
		return "Snow"
	default:
		return "Thunderstorm"
	}
}

// DescriptionFromCode returns a human description, or "Unknown".
func DescriptionFromCode(code int) string {
	if d, ok := weatherCodeDescriptions[code]; ok {
		return d
	}
	return "Unknown"
}
