package weather

import (
	"time"
)

const (
	// UnitCelsius is the canonical temperature unit of aggregated records.
	UnitCelsius = "celsius"
	// UnitMetersPerSecond is the label attached to aggregated wind.
	// Source units are not converted before averaging.
	UnitMetersPerSecond = "m/s"
	// UnitKilometersPerHour is reported by Open-Meteo and WeatherAPI.
	UnitKilometersPerHour = "km/h"
)

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Temperature block shared by readings, aggregated records and forecast items.
type Temperature struct {
	Current   float64  `json:"current"`
	FeelsLike *float64 `json:"feels_like"`
	Min       *float64 `json:"min"`
	Max       *float64 `json:"max"`
	Unit      string   `json:"unit"`
}

// Wind speed and optional direction in degrees.
type Wind struct {
	Speed     float64  `json:"speed"`
	Direction *float64 `json:"direction"`
	Unit      string   `json:"unit"`
}

// Condition is a textual weather category.
type Condition struct {
	Main        string  `json:"main"`
	Description string  `json:"description"`
	Icon        *string `json:"icon"`
}

// ProviderReading is one provider's snapshot of current conditions.
// Readings are built by exactly one adapter call and never mutated.
type ProviderReading struct {
	Source      string
	Temperature Temperature
	Humidity    *float64
	Pressure    *float64
	Wind        *Wind
	Conditions  *Condition
}

// CurrentWeather is the merged, externally visible current-weather record.
// Sources is never empty for a record returned by the Service.
type CurrentWeather struct {
	City        string       `json:"city"`
	Country     *string      `json:"country"`
	Coordinates *Coordinates `json:"coordinates"`
	Temperature Temperature  `json:"temperature"`
	Humidity    *float64     `json:"humidity"`
	Pressure    *float64     `json:"pressure"`
	Wind        *Wind        `json:"wind"`
	Conditions  *Condition   `json:"conditions"`
	Timestamp   time.Time    `json:"timestamp"`
	Sources     []string     `json:"sources"`
}

// ForecastItem is a time-stamped snapshot inside a Forecast or HistoricalWeather.
type ForecastItem struct {
	Timestamp                time.Time   `json:"timestamp"`
	Temperature              Temperature `json:"temperature"`
	Humidity                 *float64    `json:"humidity"`
	Pressure                 *float64    `json:"pressure"`
	Wind                     *Wind       `json:"wind"`
	Conditions               *Condition  `json:"conditions"`
	PrecipitationProbability *float64    `json:"precipitation_probability"`
}

// Forecast entries are ordered by Timestamp ascending.
type Forecast struct {
	City          string         `json:"city"`
	Country       *string        `json:"country"`
	Coordinates   *Coordinates   `json:"coordinates"`
	ForecastItems []ForecastItem `json:"forecast_items"`
	Sources       []string       `json:"sources"`
}

// HistoricalWeather entries are ordered by Timestamp descending.
type HistoricalWeather struct {
	City           string         `json:"city"`
	Country        *string        `json:"country"`
	Coordinates    *Coordinates   `json:"coordinates"`
	HistoricalData []ForecastItem `json:"historical_data"`
	Sources        []string       `json:"sources"`
}

func float64Ptr(v float64) *float64 {
	return &v
}
