package weather

import "time"

// AggregateReadings merges provider readings into a single CurrentWeather.
// It returns nil when readings is empty.
//
// Current temperature, feels-like, humidity, pressure and wind speed are
// averaged over the readings that report them. Wind direction and conditions
// come from the first reading that has them. Units are not harmonised: wind
// speeds are averaged as raw numbers and labelled m/s.
func AggregateReadings(city string, coords Coordinates, readings []ProviderReading, now time.Time) *CurrentWeather {
	if len(readings) == 0 {
		return nil
	}

	var (
		sumTemp    float64
		feelsLike  mean
		humidity   mean
		pressure   mean
		windSpeed  mean
		minTemp    *float64
		maxTemp    *float64
		windDir    *float64
		conditions *Condition
	)
	sources := make([]string, 0, len(readings))

	for _, r := range readings {
		sumTemp += r.Temperature.Current

		if r.Temperature.FeelsLike != nil {
			feelsLike.add(*r.Temperature.FeelsLike)
		}
		if r.Temperature.Min != nil && (minTemp == nil || *r.Temperature.Min < *minTemp) {
			minTemp = float64Ptr(*r.Temperature.Min)
		}
		if r.Temperature.Max != nil && (maxTemp == nil || *r.Temperature.Max > *maxTemp) {
			maxTemp = float64Ptr(*r.Temperature.Max)
		}
		if r.Humidity != nil {
			humidity.add(*r.Humidity)
		}
		if r.Pressure != nil {
			pressure.add(*r.Pressure)
		}
		if r.Wind != nil {
			windSpeed.add(r.Wind.Speed)
			if windDir == nil && r.Wind.Direction != nil {
				windDir = float64Ptr(*r.Wind.Direction)
			}
		}
		if conditions == nil && r.Conditions != nil {
			c := *r.Conditions
			conditions = &c
		}

		sources = append(sources, r.Source)
	}

	out := &CurrentWeather{
		City:        city,
		Coordinates: &coords,
		Temperature: Temperature{
			Current:   sumTemp / float64(len(readings)),
			FeelsLike: feelsLike.value(),
			Min:       minTemp,
			Max:       maxTemp,
			Unit:      UnitCelsius,
		},
		Humidity:   humidity.value(),
		Pressure:   pressure.value(),
		Conditions: conditions,
		Timestamp:  now,
		Sources:    sources,
	}

	if speed := windSpeed.value(); speed != nil {
		out.Wind = &Wind{
			Speed:     *speed,
			Direction: windDir,
			Unit:      UnitMetersPerSecond,
		}
	}

	return out
}

// mean accumulates an arithmetic mean over optional values.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	return float64Ptr(m.sum / float64(m.n))
}
