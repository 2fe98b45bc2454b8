package weather

import (
	"context"
	"fmt"
)

// placeholderSource tags records produced without any provider.
const placeholderSource = "placeholder"

// GetForecast returns a generated forecast of days entries, one per day
// starting now. Provider forecast endpoints are not queried yet.
func (s *Service) GetForecast(ctx context.Context, city string, days int) (*Forecast, error) {
	coords, err := s.placeholderTarget(ctx, city, days)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	items := make([]ForecastItem, 0, days)
	for i := 0; i < days; i++ {
		items = append(items, ForecastItem{
			Timestamp: now.AddDate(0, 0, i),
			Temperature: Temperature{
				Current: 20.0 + float64(i),
				Unit:    UnitCelsius,
			},
			Humidity: float64Ptr(70.0 - float64(i)),
			Conditions: &Condition{
				Main:        "Clear",
				Description: "Clear sky",
			},
		})
	}

	return &Forecast{
		City:          city,
		Coordinates:   &coords,
		ForecastItems: items,
		Sources:       []string{placeholderSource},
	}, nil
}

// GetHistory returns generated observations for the past days, newest first,
// starting one day before now.
func (s *Service) GetHistory(ctx context.Context, city string, days int) (*HistoricalWeather, error) {
	coords, err := s.placeholderTarget(ctx, city, days)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	items := make([]ForecastItem, 0, days)
	for i := 0; i < days; i++ {
		items = append(items, ForecastItem{
			Timestamp: now.AddDate(0, 0, -(i + 1)),
			Temperature: Temperature{
				Current: 20.0 - float64(i),
				Unit:    UnitCelsius,
			},
			Humidity: float64Ptr(70.0 + float64(i)),
			Conditions: &Condition{
				Main:        "Clouds",
				Description: "Scattered clouds",
			},
		})
	}

	return &HistoricalWeather{
		City:           city,
		Coordinates:    &coords,
		HistoricalData: items,
		Sources:        []string{placeholderSource},
	}, nil
}

func (s *Service) placeholderTarget(ctx context.Context, city string, days int) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	if days <= 0 {
		return Coordinates{}, ErrInvalidDays
	}
	coords, ok := ResolveCoordinates(city)
	if !ok {
		return Coordinates{}, fmt.Errorf("%w: unknown city %q", ErrNotFound, city)
	}
	return coords, nil
}
