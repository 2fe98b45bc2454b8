package weather

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func reading(source string, temp float64) ProviderReading {
	return ProviderReading{
		Source:      source,
		Temperature: Temperature{Current: temp, Unit: UnitCelsius},
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateReadingsAveragesTemperature(t *testing.T) {
	readings := []ProviderReading{
		reading("open_meteo", 20.5),
		reading("openweather", 21.0),
		reading("weatherapi", 20.0),
	}

	got := AggregateReadings("Paris", Coordinates{Lat: 48.8566, Lon: 2.3522}, readings, time.Now())
	if got == nil {
		t.Fatal("expected a record")
	}
	if !approxEqual(got.Temperature.Current, 20.5) {
		t.Fatalf("expected mean temperature 20.5, got %v", got.Temperature.Current)
	}
	if got.Temperature.Unit != UnitCelsius {
		t.Fatalf("expected unit %q, got %q", UnitCelsius, got.Temperature.Unit)
	}
	want := []string{"open_meteo", "openweather", "weatherapi"}
	if !reflect.DeepEqual(got.Sources, want) {
		t.Fatalf("expected sources %v, got %v", want, got.Sources)
	}
}

func TestAggregateReadingsEmpty(t *testing.T) {
	if got := AggregateReadings("Paris", Coordinates{}, nil, time.Now()); got != nil {
		t.Fatalf("expected nil for no readings, got %+v", got)
	}
}

func TestAggregateReadingsOptionalFields(t *testing.T) {
	a := reading("a", 10)
	a.Humidity = float64Ptr(60)
	a.Wind = &Wind{Speed: 10, Unit: UnitKilometersPerHour}

	b := reading("b", 20)
	b.Wind = &Wind{Speed: 20, Direction: float64Ptr(90), Unit: UnitMetersPerSecond}
	b.Conditions = &Condition{Main: "Clouds", Description: "Scattered clouds"}
	b.Pressure = float64Ptr(1012)

	c := reading("c", 30)
	c.Humidity = float64Ptr(80)
	c.Wind = &Wind{Speed: 30, Direction: float64Ptr(180)}
	c.Conditions = &Condition{Main: "Rain", Description: "Light rain"}

	got := AggregateReadings("Berlin", Coordinates{}, []ProviderReading{a, b, c}, time.Now())

	if got.Humidity == nil || !approxEqual(*got.Humidity, 70) {
		t.Fatalf("expected humidity 70 averaged over reporting readings, got %v", got.Humidity)
	}
	if got.Pressure == nil || !approxEqual(*got.Pressure, 1012) {
		t.Fatalf("expected pressure 1012, got %v", got.Pressure)
	}
	if got.Wind == nil {
		t.Fatal("expected wind block")
	}
	if !approxEqual(got.Wind.Speed, 20) {
		t.Fatalf("expected raw mean wind speed 20, got %v", got.Wind.Speed)
	}
	if got.Wind.Direction == nil || *got.Wind.Direction != 90 {
		t.Fatalf("expected direction from first reading that has one (90), got %v", got.Wind.Direction)
	}
	if got.Wind.Unit != UnitMetersPerSecond {
		t.Fatalf("expected wind unit label %q, got %q", UnitMetersPerSecond, got.Wind.Unit)
	}
	if got.Conditions == nil || got.Conditions.Main != "Clouds" {
		t.Fatalf("expected first available conditions, got %+v", got.Conditions)
	}
}

func TestAggregateReadingsAbsentBlocks(t *testing.T) {
	got := AggregateReadings("Rome", Coordinates{}, []ProviderReading{reading("x", 15)}, time.Now())

	if got.Humidity != nil || got.Pressure != nil || got.Wind != nil || got.Conditions != nil {
		t.Fatalf("expected optional blocks to stay absent, got %+v", got)
	}
	if got.Temperature.FeelsLike != nil || got.Temperature.Min != nil || got.Temperature.Max != nil {
		t.Fatalf("expected optional temperatures to stay absent, got %+v", got.Temperature)
	}
}

func TestAggregateReadingsTemperatureExtremes(t *testing.T) {
	a := reading("a", 10)
	a.Temperature.Min = float64Ptr(8)
	a.Temperature.Max = float64Ptr(12)
	a.Temperature.FeelsLike = float64Ptr(9)

	b := reading("b", 11)
	b.Temperature.Min = float64Ptr(7)
	b.Temperature.Max = float64Ptr(11)
	b.Temperature.FeelsLike = float64Ptr(11)

	got := AggregateReadings("Tokyo", Coordinates{}, []ProviderReading{a, b}, time.Now())

	if *got.Temperature.Min != 7 || *got.Temperature.Max != 12 {
		t.Fatalf("expected min 7 / max 12, got %v / %v", *got.Temperature.Min, *got.Temperature.Max)
	}
	if !approxEqual(*got.Temperature.FeelsLike, 10) {
		t.Fatalf("expected feels_like 10, got %v", *got.Temperature.FeelsLike)
	}
}
