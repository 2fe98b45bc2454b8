package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestGetForecast(t *testing.T) {
	svc := NewService(nil, nil, WithClock(fixedClock))

	got, err := svc.GetForecast(context.Background(), "London", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.ForecastItems) != 7 {
		t.Fatalf("expected 7 items, got %d", len(got.ForecastItems))
	}
	if !got.ForecastItems[0].Timestamp.Equal(fixedClock()) {
		t.Fatalf("expected first item at now, got %v", got.ForecastItems[0].Timestamp)
	}
	for i := 1; i < len(got.ForecastItems); i++ {
		delta := got.ForecastItems[i].Timestamp.Sub(got.ForecastItems[i-1].Timestamp)
		if delta != 24*time.Hour {
			t.Fatalf("item %d: expected +24h, got %v", i, delta)
		}
	}
	if got.ForecastItems[3].Temperature.Current != 23 {
		t.Fatalf("expected placeholder temperature 23, got %v", got.ForecastItems[3].Temperature.Current)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "placeholder" {
		t.Fatalf("unexpected sources %v", got.Sources)
	}
}

func TestGetHistory(t *testing.T) {
	svc := NewService(nil, nil, WithClock(fixedClock))

	got, err := svc.GetHistory(context.Background(), "London", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.HistoricalData) != 7 {
		t.Fatalf("expected 7 items, got %d", len(got.HistoricalData))
	}
	if want := fixedClock().Add(-24 * time.Hour); !got.HistoricalData[0].Timestamp.Equal(want) {
		t.Fatalf("expected first item one day ago, got %v", got.HistoricalData[0].Timestamp)
	}
	for i := 1; i < len(got.HistoricalData); i++ {
		delta := got.HistoricalData[i-1].Timestamp.Sub(got.HistoricalData[i].Timestamp)
		if delta != 24*time.Hour {
			t.Fatalf("item %d: expected -24h, got %v", i, delta)
		}
	}
}

func TestPlaceholderErrors(t *testing.T) {
	svc := NewService(nil, nil)

	if _, err := svc.GetForecast(context.Background(), "Atlantis", 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetHistory(context.Background(), "Atlantis", 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetForecast(context.Background(), "Paris", 0); !errors.Is(err, ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays, got %v", err)
	}
}
