package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func run(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestForecastCmdRejectsOutOfRangeDays(t *testing.T) {
	for _, days := range []string{"0", "11", "1000"} {
		if _, err := run(forecastCmd(), "paris", "-d", days); err == nil || !strings.Contains(err.Error(), "between 1 and 10") {
			t.Fatalf("days=%s: expected range error, got %v", days, err)
		}
	}
}

func TestHistoryCmdRejectsOutOfRangeDays(t *testing.T) {
	for _, days := range []string{"0", "31"} {
		if _, err := run(historyCmd(), "paris", "--days", days); err == nil || !strings.Contains(err.Error(), "between 1 and 30") {
			t.Fatalf("days=%s: expected range error, got %v", days, err)
		}
	}
}

func TestForecastCmdPrintsItems(t *testing.T) {
	out, err := run(forecastCmd(), "new", "york", "-d", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got struct {
		City          string            `json:"city"`
		ForecastItems []json.RawMessage `json:"forecast_items"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.City != "new york" || len(got.ForecastItems) != 3 {
		t.Fatalf("unexpected forecast: city %q with %d items", got.City, len(got.ForecastItems))
	}
}
