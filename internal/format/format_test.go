package format

import (
	"math"
	"testing"
	"time"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{123.4, "$123.40"},
		{0, "$0.00"},
		{150.25, "$150.25"},
		{2500, "$2500.00"},
		{0.005, "$0.01"},
	}
	for _, tt := range tests {
		if got := Price(tt.in); got != tt.want {
			t.Errorf("Price(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChange(t *testing.T) {
	tests := []struct {
		change, pct float64
		want        string
	}{
		{1.236, 0.5, "+1.24 (+0.50%)"},
		{-2.005, -1.1, "-2.00 (-1.10%)"},
		{-1.75, -1.15, "-1.75 (-1.15%)"},
		{0, 0, "+0.00 (+0.00%)"},
		{math.Copysign(0, -1), 0, "+0.00 (+0.00%)"},
		{-0.001, 0, "-0.00 (+0.00%)"},
		{-0.004, -0.001, "-0.00 (-0.00%)"},
	}
	for _, tt := range tests {
		if got := Change(tt.change, tt.pct); got != tt.want {
			t.Errorf("Change(%v, %v) = %q, want %q", tt.change, tt.pct, got, tt.want)
		}
	}
}

func TestChangeClass(t *testing.T) {
	if got := ChangeClass(0); got != ClassPositive {
		t.Fatalf("zero change should be positive, got %s", got)
	}
	if got := ChangeClass(0.01); got != ClassPositive {
		t.Fatalf("expected positive, got %s", got)
	}
	if got := ChangeClass(-0.01); got != ClassNegative {
		t.Fatalf("expected negative, got %s", got)
	}
}

func TestTimestamp(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	tests := []struct {
		name string
		raw  string
		loc  *time.Location
		want string
	}{
		{"rfc3339 utc", "2024-01-01T00:00:00Z", time.UTC, "1/1/2024, 12:00:00 AM"},
		{"rfc3339 converted", "2024-01-01T00:00:00Z", ny, "12/31/2023, 7:00:00 PM"},
		{"offset", "2024-07-04T15:30:00+02:00", time.UTC, "7/4/2024, 1:30:00 PM"},
		{"naive with micros is local", "2024-03-05T09:08:07.123456", ny, "3/5/2024, 9:08:07 AM"},
		{"bare date is utc", "2024-02-10", time.UTC, "2/10/2024, 12:00:00 AM"},
		{"garbage", "yesterday", time.UTC, InvalidDate},
		{"empty", "", time.UTC, InvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Timestamp(tt.raw, tt.loc); got != tt.want {
				t.Fatalf("Timestamp(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
