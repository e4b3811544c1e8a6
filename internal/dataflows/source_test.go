package dataflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"

	"github.com/dyike/StockLens/internal/logger"
)

func TestMockSourceHistory(t *testing.T) {
	src := NewMockSource(42)
	bars, err := src.History(context.Background(), "aapl", 30)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(bars) != 30 {
		t.Fatalf("expected 30 bars, got %d", len(bars))
	}

	for i, bar := range bars {
		if i > 0 && !bar.Date.Before(bars[i-1].Date) {
			t.Fatalf("bars not newest first at %d", i)
		}
		if bar.High.LessThan(bar.Close) || bar.High.LessThan(bar.Open) {
			t.Fatalf("high below open/close at %d: %+v", i, bar)
		}
		if bar.Low.GreaterThan(bar.Close) || bar.Low.GreaterThan(bar.Open) {
			t.Fatalf("low above open/close at %d: %+v", i, bar)
		}
		if bar.Volume < 1_000_000 || bar.Volume >= 10_000_000 {
			t.Fatalf("volume out of range at %d: %d", i, bar.Volume)
		}
	}

	oldest := bars[len(bars)-1].Close
	lo := decimal.NewFromFloat(150 * 0.94)
	hi := decimal.NewFromFloat(150 * 1.06)
	if oldest.LessThan(lo) || oldest.GreaterThan(hi) {
		t.Fatalf("first step strayed from base price: %s", oldest)
	}
}

func TestMockSourceDeterministic(t *testing.T) {
	fixed := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	a := NewMockSource(7)
	a.now = func() time.Time { return fixed }
	b := NewMockSource(7)
	b.now = func() time.Time { return fixed }

	barsA, _ := a.History(context.Background(), "MSFT", 5)
	barsB, _ := b.History(context.Background(), "MSFT", 5)
	for i := range barsA {
		if !barsA[i].Close.Equal(barsB[i].Close) || !barsA[i].Date.Equal(barsB[i].Date) {
			t.Fatalf("same seed produced different bars at %d", i)
		}
	}
	if !barsA[0].Date.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("latest bar should be today, got %s", barsA[0].Date)
	}
}

func TestMockSourceRejectsBadInput(t *testing.T) {
	src := NewMockSource(1)
	if _, err := src.History(context.Background(), "  ", 30); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
	if bars, err := src.History(context.Background(), "VERYLONGSYMBOLNAME", 3); err != nil || len(bars) != 3 {
		t.Fatalf("long symbols should be mocked, got %d bars, err %v", len(bars), err)
	}
	if _, err := src.History(context.Background(), "AAPL", 0); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.History(ctx, "AAPL", 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBasePrice(t *testing.T) {
	tests := map[string]float64{"AAPL": 150, "googl": 2500, "NFLX": 400, "ZZZZ": 100}
	for symbol, want := range tests {
		if got := BasePrice(symbol); got != want {
			t.Fatalf("BasePrice(%s) = %v, want %v", symbol, got, want)
		}
	}
}

func TestSortNewestFirst(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	bars := []Bar{{Date: day(1)}, {Date: day(3)}, {Date: day(2)}}
	SortNewestFirst(bars)
	for i, want := range []int{3, 2, 1} {
		if bars[i].Date.Day() != want {
			t.Fatalf("position %d: got day %d", i, bars[i].Date.Day())
		}
	}
}

func TestLongportSymbol(t *testing.T) {
	tests := map[string]string{
		"aapl":     "AAPL.US",
		"700.HK":   "700.HK",
		"brk.b":    "BRK.B.US",
		" tsla.us": "TSLA.US",
	}
	for in, want := range tests {
		if got := LongportSymbol(in); got != want {
			t.Fatalf("LongportSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

type failingFetcher struct {
	calls int
}

func (f *failingFetcher) Candlesticks(ctx context.Context, symbol string, period quote.Period, count int32, adjustType quote.AdjustType) ([]*quote.Candlestick, error) {
	f.calls++
	return nil, errors.New("quota exceeded")
}

func TestLongportSourceRetriesThenFails(t *testing.T) {
	fetcher := &failingFetcher{}
	src := newLongportSource(fetcher, logger.Discard())
	src.retry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	if _, err := src.History(context.Background(), "AAPL", 30); err == nil {
		t.Fatalf("expected error")
	}
	if fetcher.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", fetcher.calls)
	}
}

func TestNewLongportSourceRequiresCredentials(t *testing.T) {
	if _, err := NewLongportSource(LongportCredentials{AppKey: "k"}, nil); err == nil {
		t.Fatalf("expected credentials error")
	}
}

func TestWithRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := WithRetry(ctx, &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}, func() error {
		attempts++
		cancel()
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) || attempts != 1 {
		t.Fatalf("expected cancellation after one attempt, got %v after %d", err, attempts)
	}
}
