package devapi

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/StockLens/internal/dataflows"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func testBars() []dataflows.Bar {
	day := func(n int) time.Time { return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC) }
	return []dataflows.Bar{
		{Date: day(3), Open: d(101), High: d(112), Low: d(100), Close: d(110), Volume: 300},
		{Date: day(2), Open: d(91), High: d(101), Low: d(89), Close: d(100), Volume: 200},
		{Date: day(1), Open: d(88), High: d(95), Low: d(85), Close: d(90), Volume: 100},
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize("AAPL", testBars())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	checks := map[string]struct {
		got  decimal.Decimal
		want string
	}{
		"latest":    {s.Latest, "110.00"},
		"previous":  {s.Previous, "100.00"},
		"change":    {s.Change, "10.00"},
		"pct":       {s.ChangePct, "10.00"},
		"sma5":      {s.SMA5, "100.00"},
		"sma20":     {s.SMA20, "100.00"},
		"high":      {s.High, "112.00"},
		"low":       {s.Low, "85.00"},
		"avgVolume": {s.AvgVolume, "200.00"},
		"avgMove":   {s.AvgAbsMovePct, "10.56"},
	}
	for name, c := range checks {
		if got := c.got.StringFixed(2); got != c.want {
			t.Fatalf("%s = %s, want %s", name, got, c.want)
		}
	}
	if s.LatestVolume != 300 || len(s.Recent) != 3 {
		t.Fatalf("unexpected volume/recent: %d %d", s.LatestVolume, len(s.Recent))
	}
}

func TestSummarizeNeedsTwoBars(t *testing.T) {
	if _, err := Summarize("AAPL", testBars()[:1]); err == nil {
		t.Fatalf("expected error for a single bar")
	}
	if _, err := Summarize("AAPL", nil); err == nil {
		t.Fatalf("expected error for no bars")
	}
}

func TestSummarizeZeroPreviousClose(t *testing.T) {
	bars := testBars()
	bars[1].Close = decimal.Zero
	s, err := Summarize("AAPL", bars)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !s.ChangePct.IsZero() {
		t.Fatalf("expected zero pct with zero base, got %s", s.ChangePct)
	}
}

func TestSummaryPrompt(t *testing.T) {
	s, _ := Summarize("AAPL", testBars())
	prompt := s.Prompt()
	for _, want := range []string{
		"Stock Symbol: AAPL",
		"Current Price: $110.00",
		"Price Change: $10.00 (10.00%)",
		"20-day SMA: $100.00",
		"Day 1: $110.00 (Vol: 300)",
		"Day 3: $90.00 (Vol: 100)",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
