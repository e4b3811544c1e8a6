package devapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dyike/StockLens/internal/dataflows"
)

// HistoryDays is how many daily bars each analysis looks at.
const HistoryDays = 30

var errShortHistory = errors.New("at least two bars are required")

var hundred = decimal.NewFromInt(100)

// Summary is the set of figures an analyst works from. Bars are newest first.
type Summary struct {
	Symbol        string
	Latest        decimal.Decimal
	Previous      decimal.Decimal
	Change        decimal.Decimal
	ChangePct     decimal.Decimal
	SMA5          decimal.Decimal
	SMA20         decimal.Decimal
	High          decimal.Decimal
	Low           decimal.Decimal
	LatestVolume  int64
	AvgVolume     decimal.Decimal
	AvgAbsMovePct decimal.Decimal
	Recent        []dataflows.Bar
}

// Summarize computes the summary for bars ordered newest first.
func Summarize(symbol string, bars []dataflows.Bar) (Summary, error) {
	if len(bars) < 2 {
		return Summary{}, errShortHistory
	}

	s := Summary{
		Symbol:       symbol,
		Latest:       bars[0].Close,
		Previous:     bars[1].Close,
		LatestVolume: bars[0].Volume,
		High:         bars[0].High,
		Low:          bars[0].Low,
	}
	s.Change = s.Latest.Sub(s.Previous)
	s.ChangePct = percent(s.Change, s.Previous)
	s.SMA5 = average(closes(bars, 5))
	s.SMA20 = average(closes(bars, 20))

	var volume int64
	moves := make([]decimal.Decimal, 0, len(bars)-1)
	for i, bar := range bars {
		volume += bar.Volume
		if bar.High.GreaterThan(s.High) {
			s.High = bar.High
		}
		if bar.Low.LessThan(s.Low) {
			s.Low = bar.Low
		}
		if i+1 < len(bars) {
			moves = append(moves, percent(bar.Close.Sub(bars[i+1].Close), bars[i+1].Close).Abs())
		}
	}
	s.AvgVolume = decimal.NewFromInt(volume).Div(decimal.NewFromInt(int64(len(bars))))
	s.AvgAbsMovePct = average(moves)

	recent := min(10, len(bars))
	s.Recent = append([]dataflows.Bar(nil), bars[:recent]...)
	return s, nil
}

// Prompt renders the summary as the data block handed to a language model.
func (s Summary) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock Symbol: %s\n", s.Symbol)
	fmt.Fprintf(&b, "Current Price: $%s\n", s.Latest.StringFixed(2))
	fmt.Fprintf(&b, "Price Change: $%s (%s%%)\n", s.Change.StringFixed(2), s.ChangePct.StringFixed(2))
	fmt.Fprintf(&b, "5-day SMA: $%s\n", s.SMA5.StringFixed(2))
	fmt.Fprintf(&b, "20-day SMA: $%s\n", s.SMA20.StringFixed(2))
	fmt.Fprintf(&b, "Average Volume: %s\n\n", s.AvgVolume.StringFixed(0))
	fmt.Fprintf(&b, "Recent Price History (last %d days):\n", len(s.Recent))
	for i, bar := range s.Recent {
		fmt.Fprintf(&b, "Day %d: $%s (Vol: %d)\n", i+1, bar.Close.StringFixed(2), bar.Volume)
	}
	return b.String()
}

func closes(bars []dataflows.Bar, n int) []decimal.Decimal {
	n = min(n, len(bars))
	out := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		out[i] = bars[i].Close
	}
	return out
}

func average(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values))))
}

func percent(delta, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return delta.Div(base).Mul(hundred)
}
