package dataflows

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoData is returned when a source has no bars for a symbol.
var ErrNoData = errors.New("no price data")

// Bar is one daily OHLCV candle.
type Bar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// PriceSource loads daily history. Bars come back newest first.
type PriceSource interface {
	History(ctx context.Context, symbol string, days int) ([]Bar, error)
}

// SortNewestFirst orders bars by date, most recent first.
func SortNewestFirst(bars []Bar) {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.After(bars[j].Date)
	})
}

var mockBasePrices = map[string]float64{
	"AAPL":  150,
	"MSFT":  300,
	"GOOGL": 2500,
	"TSLA":  200,
	"AMZN":  3000,
	"META":  300,
	"NVDA":  400,
	"NFLX":  400,
}

const mockDefaultPrice = 100

// MockSource generates a random walk around a per-symbol base price.
type MockSource struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewMockSource seeds the walk; the same seed gives the same bars.
func NewMockSource(seed int64) *MockSource {
	return &MockSource{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// BasePrice is the starting level of the walk for symbol.
func BasePrice(symbol string) float64 {
	if p, ok := mockBasePrices[NormalizeSymbol(symbol)]; ok {
		return p
	}
	return mockDefaultPrice
}

func (m *MockSource) History(ctx context.Context, symbol string, days int) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Any non-blank symbol gets a walk; unknown ones start at the default price.
	if NormalizeSymbol(symbol) == "" {
		return nil, errors.New("symbol cannot be empty")
	}
	if days <= 0 {
		return nil, ErrNoData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	today := m.now().UTC().Truncate(24 * time.Hour)
	price := BasePrice(symbol)
	bars := make([]Bar, days)

	// Walk forward from the oldest day, filling the slice from the back.
	for i := days - 1; i >= 0; i-- {
		price *= 1 + (m.rng.Float64()*0.1 - 0.05)
		open := price * (1 + (m.rng.Float64()*0.04 - 0.02))
		high := max(price, open) * (1 + m.rng.Float64()*0.03)
		low := min(price, open) * (1 - m.rng.Float64()*0.03)

		bars[i] = Bar{
			Date:   today.AddDate(0, 0, -i),
			Open:   decimal.NewFromFloat(open).Round(2),
			High:   decimal.NewFromFloat(high).Round(2),
			Low:    decimal.NewFromFloat(low).Round(2),
			Close:  decimal.NewFromFloat(price).Round(2),
			Volume: 1_000_000 + m.rng.Int63n(9_000_000),
		}
	}
	return bars, nil
}
