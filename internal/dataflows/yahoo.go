package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/sirupsen/logrus"
)

// YahooSource reads daily bars from the Yahoo Finance chart API.
type YahooSource struct {
	retry *RetryConfig
	log   logrus.FieldLogger
}

func NewYahooSource(log logrus.FieldLogger) *YahooSource {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &YahooSource{
		retry: DefaultRetryConfig(),
		log:   log.WithField("source", "yahoo"),
	}
}

// History asks for a calendar window twice the size of days so weekends and
// holidays still leave enough sessions, then keeps the latest days bars.
func (y *YahooSource) History(ctx context.Context, symbol string, days int) ([]Bar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	end := time.Now()
	start := end.AddDate(0, 0, -2*days-7)

	var bars []Bar
	err := WithRetry(ctx, y.retry, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)
		bars = bars[:0]
		for iter.Next() {
			bar := iter.Bar()
			bars = append(bars, Bar{
				Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
				Open:   bar.Open,
				High:   bar.High,
				Low:    bar.Low,
				Close:  bar.Close,
				Volume: int64(bar.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("chart %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		y.log.WithField("symbol", symbol).Warnf("history failed: %v", err)
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	SortNewestFirst(bars)
	if len(bars) > days {
		bars = bars[:days]
	}
	return bars, nil
}
