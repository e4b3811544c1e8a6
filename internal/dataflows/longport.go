package dataflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LongportCredentials are the three keys issued by the Longport developer
// portal.
type LongportCredentials struct {
	AppKey      string
	AppSecret   string
	AccessToken string
}

// candlestickFetcher is the part of quote.QuoteContext the source uses.
type candlestickFetcher interface {
	Candlesticks(ctx context.Context, symbol string, period quote.Period, count int32, adjustType quote.AdjustType) ([]*quote.Candlestick, error)
}

// LongportSource reads daily candlesticks through the Longport quote API.
type LongportSource struct {
	quoteCtx candlestickFetcher
	retry    *RetryConfig
	log      logrus.FieldLogger
}

func NewLongportSource(creds LongportCredentials, log logrus.FieldLogger) (*LongportSource, error) {
	if creds.AppKey == "" || creds.AppSecret == "" || creds.AccessToken == "" {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(creds.AppKey, creds.AppSecret, creds.AccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return newLongportSource(quoteContext, log), nil
}

func newLongportSource(fetcher candlestickFetcher, log logrus.FieldLogger) *LongportSource {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LongportSource{
		quoteCtx: fetcher,
		retry:    DefaultRetryConfig(),
		log:      log.WithField("source", "longport"),
	}
}

var longportMarkets = []string{".US", ".HK", ".SH", ".SZ", ".SG"}

// LongportSymbol adds the market suffix Longport expects, defaulting to US.
func LongportSymbol(symbol string) string {
	symbol = NormalizeSymbol(symbol)
	for _, m := range longportMarkets {
		if strings.HasSuffix(symbol, m) {
			return symbol
		}
	}
	return symbol + ".US"
}

func (l *LongportSource) History(ctx context.Context, symbol string, days int) ([]Bar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	lpSymbol := LongportSymbol(symbol)

	var sticks []*quote.Candlestick
	err := WithRetry(ctx, l.retry, func() error {
		var err error
		sticks, err = l.quoteCtx.Candlesticks(ctx, lpSymbol, quote.PeriodDay, int32(days), quote.AdjustTypeNo)
		if err != nil {
			return fmt.Errorf("candlesticks %s: %w", lpSymbol, err)
		}
		return nil
	})
	if err != nil {
		l.log.WithField("symbol", lpSymbol).Warnf("history failed: %v", err)
		return nil, err
	}

	bars := make([]Bar, 0, len(sticks))
	for _, stick := range sticks {
		if stick == nil {
			continue
		}
		open, _ := stick.Open.Float64()
		high, _ := stick.High.Float64()
		low, _ := stick.Low.Float64()
		closePrice, _ := stick.Close.Float64()

		bars = append(bars, Bar{
			Date:   time.Unix(stick.Timestamp, 0).UTC(),
			Open:   decimal.NewFromFloat(open),
			High:   decimal.NewFromFloat(high),
			Low:    decimal.NewFromFloat(low),
			Close:  decimal.NewFromFloat(closePrice),
			Volume: stick.Volume,
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	SortNewestFirst(bars)
	return bars, nil
}
