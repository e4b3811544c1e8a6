package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dyike/StockLens/internal/dataflows"
)

// DefaultTTL matches how long a daily history stays useful between requests.
const DefaultTTL = 5 * time.Minute

// MarketDataCache fronts a PriceSource with an in-memory cache keyed by
// symbol and bar count. Failed loads are not cached.
type MarketDataCache struct {
	source dataflows.PriceSource
	ttl    time.Duration
	log    logrus.FieldLogger
	now    func() time.Time

	mu          sync.RWMutex
	memoryCache map[string]*CachedData
}

type CachedData struct {
	Data      []dataflows.Bar
	Symbol    string
	Count     int
	Timestamp time.Time
}

func NewMarketDataCache(source dataflows.PriceSource, ttl time.Duration, log logrus.FieldLogger) *MarketDataCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MarketDataCache{
		source:      source,
		ttl:         ttl,
		log:         log.WithField("component", "market_cache"),
		now:         time.Now,
		memoryCache: make(map[string]*CachedData),
	}
}

func cacheKey(symbol string, count int) string {
	return fmt.Sprintf("%s-%d", symbol, count)
}

// History serves from memory while the entry is fresh, otherwise loads from
// the wrapped source and stores the result.
func (c *MarketDataCache) History(ctx context.Context, symbol string, days int) ([]dataflows.Bar, error) {
	symbol = dataflows.NormalizeSymbol(symbol)
	if bars, ok := c.Get(symbol, days); ok {
		return bars, nil
	}

	bars, err := c.source.History(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	c.Set(symbol, days, bars)
	return copyBars(bars), nil
}

func (c *MarketDataCache) Get(symbol string, count int) ([]dataflows.Bar, bool) {
	key := cacheKey(symbol, count)

	c.mu.RLock()
	cached, exists := c.memoryCache[key]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}

	if c.now().Sub(cached.Timestamp) > c.ttl {
		c.mu.Lock()
		if current, ok := c.memoryCache[key]; ok && current == cached {
			delete(c.memoryCache, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	c.log.WithField("symbol", symbol).Debugf("using memory cache (count: %d)", count)
	return copyBars(cached.Data), true
}

func (c *MarketDataCache) Set(symbol string, count int, data []dataflows.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memoryCache[cacheKey(symbol, count)] = &CachedData{
		Data:      copyBars(data),
		Symbol:    symbol,
		Count:     count,
		Timestamp: c.now(),
	}
}

func (c *MarketDataCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memoryCache = make(map[string]*CachedData)
}

// Len reports how many entries are held, fresh or not.
func (c *MarketDataCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memoryCache)
}

func copyBars(bars []dataflows.Bar) []dataflows.Bar {
	return append([]dataflows.Bar(nil), bars...)
}
