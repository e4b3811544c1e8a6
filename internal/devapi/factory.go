package devapi

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dyike/StockLens/config"
	"github.com/dyike/StockLens/internal/cache"
	"github.com/dyike/StockLens/internal/dataflows"
)

// NewSource builds the price source named by cfg.DevAPISource.
func NewSource(cfg *config.Config, log logrus.FieldLogger) (dataflows.PriceSource, error) {
	switch cfg.DevAPISource {
	case config.SourceMock, "":
		return dataflows.NewMockSource(time.Now().UnixNano()), nil
	case config.SourceYahoo:
		return cache.NewMarketDataCache(dataflows.NewYahooSource(log), cache.DefaultTTL, log), nil
	case config.SourceLongport:
		src, err := dataflows.NewLongportSource(dataflows.LongportCredentials{
			AppKey:      cfg.LongportAppKey,
			AppSecret:   cfg.LongportAppSecret,
			AccessToken: cfg.LongportAccessToken,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("longport source: %w", err)
		}
		return cache.NewMarketDataCache(src, cache.DefaultTTL, log), nil
	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.DevAPISource)
	}
}

// NewAnalyst returns the LLM analyst when enabled, otherwise the rule analyst.
func NewAnalyst(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (Analyst, error) {
	if !cfg.LLMEnabled {
		return RuleAnalyst{}, nil
	}
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("llm analysis enabled but DEEPSEEK_API_KEY is not set")
	}
	analyst, err := NewLLMAnalyst(ctx, LLMConfig{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
	}, log)
	if err != nil {
		return nil, err
	}
	return analyst, nil
}
