package devapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dyike/StockLens/internal/models"
)

// UnavailableView fills both lists when the model cannot be reached.
const UnavailableView = "AI analysis temporarily unavailable"

// Analyst turns a price summary into bullish and bearish views.
type Analyst interface {
	Analyze(ctx context.Context, s Summary) (models.Analysis, error)
}

// RuleAnalyst derives three views of each kind from the summary alone.
type RuleAnalyst struct{}

func (RuleAnalyst) Analyze(_ context.Context, s Summary) (models.Analysis, error) {
	var bullish, bearish []string

	if s.Change.IsNegative() {
		bullish = append(bullish, fmt.Sprintf("Pullback of $%s (%s%%) may offer a lower entry point near $%s",
			s.Change.Abs().StringFixed(2), s.ChangePct.Abs().StringFixed(2), s.Latest.StringFixed(2)))
	} else {
		bullish = append(bullish, fmt.Sprintf("Price gained $%s (%s%%) in the latest session, showing positive momentum",
			s.Change.StringFixed(2), s.ChangePct.StringFixed(2)))
	}

	if s.Latest.GreaterThanOrEqual(s.SMA20) {
		bullish = append(bullish, fmt.Sprintf("Trading above the 20-day SMA of $%s keeps the medium-term uptrend intact",
			s.SMA20.StringFixed(2)))
	} else {
		gap := percent(s.SMA20.Sub(s.Latest), s.SMA20)
		bullish = append(bullish, fmt.Sprintf("Price sits %s%% below the 20-day SMA of $%s, leaving room for mean reversion",
			gap.StringFixed(2), s.SMA20.StringFixed(2)))
	}

	avgVolume := s.AvgVolume.StringFixed(0)
	if s.AvgVolume.LessThan(decimal.NewFromInt(s.LatestVolume)) {
		bullish = append(bullish, fmt.Sprintf("Latest volume of %d is above the %s average, signalling active interest",
			s.LatestVolume, avgVolume))
	} else {
		bullish = append(bullish, fmt.Sprintf("Latest volume of %d is below the %s average, so selling pressure looks light",
			s.LatestVolume, avgVolume))
	}

	if s.SMA5.LessThan(s.SMA20) {
		bearish = append(bearish, fmt.Sprintf("5-day SMA of $%s is below the 20-day SMA of $%s, pointing to fading short-term momentum",
			s.SMA5.StringFixed(2), s.SMA20.StringFixed(2)))
	} else {
		bearish = append(bearish, fmt.Sprintf("5-day SMA of $%s is stretched above the 20-day SMA of $%s, raising pullback risk",
			s.SMA5.StringFixed(2), s.SMA20.StringFixed(2)))
	}

	if s.Latest.GreaterThanOrEqual(s.High) {
		bearish = append(bearish, fmt.Sprintf("Price is at its %d-day high of $%s with little cushion if momentum stalls",
			HistoryDays, s.High.StringFixed(2)))
	} else {
		bearish = append(bearish, fmt.Sprintf("Price is %s%% below the recent high of $%s, which may act as resistance",
			percent(s.High.Sub(s.Latest), s.High).StringFixed(2), s.High.StringFixed(2)))
	}

	bearish = append(bearish, fmt.Sprintf("Average daily move of %s%% leaves the stock exposed to sharp swings",
		s.AvgAbsMovePct.StringFixed(2)))

	return models.Analysis{BullishViews: bullish, BearishViews: bearish}, nil
}

// Generator is the chat model call the LLM analyst needs.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// LLMConfig selects an OpenAI compatible endpoint.
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// LLMAnalyst asks a chat model for three bullish and three bearish views.
type LLMAnalyst struct {
	model Generator
	log   logrus.FieldLogger
}

const systemPrompt = "You are a professional financial analyst with expertise in technical and fundamental analysis. Always respond with valid JSON format."

const analysisPrompt = `As a professional financial analyst, analyze the following stock data and provide exactly 3 bullish views and 3 bearish views for %s.

%s
Please provide your analysis in the following JSON format:
{
    "bullish_views": ["Bullish view 1 with specific reasoning", "Bullish view 2 with specific reasoning", "Bullish view 3 with specific reasoning"],
    "bearish_views": ["Bearish view 1 with specific reasoning", "Bearish view 2 with specific reasoning", "Bearish view 3 with specific reasoning"]
}

Make each view specific, actionable, and based on the data provided. Include technical analysis, volume patterns, and price action insights.`

func NewLLMAnalyst(ctx context.Context, cfg LLMConfig, log logrus.FieldLogger) (*LLMAnalyst, error) {
	maxTokens := 800
	temperature := float32(0.7)
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return newLLMAnalyst(chatModel, log), nil
}

func newLLMAnalyst(g Generator, log logrus.FieldLogger) *LLMAnalyst {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LLMAnalyst{model: g, log: log.WithField("component", "llm_analyst")}
}

// Analyze never fails: a failed call yields UnavailableView and a reply that
// is not the expected JSON yields generic views.
func (a *LLMAnalyst) Analyze(ctx context.Context, s Summary) (models.Analysis, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fmt.Sprintf(analysisPrompt, s.Symbol, s.Prompt())),
	}

	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		a.log.WithField("symbol", s.Symbol).Warnf("chat model call failed: %v", err)
		return unavailableAnalysis(), nil
	}

	analysis, err := parseAnalysis(resp.Content)
	if err != nil {
		a.log.WithField("symbol", s.Symbol).Warnf("unparseable model reply: %v", err)
		return genericAnalysis(), nil
	}
	return analysis, nil
}

func parseAnalysis(content string) (models.Analysis, error) {
	clean := strings.TrimSpace(content)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var analysis models.Analysis
	if err := json.Unmarshal([]byte(clean), &analysis); err != nil {
		return models.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	if len(analysis.BullishViews) == 0 && len(analysis.BearishViews) == 0 {
		return models.Analysis{}, fmt.Errorf("reply has no views")
	}
	return analysis, nil
}

func unavailableAnalysis() models.Analysis {
	return models.Analysis{
		BullishViews: []string{UnavailableView},
		BearishViews: []string{UnavailableView},
	}
}

func genericAnalysis() models.Analysis {
	return models.Analysis{
		BullishViews: []string{
			"Strong upward momentum based on recent price action",
			"Volume patterns suggest institutional interest",
			"Technical indicators show bullish divergence",
		},
		BearishViews: []string{
			"Potential resistance at current price levels",
			"Volume decline indicates weakening momentum",
			"Technical indicators show overbought conditions",
		},
	}
}
