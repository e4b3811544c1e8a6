package dataflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/dyike/StockLens/internal/models"
)

// FallbackMessage is shown when a failed analysis carries no server message.
const FallbackMessage = "An error occurred while analyzing the stock"

// RequestError describes a failed analysis call. StatusCode is zero when no
// response was received.
type RequestError struct {
	Symbol     string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "analyze %s", e.Symbol)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

// UserMessage collapses any analysis failure into the single message shown to
// the user: the server's own error text when it sent one, otherwise
// FallbackMessage.
func UserMessage(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && strings.TrimSpace(reqErr.Message) != "" {
		return reqErr.Message
	}
	return FallbackMessage
}

// AnalysisClient calls the analysis collaborator over HTTP.
type AnalysisClient struct {
	client *resty.Client
	log    logrus.FieldLogger
}

// NewAnalysisClient creates a client rooted at baseURL. A zero timeout leaves
// requests unbounded.
func NewAnalysisClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *AnalysisClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &AnalysisClient{
		client: client,
		log:    log.WithField("component", "analysis_client"),
	}
}

// BaseURL reports where requests are sent.
func (c *AnalysisClient) BaseURL() string {
	return c.client.BaseURL
}

// Analyze issues exactly one GET /api/analyze/{symbol}. The symbol is sent as
// given, path-escaped; callers normalise it.
func (c *AnalysisClient) Analyze(ctx context.Context, symbol string) (*models.AnalysisResult, error) {
	c.log.WithField("symbol", symbol).Debug("requesting analysis")

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		Get("/api/analyze/{symbol}")
	if err != nil {
		c.log.WithField("symbol", symbol).Warnf("analysis request failed: %v", err)
		return nil, &RequestError{Symbol: symbol, Err: err}
	}

	if !resp.IsSuccess() {
		reqErr := &RequestError{Symbol: symbol, StatusCode: resp.StatusCode()}
		var body models.ErrorBody
		if err := json.Unmarshal(resp.Body(), &body); err == nil {
			reqErr.Message = body.Error
		}
		c.log.WithFields(logrus.Fields{
			"symbol": symbol,
			"status": resp.StatusCode(),
		}).Warnf("analysis rejected: %s", reqErr.Message)
		return nil, reqErr
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.log.WithField("symbol", symbol).Warnf("malformed analysis response: %v", err)
		return nil, &RequestError{
			Symbol:     symbol,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("decode analysis response: %w", err),
		}
	}

	return &result, nil
}

// Health queries the collaborator's /api/health endpoint.
func (c *AnalysisClient) Health(ctx context.Context) (*models.HealthStatus, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/api/health")
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("health check: status %d: %s", resp.StatusCode(), resp.String())
	}

	var status models.HealthStatus
	if err := json.Unmarshal(resp.Body(), &status); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &status, nil
}
