package models

// AnalysisResult is the payload returned by the analysis collaborator for one
// ticker. It is held as-is; nothing here recomputes or validates the figures.
type AnalysisResult struct {
	Symbol         string   `json:"symbol"`
	CurrentPrice   float64  `json:"current_price"`
	PriceChange    float64  `json:"price_change"`
	PriceChangePct float64  `json:"price_change_pct"`
	Analysis       Analysis `json:"analysis"`
	LastUpdated    string   `json:"last_updated"`
}

// Analysis holds the bullish and bearish statements in the order supplied.
type Analysis struct {
	BullishViews []string `json:"bullish_views"`
	BearishViews []string `json:"bearish_views"`
}

// ErrorBody is the JSON body the collaborator sends with non-2xx responses.
type ErrorBody struct {
	Error  string `json:"error,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// HealthStatus is returned by health endpoints.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}
