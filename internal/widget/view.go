package widget

import (
	"time"

	"github.com/dyike/StockLens/internal/format"
)

const (
	LabelSubmit    = "Analyze Stock"
	LabelAnalyzing = "Analyzing..."
	Placeholder    = "Enter stock symbol (e.g., AAPL, MSFT, GOOGL)"
)

// View is everything a renderer needs, derived from State alone.
type View struct {
	SymbolText     string
	Placeholder    string
	InputDisabled  bool
	SubmitDisabled bool
	SubmitLabel    string
	Phase          Phase

	// Error is non-empty when the error panel is shown.
	Error string
	// Result is set when the result panel is shown. Never together with Error.
	Result *ResultView
}

type ResultView struct {
	Symbol      string
	Price       string
	Change      string
	ChangeClass string
	LastUpdated string
	Bullish     []string
	Bearish     []string
}

// Render derives the view for s. Timestamps are shown in loc (time.Local when
// nil).
func Render(s State, loc *time.Location) View {
	v := View{
		SymbolText:     s.SymbolText,
		Placeholder:    Placeholder,
		InputDisabled:  s.Loading,
		SubmitDisabled: !s.CanSubmit(),
		SubmitLabel:    LabelSubmit,
		Phase:          s.Phase(),
	}
	if s.Loading {
		v.SubmitLabel = LabelAnalyzing
	}

	switch {
	case s.ErrorMessage != "":
		v.Error = s.ErrorMessage
	case s.Result != nil:
		r := s.Result
		v.Result = &ResultView{
			Symbol:      r.Symbol,
			Price:       format.Price(r.CurrentPrice),
			Change:      format.Change(r.PriceChange, r.PriceChangePct),
			ChangeClass: format.ChangeClass(r.PriceChange),
			LastUpdated: format.Timestamp(r.LastUpdated, loc),
			Bullish:     r.Analysis.BullishViews,
			Bearish:     r.Analysis.BearishViews,
		}
	}
	return v
}
