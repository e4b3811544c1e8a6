package widget

import (
	"strings"

	"github.com/dyike/StockLens/internal/models"
)

// Phase names the mutually exclusive situations a widget can be in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseSuccess:
		return "success"
	default:
		return "idle"
	}
}

// State is the complete widget state. Values are snapshots; Result is shared
// and must be treated as read-only.
type State struct {
	SymbolText   string
	Loading      bool
	ErrorMessage string
	Result       *models.AnalysisResult
}

// Phase derives the current phase from the state fields.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.ErrorMessage != "":
		return PhaseError
	case s.Result != nil:
		return PhaseSuccess
	default:
		return PhaseIdle
	}
}

// Symbol is the request symbol: trimmed and upper-cased.
func (s State) Symbol() string {
	return strings.ToUpper(strings.TrimSpace(s.SymbolText))
}

// CanSubmit reports whether a submission would issue a request.
func (s State) CanSubmit() bool {
	return !s.Loading && s.Symbol() != ""
}

// typed stores input upper-cased as typed. Input is locked while loading.
func typed(s State, text string) State {
	if s.Loading {
		return s
	}
	s.SymbolText = strings.ToUpper(text)
	return s
}

// begin enters loading and clears any previous outcome in one step.
func begin(s State) State {
	s.Loading = true
	s.ErrorMessage = ""
	s.Result = nil
	return s
}

func succeed(s State, result *models.AnalysisResult) State {
	s.Loading = false
	s.ErrorMessage = ""
	s.Result = result
	return s
}

func fail(s State, message string) State {
	s.Loading = false
	s.ErrorMessage = message
	s.Result = nil
	return s
}
