// Package widget holds the stock analyzer widget: the symbol input, the single
// in-flight analysis request and the outcome of the last submission.
package widget

import (
	"context"
	"sync"

	"github.com/dyike/StockLens/internal/dataflows"
	"github.com/dyike/StockLens/internal/models"
)

// Analyzer fetches the analysis for an upper-cased, trimmed symbol.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*models.AnalysisResult, error)
}

// Widget serialises state transitions for one user. The lock is never held
// across the network call.
type Widget struct {
	analyzer Analyzer

	mu        sync.Mutex
	state     State
	observers []func(State)
	detached  bool
}

func New(analyzer Analyzer) *Widget {
	return &Widget{analyzer: analyzer}
}

// OnChange registers fn to receive every state transition in order.
func (w *Widget) OnChange(fn func(State)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

// State returns a snapshot.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SetSymbol records typed input, upper-cased. Ignored while a request is in
// flight.
func (w *Widget) SetSymbol(text string) {
	w.mu.Lock()
	next := typed(w.state, text)
	changed := next != w.state
	w.state = next
	w.mu.Unlock()

	if changed {
		w.notify(next)
	}
}

// CanSubmit mirrors the enabled state of the submit control.
func (w *Widget) CanSubmit() bool {
	return w.State().CanSubmit()
}

// Submit analyzes the current symbol. It returns false without touching state
// when the trimmed symbol is empty or a request is already in flight.
// Otherwise it enters loading (clearing the previous error and result),
// performs one request and leaves loading with either a result or an error
// message, returning true.
func (w *Widget) Submit(ctx context.Context) bool {
	w.mu.Lock()
	if !w.state.CanSubmit() || w.detached {
		w.mu.Unlock()
		return false
	}
	symbol := w.state.Symbol()
	loading := begin(w.state)
	w.state = loading
	w.mu.Unlock()
	w.notify(loading)

	result, err := w.analyzer.Analyze(ctx, symbol)

	w.mu.Lock()
	if w.detached {
		w.mu.Unlock()
		return true
	}
	var done State
	if err != nil || result == nil {
		done = fail(w.state, dataflows.UserMessage(err))
	} else {
		done = succeed(w.state, result)
	}
	w.state = done
	w.mu.Unlock()
	w.notify(done)

	return true
}

// Detach marks the widget as removed. A response still in flight is
// discarded and later submissions are ignored.
func (w *Widget) Detach() {
	w.mu.Lock()
	w.detached = true
	w.observers = nil
	w.mu.Unlock()
}

func (w *Widget) notify(s State) {
	w.mu.Lock()
	observers := append([]func(State){}, w.observers...)
	w.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
}
