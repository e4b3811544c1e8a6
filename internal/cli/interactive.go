package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/dyike/StockLens/internal/display"
	"github.com/dyike/StockLens/internal/widget"
)

// runInteractive keeps one widget for the whole session, mirroring the page:
// each answer is typed into the widget and submitted.
func (a *app) runInteractive(ctx context.Context, out io.Writer, ask func() (string, error)) error {
	fmt.Fprintln(out, display.Banner())
	fmt.Fprintln(out)

	w := widget.New(a.newClient(*a.cfg))
	defer w.Detach()
	return interactiveLoop(ctx, out, w, ask, time.Local)
}

func interactiveLoop(ctx context.Context, out io.Writer, w *widget.Widget, ask func() (string, error), loc *time.Location) error {
	w.OnChange(func(s widget.State) {
		if s.Loading {
			fmt.Fprintln(out, display.Render(widget.Render(s, loc)))
		}
	})

	for {
		answer, err := ask()
		if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "👋 Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read symbol: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "exit", "quit":
			fmt.Fprintln(out, "👋 Goodbye!")
			return nil
		}

		w.SetSymbol(answer)
		if !w.Submit(ctx) {
			continue
		}

		fmt.Fprintln(out, display.Render(widget.Render(w.State(), loc)))
		fmt.Fprintln(out)
	}
}
