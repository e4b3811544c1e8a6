package cli

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/StockLens/internal/widget"
)

// PromptForSymbol asks for the next symbol. Blank answers are allowed; the
// widget treats them as a no-op.
func PromptForSymbol() (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "Stock symbol:",
		Help:    widget.Placeholder + ". Type 'exit' to quit.",
	}

	if err := survey.AskOne(prompt, &symbol); err != nil {
		return "", err
	}
	return symbol, nil
}
