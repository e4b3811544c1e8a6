// Package display renders widget views for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/StockLens/internal/format"
	"github.com/dyike/StockLens/internal/widget"
)

const (
	Title    = "📈 Stock Analyzer AI"
	Subtitle = "Get AI-powered bullish and bearish analysis for any stock"

	panelWidth = 76
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Italic(true).
			Padding(0, 1).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2).
			Width(panelWidth)

	symbolStyle = lipgloss.NewStyle().Bold(true)

	priceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB"))

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	bullishStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(0, 1).
			Width(panelWidth)

	bearishStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#EF4444")).
			Padding(0, 1).
			Width(panelWidth)

	errorStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#EF4444")).
			Foreground(lipgloss.Color("#EF4444")).
			Padding(0, 2).
			Width(panelWidth)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)
)

// Banner is the terminal counterpart of the page header.
func Banner() string {
	return titleStyle.Render(Title) + "\n" + subtitleStyle.Render(Subtitle)
}

// Render draws whichever panel the view carries: the loading line, the error
// panel or the result panels. Idle views render as an empty string.
func Render(v widget.View) string {
	switch {
	case v.Phase == widget.PhaseLoading:
		return loadingStyle.Render("⏳ " + v.SubmitLabel)
	case v.Error != "":
		return renderError(v.Error)
	case v.Result != nil:
		return renderResult(v.Result)
	default:
		return ""
	}
}

func renderError(message string) string {
	return errorStyle.Render("❌ Error\n\n" + message)
}

func renderResult(r *widget.ResultView) string {
	changeStyle := positiveStyle
	if r.ChangeClass == format.ClassNegative {
		changeStyle = negativeStyle
	}

	header := fmt.Sprintf("%s\n%s  %s\n%s",
		symbolStyle.Render(r.Symbol),
		priceStyle.Render(r.Price),
		changeStyle.Render(r.Change),
		mutedStyle.Render("Last updated: "+r.LastUpdated),
	)

	sections := []string{
		headerStyle.Render(header),
		bullishStyle.Render("🟢 Bullish Views\n\n" + bulletList(r.Bullish)),
		bearishStyle.Render("🔴 Bearish Views\n\n" + bulletList(r.Bearish)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return mutedStyle.Render("(none)")
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

// DisplayInfo prints an informational line.
func DisplayInfo(message string) {
	fmt.Println(mutedStyle.Render("ℹ️  " + message))
}

// DisplayWarning prints a warning line.
func DisplayWarning(message string) {
	fmt.Println(loadingStyle.Render("⚠️  " + message))
}
