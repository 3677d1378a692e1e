package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-trend/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	bullishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	bearishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// FormatDirection renders a verdict with an arrow. Instruments still warming up show a dash.
func FormatDirection(direction types.Direction, ready bool) string {
	if !ready {
		return "-"
	}

	switch direction {
	case types.DirectionBullish:
		return bullishStyle.Render("▲ bullish")
	case types.DirectionBearish:
		return bearishStyle.Render("▼ bearish")
	default:
		return string(types.DirectionNone)
	}
}
