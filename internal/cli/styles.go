// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color (ledger green).
	PrimaryColor = lipgloss.Color("#2EC27E")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// AmountStyle formats monetary values.
	AmountStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// NegativeStyle formats negative monetary values.
	NegativeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ErrorColor)
)

// Success formats a success message with a checkmark.
func Success(msg string) string {
	return SuccessStyle.Render("✓ " + msg)
}

// Error formats an error message with a cross.
func Error(msg string) string {
	return ErrorStyle.Render("✗ " + msg)
}

// Warning formats a warning message.
func Warning(msg string) string {
	return WarningStyle.Render("⚠ " + msg)
}

// Amount renders a monetary value, red when negative.
func Amount(formatted string, negative bool) string {
	if negative {
		return NegativeStyle.Render(formatted)
	}
	return AmountStyle.Render(formatted)
}
