package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan  = lipgloss.Color("36")  // teal - primary actions
	colorGreen = lipgloss.Color("35")  // green - success
	colorRed   = lipgloss.Color("167") // soft red - errors
	colorDim   = lipgloss.Color("240") // dim gray - muted text
)

var (
	styleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	styleError     = lipgloss.NewStyle().Foreground(colorRed)
	styleDim       = lipgloss.NewStyle().Foreground(colorDim)
	styleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
)

// printSuccess prints a green checkmark line to stdout.
func printSuccess(format string, args ...any) {
	fmt.Printf("%s %s\n", styleSuccess.Render("✓"), fmt.Sprintf(format, args...))
}

// printError prints a red cross line to stdout.
func printError(format string, args ...any) {
	fmt.Printf("%s %s\n", styleError.Render("✗"), fmt.Sprintf(format, args...))
}

// printInfo prints a plain line to stdout.
func printInfo(format string, args ...any) {
	fmt.Printf("%s\n", fmt.Sprintf(format, args...))
}

// printDetail prints a dimmed, indented detail line to stdout.
func printDetail(format string, args ...any) {
	fmt.Printf("  %s\n", styleDim.Render(fmt.Sprintf(format, args...)))
}

// printKV prints an aligned key-value pair with a highlighted value.
func printKV(key string, value any) {
	fmt.Printf("  %-12s %s\n", key, styleHighlight.Render(fmt.Sprint(value)))
}
