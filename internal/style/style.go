// Package style holds the lipgloss styles gitid prints with. Colors are
// ANSI palette indexes so they follow the user's terminal theme.
package style

import "github.com/charmbracelet/lipgloss"

const (
	colorRed     = lipgloss.Color("9")
	colorGreen   = lipgloss.Color("10")
	colorYellow  = lipgloss.Color("11")
	colorBlue    = lipgloss.Color("12")
	colorMagenta = lipgloss.Color("13")
	colorCyan    = lipgloss.Color("14")
	colorGray    = lipgloss.Color("8")
)

var (
	Success = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	Error   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	Info    = lipgloss.NewStyle().Foreground(colorBlue)

	// Dim is for hints and secondary lines.
	Dim  = lipgloss.NewStyle().Foreground(colorGray)
	Bold = lipgloss.NewStyle().Bold(true)

	// Label colors an identity's tag in menus and listings.
	Label = lipgloss.NewStyle().Foreground(colorMagenta)

	// Selected marks the cursor row in the picker.
	Selected = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// Line prefixes for user-facing messages.
var (
	SuccessPrefix = Success.Render("✓")
	WarningPrefix = Warning.Render("⚠")
	ErrorPrefix   = Error.Render("✗")
	ArrowPrefix   = Info.Render("→")
)

// Tag renders a label as "[Work]".
func Tag(label string) string {
	return Label.Render("[" + label + "]")
}
