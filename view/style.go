package view

import "github.com/charmbracelet/lipgloss"

// Style holds the lipgloss styles of the session screen.
type Style struct {
	Base      lipgloss.Style
	Title     lipgloss.Style
	Work      lipgloss.Style
	Break     lipgloss.Style
	Clock     lipgloss.Style
	Secondary lipgloss.Style
	Hint      lipgloss.Style
	Done      lipgloss.Style
	Pending   lipgloss.Style
	Error     lipgloss.Style
}

// NewStyle returns the styles for a dark or light terminal.
func NewStyle(dark bool) Style {
	fg := lipgloss.Color("#1F2328")
	muted := lipgloss.Color("#57606A")

	if dark {
		fg = lipgloss.Color("#FAFAFA")
		muted = lipgloss.Color("#8B949E")
	}

	label := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		MarginRight(1).
		Foreground(lipgloss.Color("#FFFFFF"))

	return Style{
		Base:      lipgloss.NewStyle().Padding(1, padding),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(fg),
		Work:      label.Background(lipgloss.Color("#D1242F")).SetString("FOCUS"),
		Break:     label.Background(lipgloss.Color("#1A7F37")).SetString("BREAK"),
		Clock:     lipgloss.NewStyle().Bold(true).Foreground(fg),
		Secondary: lipgloss.NewStyle().Foreground(fg),
		Hint:      lipgloss.NewStyle().Foreground(muted),
		Done:      lipgloss.NewStyle().Foreground(lipgloss.Color("#2DA44E")),
		Pending:   lipgloss.NewStyle().Foreground(lipgloss.Color("#BF8700")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#CF222E")),
	}
}
