package console

import "github.com/charmbracelet/lipgloss"

type styles struct {
	bot     lipgloss.Style
	channel lipgloss.Style
	notice  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		bot:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		channel: r.NewStyle().Foreground(lipgloss.Color("241")),
		notice:  r.NewStyle().Faint(true),
	}
}
