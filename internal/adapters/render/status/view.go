package status

import (
	"fmt"
	"math"
	"strings"

	"github.com/bnema/classcall/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const DefaultBarWidth = 24

type RenderOptions struct {
	BarWidth int
}

func renderView(c card, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("Class Call")}

	if c.phase == phaseIdle {
		lines = append(lines, s.empty.Render("No active Class Call."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	snapshot := c.snapshot
	lines = append(lines,
		s.header.Render(fmt.Sprintf("roster: %s  format: %s", snapshot.ID, snapshot.Format)),
		s.header.Render(fmt.Sprintf("slots: %d/%d", len(snapshot.Entries), domain.MaxSlot)),
		stateLine(c, opts, s),
		s.section.Render(renderEntries(snapshot.Entries, s)),
		s.section.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			s.detail.Render("mode: "+orDash(snapshot.Mode)),
			s.detail.Render("leader: "+orDash(snapshot.Leader)),
		)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func stateLine(c card, opts RenderOptions, s styles) string {
	switch c.phase {
	case phaseLocked:
		return s.warning.Render("locked")
	case phaseWaiting:
		return lipgloss.JoinHorizontal(lipgloss.Top, s.open.Render("open"), " ", s.empty.Render("(waiting for the first call)"))
	}

	width := opts.BarWidth
	if width <= 0 {
		width = DefaultBarWidth
	}
	leftStyle := lipgloss.NewStyle().Foreground(interpolateColor(c.percentLeft, 0, 100))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.open.Render("open"),
		" ",
		s.timerKey.Render("lock timer:"),
		" ",
		renderProgressBar(c.percentLeft, width, s),
		" ",
		leftStyle.Render(fmt.Sprintf("%ds left", c.secondsLeft)),
	)
}

func renderEntries(entries []domain.SlotEntry, s styles) string {
	if len(entries) == 0 {
		return s.empty.Render("No slots claimed.")
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts := []string{
			s.slot.Render(fmt.Sprintf("%d", entry.Position)),
			" ",
			s.name.Render(entry.Name),
			" ",
			s.caller.Render(entry.Caller),
		}
		if entry.Status != "" {
			parts = append(parts, " ", statusStyle(entry.Status, s).Render(entry.Status))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statusStyle(status string, s styles) lipgloss.Style {
	if strings.Contains(status, domain.CloseMarker) {
		return s.warning
	}
	return s.detail
}

func renderProgressBar(percentLeft float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percentLeft) / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	colorCode := int(240.0 + 15.0*normalized)
	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
