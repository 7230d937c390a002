package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

type Format string

const (
	FormatDefault Format = "default"
	FormatGrid    Format = "grid"
)

const (
	modeLabel   = "Mode:"
	leaderLabel = "Leader:"
)

var gridHeader = []string{"#", "Class", "Caller", "Status"}

func Formats() []Format {
	return []Format{FormatDefault, FormatGrid}
}

func ParseFormat(value string) (Format, error) {
	switch Format(strings.TrimSpace(value)) {
	case FormatDefault:
		return FormatDefault, nil
	case FormatGrid:
		return FormatGrid, nil
	default:
		return "", fmt.Errorf("%w %q, possible formats: %s, %s", ErrInvalidFormat, value, FormatDefault, FormatGrid)
	}
}

// Export renders the roster in the given format. Unknown formats fall back
// to the default rendering.
func (r *Roster) Export(format Format) string {
	if format == FormatGrid {
		return r.renderGrid()
	}
	return r.renderDefault()
}

func (r *Roster) renderDefault() string {
	lines := make([]string, 0, len(r.entries)+1)
	for _, entry := range r.entries {
		fields := []string{strconv.Itoa(entry.Position), entry.Name, entry.Caller}
		if entry.Status != "" {
			fields = append(fields, entry.Status)
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	lines = append(lines, r.trailer())

	return strings.Join(lines, "\n")
}

func (r *Roster) renderGrid() string {
	rows := make([][]string, 0, MaxSlot)
	for position := MinSlot; position <= MaxSlot; position++ {
		entry, _ := r.Entry(position)
		rows = append(rows, []string{strconv.Itoa(position), entry.Name, entry.Caller, entry.Status})
	}

	widths := make([]int, len(gridHeader))
	for i, cell := range gridHeader {
		widths[i] = runewidth.StringWidth(cell)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}

	lines := make([]string, 0, len(rows)+3)
	lines = append(lines, gridLine(gridHeader, widths), strings.Join(rule, "-+-"))
	for _, row := range rows {
		lines = append(lines, gridLine(row, widths))
	}
	lines = append(lines, r.trailer())

	return strings.Join(lines, "\n")
}

func gridLine(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = runewidth.FillRight(cell, widths[i])
	}
	return strings.TrimRight(strings.Join(padded, " | "), " ")
}

func (r *Roster) trailer() string {
	parts := []string{modeLabel}
	if r.Mode != "" {
		parts = append(parts, r.Mode)
	}
	parts = append(parts, leaderLabel)
	if r.Leader != "" {
		parts = append(parts, r.Leader)
	}
	return strings.Join(parts, " ")
}
