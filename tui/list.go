package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mickamy/apiwire/highlight"
)

func activityStatus(a Activity) string {
	if a.Error != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("E")
	}
	return ""
}

// Column widths.
const (
	colMarker   = 2 // "▶ " or "  "
	colKind     = 11
	colDuration = 10
	colTime     = 12
	colStatus   = 4
)

func (m Model) renderList(maxRows int) string {
	innerWidth := max(m.width-4, 20)
	colQuery := max(innerWidth-colMarker-colKind-colDuration-colTime-colStatus-4, 10)

	var title string
	if m.searchQuery != "" || m.filterQuery != "" {
		title = fmt.Sprintf(" apiwire watch (%d/%d) ", len(m.rows), len(m.activities))
	} else {
		title = fmt.Sprintf(" apiwire watch (%d) ", len(m.activities))
	}
	if m.sortMode == sortDuration {
		title += "[slow] "
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth)

	dataRows := max(maxRows-1, 1) // -1 for header row

	start := 0
	if len(m.rows) > dataRows {
		start = max(m.cursor-dataRows/2, 0)
		if start+dataRows > len(m.rows) {
			start = len(m.rows) - dataRows
		}
	}
	end := min(start+dataRows, len(m.rows))

	header := fmt.Sprintf("  %-*s %-*s %*s %*s %-*s",
		colKind, "Kind",
		colQuery, "Query",
		colDuration, "Duration",
		colTime, "Time",
		colStatus, "",
	)

	var rows []string
	rows = append(rows, lipgloss.NewStyle().Bold(true).Render(header))
	for i := start; i < end; i++ {
		rows = append(rows, m.renderActivityRow(i, i == m.cursor, colQuery))
	}

	borderColor := lipgloss.Color("240")
	border = border.BorderForeground(borderColor)
	content := strings.Join(rows, "\n")

	box := border.Render(content)
	lines := strings.Split(box, "\n")
	if len(lines) > 0 {
		borderFg := lipgloss.NewStyle().Foreground(borderColor)
		titleStyle := lipgloss.NewStyle().Bold(true)
		dashes := max(innerWidth-len([]rune(title)), 0)
		lines[0] = borderFg.Render("╭") +
			titleStyle.Render(title) +
			borderFg.Render(strings.Repeat("─", dashes)+"╮")
		box = strings.Join(lines, "\n")
	}

	return box
}

func (m Model) renderActivityRow(rowIdx int, isCursor bool, colQuery int) string {
	a := m.activities[m.rows[rowIdx]]
	marker := "  "
	if isCursor {
		marker = "▶ "
	}

	dur := formatDurationValue(a.duration())
	t := formatTime(a.StartTime)

	q := truncate(a.Query, colQuery)
	if q == "" {
		q = "-"
	}

	status := activityStatus(a)

	row := fmt.Sprintf("%s%-*s %-*s %*s %*s",
		marker,
		colKind, a.Kind,
		colQuery, q,
		colDuration, dur,
		colTime, t,
	) + " " + status
	if isCursor {
		row = lipgloss.NewStyle().Bold(true).Render(row)
	}
	return row
}

func (m Model) renderPreview() string {
	innerWidth := max(m.width-4, 20)

	a := m.cursorActivity()
	if a == nil {
		return ""
	}

	var lines []string
	lines = append(lines, "Kind:     "+a.Kind)

	if a.Query != "" {
		maxQueryLen := max(innerWidth-10, 20) // 10 = len("Query:    ")
		lines = append(lines, "Query:    "+highlight.Text(a.Kind, truncate(a.Query, maxQueryLen)))
	}

	lines = append(lines, "Duration: "+formatDurationValue(a.duration()))
	lines = append(lines, fmt.Sprintf("QueryID:  %d", a.QueryID))
	lines = append(lines, fmt.Sprintf("MsgID:    %d", a.MsgID))

	if a.Error != "" {
		lines = append(lines, "Error:    "+a.Error)
	}

	content := strings.Join(lines, "\n")

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth).
		BorderForeground(lipgloss.Color("240"))

	return border.Render(content)
}

func (m Model) inspectLines() []string {
	a := m.cursorActivity()
	if a == nil {
		return nil
	}

	var lines []string
	lines = append(lines, "Kind:      "+a.Kind)

	if a.Query != "" {
		lines = append(lines, "Query:")
		for l := range strings.SplitSeq(a.Query, "\n") {
			lines = append(lines, "  "+highlight.Text(a.Kind, strings.TrimSpace(l)))
		}
	}

	lines = append(lines, "Duration:  "+formatDurationValue(a.duration()))
	lines = append(lines, "Time:      "+formatTimeFull(a.StartTime))
	lines = append(lines, fmt.Sprintf("QueryID:   %d", a.QueryID))
	lines = append(lines, fmt.Sprintf("MsgID:     %d", a.MsgID))
	lines = append(lines, fmt.Sprintf("KeepAlive: %v", a.KeepAlive))

	if a.Error != "" {
		lines = append(lines, "Error:     "+a.Error)
	}

	return lines
}

func (m Model) inspectVisibleRows() int {
	return max(m.height-2, 3) // -2 for top/bottom border
}

func (m Model) renderInspector() string {
	innerWidth := max(m.width-4, 20)
	visibleRows := m.inspectVisibleRows()

	lines := m.inspectLines()
	if lines == nil {
		return ""
	}

	maxScroll := max(len(lines)-visibleRows, 0)
	if m.inspectScroll > maxScroll {
		m.inspectScroll = maxScroll
	}

	end := min(m.inspectScroll+visibleRows, len(lines))
	visible := lines[m.inspectScroll:end]
	content := strings.Join(visible, "\n")

	borderColor := lipgloss.Color("240")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth).
		BorderForeground(borderColor).
		Render(content)

	boxLines := strings.Split(box, "\n")
	if len(boxLines) > 0 {
		borderFg := lipgloss.NewStyle().Foreground(borderColor)
		titleStyle := lipgloss.NewStyle().Bold(true)
		title := " Inspector "
		dashes := max(innerWidth-len([]rune(title)), 0)
		boxLines[0] = borderFg.Render("╭") +
			titleStyle.Render(title) +
			borderFg.Render(strings.Repeat("─", dashes)+"╮")
	}

	if n := len(boxLines); n > 0 {
		borderFg := lipgloss.NewStyle().Foreground(borderColor)
		help := " q: back  j/k: scroll  c: copy query "
		dashes := max(innerWidth-len([]rune(help)), 0)
		boxLines[n-1] = borderFg.Render("╰") +
			lipgloss.NewStyle().Faint(true).Render(help) +
			borderFg.Render(strings.Repeat("─", dashes)+"╯")
	}

	return strings.Join(boxLines, "\n")
}
