package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Unfocused tables still highlight row 0 unless Selected matches Cell.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string for CLI output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return NewTable(columns, tableRows).View()
}

// CheckRow is one line of a pass/warn/fail report.
type CheckRow struct {
	Status     string // "pass", "warn", "fail"
	Message    string
	Suggestion string
}

// RenderChecks renders check results one per line, with suggestions
// indented under anything that did not pass.
func RenderChecks(rows []CheckRow) string {
	if len(rows) == 0 {
		return "No checks to display\n"
	}

	var b strings.Builder
	for _, row := range rows {
		var icon string
		switch row.Status {
		case "pass":
			icon = SuccessStyle().Render(SymbolSuccess)
		case "warn":
			icon = WarningStyle().Render(SymbolWarning)
		case "fail":
			icon = ErrorStyle().Render(SymbolFail)
		default:
			icon = MutedStyle().Render(SymbolPending)
		}

		b.WriteString("  " + icon + " " + row.Message + "\n")
		if row.Suggestion != "" && row.Status != "pass" {
			b.WriteString("    " + MutedStyle().Render(row.Suggestion) + "\n")
		}
	}
	return b.String()
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}

// RenderKeyValues renders aligned "key  value" pairs in the given order.
func RenderKeyValues(keys []string, values map[string]string) string {
	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}

	keyStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString("  " + keyStyle.Render(padRight(k, width)) + "  " + values[k] + "\n")
	}
	return b.String()
}
