package monitor

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/sensor"
	"github.com/rileyhilliard/watchdog/internal/ui"
)

// Card layout constants
const (
	cardWidth    = 40
	cardMinWidth = 24
)

// cardDividerStyle creates a subtle divider line with matching background
var cardDividerStyle = lipgloss.NewStyle().
	Foreground(ColorBorder)

// renderCardDivider creates a subtle thin divider line
func renderCardDivider(width int) string {
	return cardDividerStyle.Render(strings.Repeat("─", width))
}

// LastAlertText returns the metric's last delivered alert message, or "None".
func LastAlertText(ms MetricSnapshot) string {
	if ms.State.LastAlertMessage == "" {
		return "None"
	}
	return ms.State.LastAlertMessage
}

// AlertLine is the one-line alert summary, e.g.
// "[30% - 70%] Last humidity alert: None".
func AlertLine(ms MetricSnapshot) string {
	return rangeLabel(ms) + " Last " + ms.Metric.String() + " alert: " + LastAlertText(ms)
}

func rangeLabel(ms MetricSnapshot) string {
	if !ms.HasRule {
		return "[no limit]"
	}
	return ms.Rule.RangeLabel()
}

// formatStat formats min/avg/max. Averages are rounded to one decimal.
func formatStat(m sensor.Metric, v float64) string {
	return m.FormatValue(math.Round(v*10) / 10)
}

// truncate shortens s to max runes, ending with an ellipsis when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 1 || len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// justify places left and right on one line of the given width.
func justify(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderCard renders a single metric card.
func (m Model) renderCard(ms MetricSnapshot, width int) string {
	state := StateOf(ms)
	color := StateColor(state)

	style := CardStyle.Width(width)
	if state == StateAlerting || state == StateDeliveryFailed {
		style = CardAlertStyle.Width(width)
	}

	// Inner width for content (account for card padding and border)
	innerWidth := width - 4
	stateStyle := lipgloss.NewStyle().Foreground(color)

	var lines []string

	title := MetricNameStyle.Render(ms.Metric.Title())
	status := stateStyle.Render(StateGlyph(state) + " " + state.String())
	lines = append(lines, justify(title, status, innerWidth))
	lines = append(lines, renderCardDivider(innerWidth))

	value := MutedStyle.Render("--")
	if ms.HasLatest {
		value = stateStyle.Bold(true).Render(ms.Metric.FormatValue(ms.Latest))
	}
	lines = append(lines, justify(value, LabelStyle.Render(rangeLabel(ms)), innerWidth))

	if len(ms.Values) > 0 {
		lines = append(lines, ui.RenderSparkline(ms.Values, innerWidth, color))
		lines = append(lines, MutedStyle.Render(truncate(
			"min "+formatStat(ms.Metric, ms.Stats.Min)+
				"  avg "+formatStat(ms.Metric, ms.Stats.Avg)+
				"  max "+formatStat(ms.Metric, ms.Stats.Max),
			innerWidth)))
	} else {
		lines = append(lines, MutedStyle.Render("no data yet"), "")
	}

	lines = append(lines, renderCardDivider(innerWidth))
	lines = append(lines, LabelStyle.Render("Last "+ms.Metric.String()+" alert:"))
	lines = append(lines, truncate(LastAlertText(ms), innerWidth))

	if ms.State.LastFailure != nil {
		msg := "✗ not delivered: " + errors.Short(ms.State.LastFailure)
		lines = append(lines, ErrorLineStyle.Render(truncate(msg, innerWidth)))
	}

	return style.Render(strings.Join(lines, "\n"))
}

// renderMinimalRow renders one metric as a single line for narrow terminals.
func (m Model) renderMinimalRow(ms MetricSnapshot) string {
	state := StateOf(ms)
	stateStyle := lipgloss.NewStyle().Foreground(StateColor(state))

	value := "--"
	if ms.HasLatest {
		value = ms.Metric.FormatValue(ms.Latest)
	}

	row := stateStyle.Render(StateGlyph(state)) + " " +
		MetricNameStyle.Render(ms.Metric.Title()) + " " +
		stateStyle.Render(value) + " " +
		LabelStyle.Render(AlertLine(ms))
	if m.width > 0 {
		return truncateStyled(row, m.width)
	}
	return row
}

// truncateStyled cuts a styled line to width visible cells.
func truncateStyled(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
