package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if status := m.renderStatusLine(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderCards())

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the dashboard header with summary stats.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("watchdog")

	alerting := 0
	for _, ms := range m.snapshot.Metrics {
		if ms.Alerting() {
			alerting++
		}
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | %s | %d lines | %d alerting", m.source, m.snapshot.Lines, alerting))

	header := HeaderStyle.Render(title + stats)
	if m.paused {
		header += " " + PausedStyle.Render("PAUSED")
	}
	return header
}

// renderStatusLine shows connection problems, end of input, or the waiting
// spinner. It is empty while data is flowing normally.
func (m Model) renderStatusLine() string {
	switch {
	case m.lastError != "":
		ago := int(time.Since(m.lastErrorTime).Seconds())
		msg := fmt.Sprintf("✗ %s", m.lastError)
		if !m.done {
			msg += fmt.Sprintf(" (%ds ago, reconnecting)", ago)
		}
		return ErrorLineStyle.Render(msg)
	case m.done:
		return MutedStyle.Render("Input finished. Press q to quit.")
	case m.spinner.Active:
		return m.spinner.View()
	case m.reconnects > 0:
		return MutedStyle.Render(fmt.Sprintf("Reconnected %d time(s)", m.reconnects))
	}
	return ""
}

// renderCards renders one card per enabled metric.
func (m Model) renderCards() string {
	if len(m.snapshot.Metrics) == 0 {
		return LabelStyle.Render("No metrics enabled")
	}

	if m.LayoutMode() == LayoutMinimal && m.width > 0 {
		rows := make([]string, 0, len(m.snapshot.Metrics))
		for _, ms := range m.snapshot.Metrics {
			rows = append(rows, m.renderMinimalRow(ms))
		}
		return strings.Join(rows, "\n") + "\n"
	}

	width := m.calculateCardWidth()
	cards := make([]string, 0, len(m.snapshot.Metrics))
	for _, ms := range m.snapshot.Metrics {
		cards = append(cards, m.renderCard(ms, width))
	}
	return m.layoutCards(cards)
}

// cardsPerRow picks the grid width for the layout mode.
func (m Model) cardsPerRow() int {
	switch m.LayoutMode() {
	case LayoutWide:
		// Card plus border and margin
		if perRow := m.width / (cardWidth + 3); perRow >= 4 {
			return 4
		}
		return 2
	case LayoutStandard:
		return 2
	default:
		return 1
	}
}

// calculateCardWidth determines the card width based on terminal width.
func (m Model) calculateCardWidth() int {
	if m.width == 0 {
		return cardWidth
	}
	w := m.width/m.cardsPerRow() - 3
	if w > cardWidth+20 {
		w = cardWidth + 20
	}
	if w < cardMinWidth {
		w = cardMinWidth
	}
	return w
}

// layoutCards arranges cards in rows.
func (m Model) layoutCards(cards []string) string {
	perRow := m.cardsPerRow()
	if m.width == 0 {
		perRow = 2
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	pause := "p pause"
	if m.paused {
		pause = "p resume"
	}
	hints := []string{
		"q quit",
		pause,
		"c clear",
		"? help",
	}

	return FooterStyle.Render(strings.Join(hints, " | "))
}
