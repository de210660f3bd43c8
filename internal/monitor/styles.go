package monitor

import (
	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette - Gen Z Electric Synthwave
const (
	// Background colors
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors for readings - neon style
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	// Accent colors
	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	ColorGraph = lipgloss.Color("#00FFFF") // Neon cyan
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	// Cards whose latest value is out of range get a hot border.
	CardAlertStyle = CardStyle.
			BorderForeground(ColorCritical)

	MetricNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ErrorLineStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	PausedStyle = lipgloss.NewStyle().
			Foreground(ColorDarkBg).
			Background(ColorWarning).
			Bold(true).
			Padding(0, 1)
)

// Status indicator characters
const (
	StatusWaiting = "○"
	StatusOK      = "◉"
	StatusAlert   = "◉"
	StatusFailing = "◔" // out of range and the last delivery failed
)

// ReadingState classifies a metric for coloring.
type ReadingState int

const (
	StateNoData ReadingState = iota
	StateOK
	StateAlerting
	StateDeliveryFailed
)

// String returns the label shown next to the status glyph.
func (s ReadingState) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateAlerting:
		return "alert"
	case StateDeliveryFailed:
		return "not delivered"
	default:
		return "waiting"
	}
}

// StateOf classifies ms. A delivery failure only matters while the value
// is still out of range.
func StateOf(ms MetricSnapshot) ReadingState {
	switch {
	case !ms.HasLatest:
		return StateNoData
	case ms.Alerting() && ms.State.LastFailure != nil:
		return StateDeliveryFailed
	case ms.Alerting():
		return StateAlerting
	default:
		return StateOK
	}
}

// StateColor returns the color for a reading state.
func StateColor(s ReadingState) lipgloss.Color {
	switch s {
	case StateOK:
		return ColorHealthy
	case StateAlerting:
		return ColorCritical
	case StateDeliveryFailed:
		return ColorWarning
	default:
		return ColorTextMuted
	}
}

// StateGlyph returns the status indicator for a reading state.
func StateGlyph(s ReadingState) string {
	switch s {
	case StateOK:
		return StatusOK
	case StateAlerting:
		return StatusAlert
	case StateDeliveryFailed:
		return StatusFailing
	default:
		return StatusWaiting
	}
}
