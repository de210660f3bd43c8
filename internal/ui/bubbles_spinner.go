package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SpinnerFrames defines the animation frames (◐ ◓ ◑ ◒) for Bubble Tea programs.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

// SpinnerComponent is a Bubble Tea spinner meant to be composed into a
// larger model, e.g. while the dashboard waits for its first reading.
type SpinnerComponent struct {
	spinner spinner.Model
	Label   string
	Active  bool
}

// NewSpinnerComponent creates an inactive spinner with the given label.
func NewSpinnerComponent(label string) SpinnerComponent {
	sp := spinner.New()
	sp.Spinner = SpinnerFrames
	sp.Style = lipgloss.NewStyle().Foreground(ColorNeonCyan)

	return SpinnerComponent{
		spinner: sp,
		Label:   label,
	}
}

// Start activates the spinner and returns its first tick.
func (s *SpinnerComponent) Start() tea.Cmd {
	s.Active = true
	return s.spinner.Tick
}

// Tick returns the command that advances the animation.
func (s SpinnerComponent) Tick() tea.Cmd {
	return s.spinner.Tick
}

// Stop deactivates the spinner. Pending ticks are then ignored.
func (s *SpinnerComponent) Stop() {
	s.Active = false
}

// Update handles spinner animation messages.
func (s SpinnerComponent) Update(msg tea.Msg) (SpinnerComponent, tea.Cmd) {
	if !s.Active {
		return s, nil
	}
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(tick)
		return s, cmd
	}
	return s, nil
}

// View renders the spinner frame and label, or the label alone when inactive.
func (s SpinnerComponent) View() string {
	if !s.Active {
		return MutedStyle().Render(SymbolPending) + " " + s.Label
	}
	return s.spinner.View() + " " + s.Label + "..."
}
