package monitor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/ui"
)

// LayoutMode represents the responsive layout mode based on terminal size.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: values only, no graphs
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-120 columns: single column of cards
	LayoutCompact
	// LayoutStandard is for terminals 120-160 columns: two cards per row
	LayoutStandard
	// LayoutWide is for terminals 160+ columns: all cards on one or two rows
	LayoutWide
)

// Width breakpoints for layout modes
const (
	BreakpointCompact  = 80
	BreakpointStandard = 120
	BreakpointWide     = 160
)

// Messages the CLI sends into a running program with tea.Program.Send.
type (
	// TransportErrorMsg reports a failed open or read. The loop reconnects.
	TransportErrorMsg struct{ Err error }
	// ConnectedMsg reports that the source was (re)opened.
	ConnectedMsg struct{}
	// LoopDoneMsg reports that the loop returned, e.g. a replay reached EOF.
	LoopDoneMsg struct{ Err error }
)

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// Model is the Bubble Tea model for the sensor dashboard. It reads from the
// session via snapshots; the loop feeding the session runs elsewhere.
type Model struct {
	session  *Session
	source   string
	snapshot Snapshot
	interval time.Duration
	width    int
	height   int
	quitting bool
	paused   bool
	showHelp bool

	connected     bool
	reconnects    int
	lastError     string
	lastErrorTime time.Time
	done          bool

	spinner ui.SpinnerComponent
}

// NewModel creates a dashboard for session. source describes the input for
// the header; interval is the redraw period.
func NewModel(session *Session, source string, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second
	}
	m := Model{
		session:  session,
		source:   source,
		interval: interval,
		spinner:  ui.NewSpinnerComponent("Waiting for sensor data"),
	}
	m.spinner.Start()
	m.refresh()
	return m
}

// Init starts the refresh ticker and the waiting spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.spinner.Tick())
}

// Update handles incoming messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if !m.paused {
			m.refresh()
		}
		return m, m.tickCmd()

	case TransportErrorMsg:
		m.connected = false
		m.lastError = errors.Short(msg.Err)
		m.lastErrorTime = time.Now()

	case ConnectedMsg:
		if m.connected || m.lastError != "" {
			m.reconnects++
		}
		m.connected = true
		m.lastError = ""

	case LoopDoneMsg:
		m.done = true
		m.connected = false
		if msg.Err != nil {
			m.lastError = errors.Short(msg.Err)
		}
		m.refresh()

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh takes a new snapshot and stops the spinner once data arrives.
func (m *Model) refresh() {
	m.snapshot = m.session.Snapshot()
	if m.spinner.Active && m.hasData() {
		m.spinner.Stop()
	}
}

func (m Model) hasData() bool {
	for _, ms := range m.snapshot.Metrics {
		if ms.HasLatest {
			return true
		}
	}
	return false
}

// Paused reports whether the display is frozen.
func (m Model) Paused() bool {
	return m.paused
}

// LayoutMode returns the current layout mode based on terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointStandard:
		return LayoutStandard
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}
