package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	origOut, origErr := Stdout, Stderr
	Stdout, Stderr = &out, &errOut
	t.Cleanup(func() { Stdout, Stderr = origOut, origErr })
	return &out, &errOut
}

func TestPrintHelpers(t *testing.T) {
	out, errOut := captureOutput(t)

	PrintSuccess("saved %s", ".watchdog.yaml")
	PrintWarning("no api_key set")
	PrintInfo("listening on %s", ":9108")

	assert.Contains(t, out.String(), SymbolSuccess)
	assert.Contains(t, out.String(), "saved .watchdog.yaml")
	assert.Contains(t, out.String(), "listening on :9108")
	assert.Contains(t, errOut.String(), SymbolWarning)
	assert.Contains(t, errOut.String(), "no api_key set")
}

func TestStylesAreFunctional(t *testing.T) {
	for name, style := range map[string]func() string{
		"success": func() string { return SuccessStyle().Render("x") },
		"error":   func() string { return ErrorStyle().Render("x") },
		"warning": func() string { return WarningStyle().Render("x") },
		"info":    func() string { return InfoStyle().Render("x") },
		"muted":   func() string { return MutedStyle().Render("x") },
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, style(), "x")
		})
	}

	assert.NotPanics(t, DisableColors)
}

func TestRenderSimpleTable(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "PORT", Width: 10}}, nil))

	out := stripANSI(RenderSimpleTable(
		[]TableColumn{{Title: "PORT", Width: 14}, {Title: "PRODUCT", Width: 12}},
		[][]string{{"/dev/ttyUSB0", "CP2102"}, {"/dev/ttyACM0", "Uno"}},
	))
	assert.Contains(t, out, "PORT")
	assert.Contains(t, out, "/dev/ttyUSB0")
	assert.Contains(t, out, "CP2102")
	assert.Contains(t, out, "/dev/ttyACM0")
}

func TestRenderChecks(t *testing.T) {
	out := RenderChecks([]CheckRow{
		{Status: "pass", Message: "config is valid", Suggestion: "hidden"},
		{Status: "warn", Message: "api_key not set", Suggestion: "Alerts will only be logged"},
		{Status: "fail", Message: "port missing", Suggestion: "Set 'port'"},
	})

	assert.Contains(t, out, SymbolSuccess+" config is valid")
	assert.NotContains(t, out, "hidden", "passing checks have no suggestion")
	assert.Contains(t, out, "Alerts will only be logged")
	assert.Contains(t, out, SymbolFail+" port missing")

	assert.Equal(t, "No checks to display\n", RenderChecks(nil))
}

func TestRenderKeyValues(t *testing.T) {
	out := stripANSI(RenderKeyValues(
		[]string{"port", "baud_rate"},
		map[string]string{"port": "/dev/ttyUSB0", "baud_rate": "9600"},
	))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "  port       /dev/ttyUSB0", lines[0])
	assert.Equal(t, "  baud_rate  9600", lines[1])
}

func TestRenderHeader(t *testing.T) {
	out := stripANSI(RenderHeader(HeaderInfo{Version: "v1.0.0", Source: "replay: stdin"}))
	assert.Contains(t, out, "watchdog v1.0.0")
	assert.Contains(t, out, "replay: stdin")
	assert.Contains(t, out, strings.Repeat("━", HeaderWidth))
}

func TestSpinner_Lifecycle(t *testing.T) {
	var mu sync.Mutex
	var buf strings.Builder
	s := NewSpinner("Sending test notification")
	s.SetOutput(func(out string) {
		mu.Lock()
		defer mu.Unlock()
		buf.WriteString(out)
	})

	assert.Equal(t, SpinnerPending, s.State())
	s.Start()
	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	s.Success()
	assert.Equal(t, SpinnerSuccess, s.State())

	mu.Lock()
	out := buf.String()
	mu.Unlock()
	assert.Contains(t, out, "Sending test notification")
	assert.Contains(t, out, SymbolSuccess)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestSpinner_Fail(t *testing.T) {
	var buf strings.Builder
	s := NewSpinner("Opening port")
	s.SetOutput(func(out string) { buf.WriteString(out) })
	s.Fail()

	assert.Equal(t, SpinnerFailed, s.State())
	assert.Contains(t, buf.String(), SymbolFail)
}

func TestSpinnerComponent(t *testing.T) {
	c := NewSpinnerComponent("Waiting for sensor data")
	assert.Contains(t, c.View(), "Waiting for sensor data")
	assert.NotContains(t, c.View(), "...")

	cmd := c.Start()
	assert.NotNil(t, cmd)
	assert.True(t, c.Active)
	assert.Contains(t, c.View(), "Waiting for sensor data...")

	c.Stop()
	next, cmd := c.Update(nil)
	assert.Nil(t, cmd)
	assert.False(t, next.Active)
}
