package doctor

import (
	"fmt"
	"os"
	"time"

	"github.com/rileyhilliard/watchdog/internal/lock"
	"github.com/rileyhilliard/watchdog/internal/transport"
	"github.com/rileyhilliard/watchdog/internal/util"
)

// listPorts is replaced in tests.
var listPorts = transport.ListPorts

// standardBaudRates are the rates the Arduino core supports out of the box.
var standardBaudRates = map[int]bool{
	300: true, 1200: true, 2400: true, 4800: true, 9600: true, 19200: true,
	38400: true, 57600: true, 74880: true, 115200: true, 230400: true,
	250000: true, 500000: true, 1000000: true, 2000000: true,
}

// SourceCheck verifies that the configured input exists: the replay file, or
// the serial device.
type SourceCheck struct {
	Target *Target
}

func (c *SourceCheck) Name() string     { return "serial_source" }
func (c *SourceCheck) Category() string { return "SERIAL" }

func (c *SourceCheck) Run() CheckResult {
	cfg := c.Target.Config
	if cfg == nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: "Cannot check serial source: config load error",
		}
	}

	if cfg.Replay != "" {
		if cfg.Replay == "-" {
			return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Replaying from stdin"}
		}
		if _, err := os.Stat(cfg.Replay); err != nil {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusFail,
				Message:    fmt.Sprintf("Replay file not readable: %s", cfg.Replay),
				Suggestion: "Check the 'replay' path, or clear it to read the serial port",
			}
		}
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Replaying " + cfg.Replay}
	}

	if cfg.Port == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "No serial port configured",
			Suggestion: "Run 'watchdog ports' to find the board, then 'watchdog config set port <device>'",
		}
	}

	ports, err := listPorts()
	if err == nil {
		for _, p := range ports {
			if p.Name == cfg.Port {
				msg := "Serial port found: " + p.Name
				if p.IsUSB && p.Product != "" {
					msg += " (" + p.Product + ")"
				}
				return CheckResult{Name: c.Name(), Status: StatusPass, Message: msg}
			}
		}
	}

	// Symlinks such as /dev/serial/by-id/... are not in the enumerated list.
	if _, statErr := os.Stat(cfg.Port); statErr == nil {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Serial port found: " + cfg.Port}
	}

	suggestion := "Plug the board in, or run 'watchdog ports' to see available devices"
	if err == nil && len(ports) > 0 {
		suggestion = fmt.Sprintf("Available: %s", portNames(ports))
	}
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusFail,
		Message:    fmt.Sprintf("Serial port not found: %s", cfg.Port),
		Suggestion: suggestion,
	}
}

func (c *SourceCheck) Fix() error {
	return nil
}

func portNames(ports []transport.PortInfo) string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return util.JoinOrNone(names)
}

// BaudRateCheck warns about rates the firmware is unlikely to use.
type BaudRateCheck struct {
	Target *Target
}

func (c *BaudRateCheck) Name() string     { return "baud_rate" }
func (c *BaudRateCheck) Category() string { return "SERIAL" }

func (c *BaudRateCheck) Run() CheckResult {
	cfg := c.Target.Config
	if cfg == nil || cfg.Replay != "" {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Baud rate not used"}
	}
	if !standardBaudRates[cfg.BaudRate] {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Unusual baud rate: %d", cfg.BaudRate),
			Suggestion: "It must match Serial.begin() in the sketch, usually 9600",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Baud rate: %d", cfg.BaudRate),
	}
}

func (c *BaudRateCheck) Fix() error {
	return nil
}

// PortLockCheck warns when another watchdog already holds the port.
type PortLockCheck struct {
	Target *Target
}

func (c *PortLockCheck) Name() string     { return "port_lock" }
func (c *PortLockCheck) Category() string { return "SERIAL" }

func (c *PortLockCheck) Run() CheckResult {
	cfg := c.Target.Config
	if cfg == nil || cfg.Replay != "" || cfg.Port == "" {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Port lock not needed"}
	}

	holder := lock.Holder(c.Target.LockDir, cfg.Port)
	if holder == nil {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Serial port not in use by another watchdog"}
	}
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    fmt.Sprintf("%s in use by %s for %s", cfg.Port, holder, holder.Age().Round(time.Second)),
		Suggestion: "Stop that instance before starting another; both would get partial lines",
	}
}

func (c *PortLockCheck) Fix() error {
	return nil
}
