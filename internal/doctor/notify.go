package doctor

import (
	"fmt"
	"net"
)

// NotifierCheck reports whether alerts will be pushed or only logged.
type NotifierCheck struct {
	Target *Target
}

func (c *NotifierCheck) Name() string     { return "notifier" }
func (c *NotifierCheck) Category() string { return "NOTIFY" }

func (c *NotifierCheck) Run() CheckResult {
	cfg := c.Target.Config
	if cfg == nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: "Cannot check notifier: config load error",
		}
	}
	if cfg.APIKey == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No Pushbullet api_key, alerts will only be logged",
			Suggestion: "Set api_key in the config or WATCHDOG_API_KEY, then try 'watchdog notify-test'",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Pushbullet token set (%s)", cfg.Redacted().APIKey),
	}
}

func (c *NotifierCheck) Fix() error {
	return nil
}

// listen is replaced in tests.
var listen = net.Listen

// MetricsEndpointCheck verifies the Prometheus address can be bound.
type MetricsEndpointCheck struct {
	Target *Target
}

func (c *MetricsEndpointCheck) Name() string     { return "metrics_endpoint" }
func (c *MetricsEndpointCheck) Category() string { return "NOTIFY" }

func (c *MetricsEndpointCheck) Run() CheckResult {
	cfg := c.Target.Config
	if cfg == nil || cfg.MetricsListen == "" {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Metrics endpoint disabled"}
	}

	ln, err := listen("tcp", cfg.MetricsListen)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't listen on %s: %v", cfg.MetricsListen, err),
			Suggestion: "Pick a free port, or clear 'metrics_listen'",
		}
	}
	_ = ln.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Metrics endpoint available on " + cfg.MetricsListen,
	}
}

func (c *MetricsEndpointCheck) Fix() error {
	return nil
}
