package config

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/watchdog/internal/alert"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/sensor"
)

const (
	// MinPollInterval keeps the loop from spinning on the port.
	MinPollInterval = 50 * time.Millisecond
	// MaxPollInterval keeps the dashboard from looking frozen.
	MaxPollInterval = time.Minute
	// MaxBufferCapacity bounds memory per metric.
	MaxBufferCapacity = 100000
)

// ValidationOption controls validation behavior.
type ValidationOption func(*validationContext)

type validationContext struct {
	requireSource bool
}

// RequireSource makes Validate insist on a serial port or replay file. Commands
// that only parse or notify don't need one.
func RequireSource() ValidationOption {
	return func(c *validationContext) {
		c.requireSource = true
	}
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config, opts ...ValidationOption) error {
	ctx := &validationContext{}
	for _, opt := range opts {
		opt(ctx)
	}

	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	// Check version
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but watchdog only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade watchdog or lower 'version' in .watchdog.yaml.")
	}

	if ctx.requireSource && cfg.Port == "" && cfg.Replay == "" {
		return errors.New(errors.ErrConfig,
			"No serial port configured",
			"Set 'port' in .watchdog.yaml (e.g. /dev/ttyUSB0), pass --port, or use --replay <file>. 'watchdog ports' lists devices.")
	}

	if cfg.BaudRate <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("baud_rate must be positive, got %d", cfg.BaudRate),
			fmt.Sprintf("Use the rate from the firmware's Serial.begin(), usually %d.", DefaultBaudRate))
	}

	if _, err := cfg.EnabledMetrics(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid 'metrics' list",
			"Valid metrics are: "+strings.Join(DefaultMetrics(), ", "))
	}

	if err := validateThresholds(cfg.Thresholds); err != nil {
		return err
	}

	if cfg.CooldownSeconds < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("cooldown_seconds can't be negative, got %d", cfg.CooldownSeconds),
			"Use 0 to alert on every triggering reading, or e.g. 300 for five minutes.")
	}

	if cfg.BufferCapacity < 1 || cfg.BufferCapacity > MaxBufferCapacity {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("buffer_capacity must be between 1 and %d, got %d", MaxBufferCapacity, cfg.BufferCapacity),
			"The default of 100 keeps about 100 seconds of history at a 1s poll interval.")
	}

	if cfg.PollInterval < MinPollInterval || cfg.PollInterval > MaxPollInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("poll_interval %s is out of range", cfg.PollInterval),
			fmt.Sprintf("Use a value between %s and %s, like '1s' or '100ms'.", MinPollInterval, MaxPollInterval))
	}

	if cfg.ReconnectBackoff <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("reconnect_backoff must be positive, got %s", cfg.ReconnectBackoff),
			"Use a duration like '5s'.")
	}

	if cfg.RetryBackoff < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("retry_backoff can't be negative, got %s", cfg.RetryBackoff),
			"Use a duration like '30s'.")
	}

	if err := validateParser(cfg.Parser); err != nil {
		return err
	}

	if err := validateCapture(cfg.Capture); err != nil {
		return err
	}

	if cfg.MetricsListen != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsListen); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("metrics_listen %q is not a host:port address", cfg.MetricsListen),
				"Use something like ':9108' or '127.0.0.1:9108'.")
		}
	}

	return nil
}

// validateThresholds checks every threshold entry in name order so errors are stable.
func validateThresholds(thresholds map[string]Threshold) error {
	names := make([]string, 0, len(thresholds))
	for name := range thresholds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m, err := sensor.ParseMetric(name)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Unknown metric '%s' under 'thresholds'", name),
				"Valid metrics are: "+strings.Join(DefaultMetrics(), ", "))
		}
		th := thresholds[name]
		rule := alert.Rule{Metric: m, High: th.High, Low: th.Low, Inclusive: th.Inclusive}
		if err := rule.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateParser(p ParserConfig) error {
	if p.GasZeroFloor < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("parser.gas_zero_floor can't be negative, got %g", p.GasZeroFloor),
			"Use 0 to record gas readings of 0 as-is, or a small value like 0.1.")
	}
	for name, aliases := range p.Labels {
		if _, err := sensor.ParseMetric(name); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Unknown metric '%s' under 'parser.labels'", name),
				"Valid metrics are: "+strings.Join(DefaultMetrics(), ", "))
		}
		for _, a := range aliases {
			if strings.TrimSpace(a) == "" {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("parser.labels.%s has an empty label", name),
					"Remove the empty entry; a blank label would match every line.")
			}
		}
	}
	return nil
}

func validateCapture(c CaptureConfig) error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"capture.keep_runs", c.KeepRuns},
		{"capture.keep_days", c.KeepDays},
		{"capture.max_size_mb", c.MaxSizeMB},
	} {
		if f.value < 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s can't be negative, got %d", f.name, f.value),
				"Use 0 to turn that retention rule off.")
		}
	}
	return nil
}
