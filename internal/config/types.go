package config

import (
	"time"

	"github.com/rileyhilliard/watchdog/internal/alert"
	"github.com/rileyhilliard/watchdog/internal/sensor"
	"github.com/rileyhilliard/watchdog/internal/series"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// DefaultBaudRate matches the firmware's Serial.begin(9600).
const DefaultBaudRate = 9600

// Config represents the complete .watchdog.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Port is the serial device, e.g. /dev/ttyUSB0 or COM3.
	Port string `yaml:"port" mapstructure:"port"`

	// BaudRate must match the firmware.
	BaudRate int `yaml:"baud_rate" mapstructure:"baud_rate"`

	// APIKey is the Pushbullet access token. Empty logs alerts instead of pushing them.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Metrics lists the enabled metrics. Empty enables all four.
	Metrics []string `yaml:"metrics" mapstructure:"metrics"`

	// Thresholds maps a metric name to its trigger rule. An entry replaces
	// the built-in rule for that metric entirely.
	Thresholds map[string]Threshold `yaml:"thresholds" mapstructure:"thresholds"`

	// CooldownSeconds is the minimum gap between two alerts for one metric.
	CooldownSeconds int `yaml:"cooldown_seconds" mapstructure:"cooldown_seconds"`

	// BufferCapacity is how many recent values are kept per metric.
	BufferCapacity int `yaml:"buffer_capacity" mapstructure:"buffer_capacity"`

	// PollInterval is how often the serial port is checked for new lines.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// ReconnectBackoff is the wait before reopening a failed serial port.
	ReconnectBackoff time.Duration `yaml:"reconnect_backoff" mapstructure:"reconnect_backoff"`

	// RetryBackoff is the wait before retrying a failed notification.
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`

	// Replay reads lines from a file (or "-" for stdin) instead of the serial port.
	Replay string `yaml:"replay,omitempty" mapstructure:"replay"`

	Parser ParserConfig `yaml:"parser" mapstructure:"parser"`

	// MetricsListen serves Prometheus metrics on this address when set, e.g. ":9108".
	MetricsListen string `yaml:"metrics_listen,omitempty" mapstructure:"metrics_listen"`

	Capture CaptureConfig `yaml:"capture" mapstructure:"capture"`
}

// CaptureConfig controls where --record writes raw serial output and how
// many recordings are kept.
type CaptureConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`

	// KeepRuns keeps only the newest N recordings per source. 0 keeps all.
	KeepRuns int `yaml:"keep_runs" mapstructure:"keep_runs"`

	// KeepDays deletes recordings older than this. 0 disables.
	KeepDays int `yaml:"keep_days,omitempty" mapstructure:"keep_days"`

	// MaxSizeMB deletes the oldest recordings once the total exceeds this. 0 disables.
	MaxSizeMB int `yaml:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
}

// Threshold is the config form of an alert rule.
type Threshold struct {
	// High triggers above this value.
	High *float64 `yaml:"high,omitempty" mapstructure:"high"`

	// Low triggers below this value.
	Low *float64 `yaml:"low,omitempty" mapstructure:"low"`

	// Inclusive makes the bounds themselves trigger.
	Inclusive bool `yaml:"inclusive,omitempty" mapstructure:"inclusive"`

	// Title overrides the notification title.
	Title string `yaml:"title,omitempty" mapstructure:"title"`
}

// ParserConfig tunes line parsing.
type ParserConfig struct {
	// GasZeroFloor replaces a gas reading of exactly 0. 0 disables the remap.
	GasZeroFloor float64 `yaml:"gas_zero_floor" mapstructure:"gas_zero_floor"`

	// Labels adds extra label aliases per metric, e.g. {temperature: ["Temp"]}.
	Labels map[string][]string `yaml:"labels,omitempty" mapstructure:"labels"`
}

// DefaultMetrics returns the config names of every metric.
func DefaultMetrics() []string {
	out := make([]string, len(sensor.All))
	for i, m := range sensor.All {
		out[i] = m.String()
	}
	return out
}

// DefaultThresholds returns the built-in rules in config form.
func DefaultThresholds() map[string]Threshold {
	out := make(map[string]Threshold)
	for _, r := range alert.DefaultRules() {
		out[r.Metric.String()] = Threshold{
			High:      r.High,
			Low:       r.Low,
			Inclusive: r.Inclusive,
		}
	}
	return out
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:          CurrentConfigVersion,
		BaudRate:         DefaultBaudRate,
		Metrics:          DefaultMetrics(),
		Thresholds:       DefaultThresholds(),
		CooldownSeconds:  int(alert.DefaultCooldown / time.Second),
		BufferCapacity:   series.DefaultCapacity,
		PollInterval:     time.Second,
		ReconnectBackoff: 5 * time.Second,
		RetryBackoff:     alert.DefaultRetryBackoff,
		Parser: ParserConfig{
			GasZeroFloor: sensor.DefaultGasZeroFloor,
		},
		Capture: CaptureConfig{
			Dir:      "~/.watchdog/captures",
			KeepRuns: 20,
		},
	}
}

// Cooldown returns CooldownSeconds as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// EnabledMetrics resolves Metrics. An empty list enables every metric.
func (c *Config) EnabledMetrics() ([]sensor.Metric, error) {
	if len(c.Metrics) == 0 {
		return append([]sensor.Metric(nil), sensor.All...), nil
	}
	return sensor.ParseMetrics(c.Metrics)
}

// Rules builds the alert rules for the enabled metrics. Metrics without a
// threshold entry use the built-in rule.
func (c *Config) Rules() ([]alert.Rule, error) {
	metrics, err := c.EnabledMetrics()
	if err != nil {
		return nil, err
	}

	byMetric := make(map[sensor.Metric]Threshold, len(c.Thresholds))
	for name, th := range c.Thresholds {
		m, err := sensor.ParseMetric(name)
		if err != nil {
			return nil, err
		}
		byMetric[m] = th
	}

	rules := make([]alert.Rule, 0, len(metrics))
	for _, m := range metrics {
		def, _ := alert.DefaultRule(m)
		th, ok := byMetric[m]
		if !ok {
			rules = append(rules, def)
			continue
		}
		title := th.Title
		if title == "" {
			title = def.Title
		}
		rules = append(rules, alert.Rule{
			Metric:    m,
			High:      th.High,
			Low:       th.Low,
			Inclusive: th.Inclusive,
			Title:     title,
		})
	}
	return rules, nil
}

// ParserOptions builds the sensor parser options: the stock labels plus any
// configured aliases, restricted to the enabled metrics.
func (c *Config) ParserOptions() (sensor.Options, error) {
	metrics, err := c.EnabledMetrics()
	if err != nil {
		return sensor.Options{}, err
	}

	labels := append([]sensor.Label(nil), sensor.DefaultLabels...)
	// Walk metrics in display order so the label table is deterministic.
	for _, m := range sensor.All {
		for name, aliases := range c.Parser.Labels {
			pm, err := sensor.ParseMetric(name)
			if err != nil {
				return sensor.Options{}, err
			}
			if pm != m {
				continue
			}
			for _, a := range aliases {
				labels = append(labels, sensor.Label{Text: a, Metric: m})
			}
		}
	}

	return sensor.Options{
		Labels:       labels,
		Metrics:      metrics,
		GasZeroFloor: c.Parser.GasZeroFloor,
	}, nil
}

// Redacted returns a copy safe to print, with the API key masked.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.APIKey != "" {
		cp.APIKey = MaskSecret(cp.APIKey)
	}
	return &cp
}

// MaskSecret keeps the first four characters of a token.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
