// Package sensor turns raw firmware lines ("Temperature: 23.5°C") into typed
// readings. It knows the label vocabulary of the monitoring firmware and the
// numeric format of each metric, and nothing about buffering or alerting.
package sensor

import (
	"fmt"
	"strconv"
	"strings"
)

// Metric identifies one measured quantity.
type Metric int

const (
	Temperature Metric = iota
	Humidity
	Noise
	Gas
)

// All lists every metric in display order.
var All = []Metric{Temperature, Humidity, Noise, Gas}

// String returns the config key for the metric.
func (m Metric) String() string {
	switch m {
	case Temperature:
		return "temperature"
	case Humidity:
		return "humidity"
	case Noise:
		return "noise"
	case Gas:
		return "gas"
	default:
		return "unknown"
	}
}

// Title returns the human-readable metric name used in alerts and panels.
func (m Metric) Title() string {
	switch m {
	case Temperature:
		return "Temperature"
	case Humidity:
		return "Humidity"
	case Noise:
		return "Noise Level"
	case Gas:
		return "Gas Level"
	default:
		return "Unknown"
	}
}

// Unit returns the display unit, or "" for unitless raw sensor counts.
func (m Metric) Unit() string {
	switch m {
	case Temperature:
		return "°C"
	case Humidity:
		return "%"
	default:
		return ""
	}
}

// Integer reports whether the firmware sends this metric as a whole number.
// Noise and gas come from analog pins and are printed as raw ADC counts.
func (m Metric) Integer() bool {
	return m == Noise || m == Gas
}

// FormatValue renders v with the metric's unit, e.g. "41 °C", "50%", "250".
func (m Metric) FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	switch m {
	case Temperature:
		return s + " " + m.Unit()
	case Humidity:
		return s + m.Unit()
	default:
		return s
	}
}

// ParseMetric maps a config key (case-insensitive) to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "temperature", "temp":
		return Temperature, nil
	case "humidity":
		return Humidity, nil
	case "noise", "noise_level":
		return Noise, nil
	case "gas", "mq2", "mq-2":
		return Gas, nil
	default:
		return 0, fmt.Errorf("unknown metric %q (expected temperature, humidity, noise or gas)", s)
	}
}

// ParseMetrics maps a list of config keys to metrics, dropping duplicates
// while keeping first-seen order.
func ParseMetrics(keys []string) ([]Metric, error) {
	seen := make(map[Metric]bool)
	out := make([]Metric, 0, len(keys))
	for _, k := range keys {
		m, err := ParseMetric(k)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out, nil
}
