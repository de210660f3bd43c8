// Package alert decides when a reading should produce a push notification.
//
// Each metric has a Rule (a threshold) and a State (when it last alerted).
// A triggering reading only notifies when no alert was delivered for that
// metric within the cooldown window. Cooldown runs from the last delivered
// alert, so a failed delivery never silences later readings.
package alert

import (
	"fmt"
	"strconv"

	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/sensor"
)

// Rule is the trigger condition for one metric. A reading triggers when it is
// above High or below Low. Inclusive makes both comparisons include the bound.
type Rule struct {
	Metric    sensor.Metric
	High      *float64
	Low       *float64
	Inclusive bool
	// Title overrides the notification title. Empty derives one from the bounds.
	Title string
}

// Float returns a pointer to v, for building rules in code.
func Float(v float64) *float64 {
	return &v
}

// DefaultRules returns the stock thresholds:
// temperature >= 40, humidity outside [30, 70], noise >= 200, gas >= 200.
func DefaultRules() []Rule {
	return []Rule{
		{Metric: sensor.Temperature, High: Float(40), Inclusive: true, Title: "High Temperature Alert"},
		{Metric: sensor.Humidity, Low: Float(30), High: Float(70), Title: "Humidity Out of Range Alert"},
		{Metric: sensor.Noise, High: Float(200), Inclusive: true, Title: "High Noise Alert"},
		{Metric: sensor.Gas, High: Float(200), Inclusive: true, Title: "Gas Level Alert"},
	}
}

// DefaultRule returns the stock rule for m.
func DefaultRule(m sensor.Metric) (Rule, bool) {
	for _, r := range DefaultRules() {
		if r.Metric == m {
			return r, true
		}
	}
	return Rule{}, false
}

// Triggered reports whether v violates the rule.
func (r Rule) Triggered(v float64) bool {
	if r.High != nil {
		if v > *r.High || (r.Inclusive && v == *r.High) {
			return true
		}
	}
	if r.Low != nil {
		if v < *r.Low || (r.Inclusive && v == *r.Low) {
			return true
		}
	}
	return false
}

// AlertTitle returns the notification title for this rule.
func (r Rule) AlertTitle() string {
	if r.Title != "" {
		return r.Title
	}
	name := r.Metric.Title()
	switch {
	case r.High != nil && r.Low != nil:
		return name + " Out of Range Alert"
	case r.Low != nil:
		return "Low " + name + " Alert"
	default:
		return "High " + name + " Alert"
	}
}

// RangeLabel renders the safe range for display, e.g. "[30% - 70%]" or
// "[< 40 °C]".
func (r Rule) RangeLabel() string {
	f := func(v float64) string { return r.Metric.FormatValue(v) }
	switch {
	case r.High != nil && r.Low != nil:
		return fmt.Sprintf("[%s - %s]", f(*r.Low), f(*r.High))
	case r.High != nil:
		op := "≤"
		if r.Inclusive {
			op = "<"
		}
		return fmt.Sprintf("[%s %s]", op, f(*r.High))
	case r.Low != nil:
		op := "≥"
		if r.Inclusive {
			op = ">"
		}
		return fmt.Sprintf("[%s %s]", op, f(*r.Low))
	default:
		return "[no limit]"
	}
}

// String describes the trigger condition, e.g. "temperature >= 40".
func (r Rule) String() string {
	hi, lo := ">", "<"
	if r.Inclusive {
		hi, lo = ">=", "<="
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case r.High != nil && r.Low != nil:
		return fmt.Sprintf("%s %s %s or %s %s", r.Metric, lo, num(*r.Low), hi, num(*r.High))
	case r.High != nil:
		return fmt.Sprintf("%s %s %s", r.Metric, hi, num(*r.High))
	case r.Low != nil:
		return fmt.Sprintf("%s %s %s", r.Metric, lo, num(*r.Low))
	default:
		return r.Metric.String() + " never"
	}
}

// Validate checks that the rule has at least one bound and that Low is
// below High.
func (r Rule) Validate() error {
	if r.High == nil && r.Low == nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Threshold for %s has neither 'high' nor 'low'", r.Metric),
			"Set at least one bound, e.g. thresholds."+r.Metric.String()+".high: 40")
	}
	if r.High != nil && r.Low != nil && *r.Low >= *r.High {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Threshold for %s has low (%g) >= high (%g)", r.Metric, *r.Low, *r.High),
			"'low' must be below 'high'")
	}
	return nil
}
