package sensor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/watchdog/internal/errors"
)

// DefaultGasZeroFloor replaces a raw gas reading of exactly 0. Some MQ-2
// boards report 0 while the heater warms up, which would flatten the chart.
const DefaultGasZeroFloor = 0.1

// Label maps a substring of a firmware line to the metric it announces.
type Label struct {
	Text   string
	Metric Metric
}

// DefaultLabels is the vocabulary of the known firmware builds, English and
// Portuguese. Order matters only when two labels of the same metric could
// both appear on a line; the first match wins.
var DefaultLabels = []Label{
	{Text: "Temperature", Metric: Temperature},
	{Text: "Temperatura", Metric: Temperature},
	{Text: "Humidity", Metric: Humidity},
	{Text: "Humidade", Metric: Humidity},
	{Text: "Noise Level", Metric: Noise},
	{Text: "Nível de Ruído", Metric: Noise},
	{Text: "MQ-2 Value", Metric: Gas},
}

// unitSuffixes are stripped from the value text before number parsing.
// U+FFFD followed by C is a degree sign sent as Latin-1 and replaced during decoding.
var unitSuffixes = []string{"°C", "ºC", "\uFFFDC", "%"}

// Options configures a Parser. The zero value parses nothing useful; start
// from DefaultOptions.
type Options struct {
	// Labels is the label table. Nil means DefaultLabels.
	Labels []Label
	// Metrics is the set of enabled metrics. Nil means All.
	Metrics []Metric
	// GasZeroFloor replaces a gas value of 0. Zero disables the remap.
	GasZeroFloor float64
}

// DefaultOptions returns options for all metrics with the stock label table.
func DefaultOptions() Options {
	return Options{
		Labels:       DefaultLabels,
		Metrics:      All,
		GasZeroFloor: DefaultGasZeroFloor,
	}
}

// Parser converts text lines into readings. It holds no mutable state and is
// safe for concurrent use.
type Parser struct {
	labels   []Label
	enabled  map[Metric]bool
	gasFloor float64
}

// NewParser creates a parser from opts.
func NewParser(opts Options) *Parser {
	labels := opts.Labels
	if labels == nil {
		labels = DefaultLabels
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = All
	}
	enabled := make(map[Metric]bool, len(metrics))
	for _, m := range metrics {
		enabled[m] = true
	}
	return &Parser{
		labels:   labels,
		enabled:  enabled,
		gasFloor: opts.GasZeroFloor,
	}
}

// Enabled reports whether the parser emits results for m.
func (p *Parser) Enabled(m Metric) bool {
	return p.enabled[m]
}

// ParseLine inspects one line and returns a result for each enabled metric
// whose label appears in it, at most one per metric. Lines with no known
// label yield nil. A label with an unparseable value yields a Result with a
// PARSE error; other metrics on the same line are unaffected.
func (p *Parser) ParseLine(line string, now time.Time) []Result {
	var results []Result
	seen := make(map[Metric]bool, len(p.enabled))

	for _, l := range p.labels {
		if !p.enabled[l.Metric] || seen[l.Metric] {
			continue
		}
		if !strings.Contains(line, l.Text) {
			continue
		}
		seen[l.Metric] = true

		raw := valueText(line)
		res := Result{Metric: l.Metric, Label: l.Text, Raw: raw}
		v, err := p.parseValue(l.Metric, raw)
		if err != nil {
			res.Err = err
		} else {
			res.Reading = Reading{Metric: l.Metric, Value: v, Time: now}
		}
		results = append(results, res)
	}
	return results
}

// valueText returns the text between the first ':' and the next one (or end
// of line). An absent separator yields "".
func valueText(line string) string {
	_, after, ok := strings.Cut(line, ":")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(after, ':'); i >= 0 {
		after = after[:i]
	}
	return after
}

func stripUnits(s string) string {
	s = strings.TrimSpace(s)
	for _, suffix := range unitSuffixes {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	return s
}

func (p *Parser) parseValue(m Metric, raw string) (float64, error) {
	text := stripUnits(raw)
	if text == "" {
		return 0, errors.New(errors.ErrParse,
			fmt.Sprintf("%s has no value", m.Title()),
			"Expected a line like \""+m.Title()+": 42\"")
	}

	var v float64
	if m.Integer() {
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0, errors.WrapWithCode(err, errors.ErrParse,
				fmt.Sprintf("%s value %q is not an integer", m.Title(), text), "")
		}
		v = float64(n)
	} else {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, errors.WrapWithCode(err, errors.ErrParse,
				fmt.Sprintf("%s value %q is not a number", m.Title(), text), "")
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.New(errors.ErrParse,
				fmt.Sprintf("%s value %q is not finite", m.Title(), text), "")
		}
		v = f
	}

	if m == Gas && v == 0 && p.gasFloor > 0 {
		v = p.gasFloor
	}
	return v, nil
}
