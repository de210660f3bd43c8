package sensor

import "time"

// Reading is a single parsed measurement. Values are immutable once created.
type Reading struct {
	Metric Metric
	Value  float64
	Time   time.Time
}

// String returns the reading as it appears in alert bodies, e.g. "Temperature: 41 °C".
func (r Reading) String() string {
	return r.Metric.Title() + ": " + r.Metric.FormatValue(r.Value)
}

// Result is the outcome of parsing one recognized label on a line.
// Err is non-nil when the label matched but the value was not a number;
// Reading is the zero value in that case.
type Result struct {
	Metric  Metric
	Label   string
	Raw     string
	Reading Reading
	Err     error
}

// OK reports whether the result carries a usable reading.
func (r Result) OK() bool {
	return r.Err == nil
}

// Readings returns the successful readings from results, in order.
func Readings(results []Result) []Reading {
	var out []Reading
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Reading)
		}
	}
	return out
}
