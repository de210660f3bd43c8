package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/watchdog/internal/alert"
	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/logger"
	"github.com/rileyhilliard/watchdog/internal/sensor"
	"github.com/rileyhilliard/watchdog/internal/series"
)

// Outcome is everything that happened while processing one line.
type Outcome struct {
	Line string
	Time time.Time
	// Readings were parsed and appended to their series, in line order.
	Readings []sensor.Reading
	// ParseErrors are recognized labels whose value was malformed.
	ParseErrors []sensor.Result
	// Alerts were delivered by the notifier.
	Alerts []*alert.Alert
	// NotifyErrors are alerts the notifier failed to deliver.
	NotifyErrors []NotifyError
}

// Recognized reports whether any label on the line matched.
func (o Outcome) Recognized() bool {
	return len(o.Readings) > 0 || len(o.ParseErrors) > 0
}

// NotifyError is a failed delivery for one metric.
type NotifyError struct {
	Metric sensor.Metric
	Err    error
}

// SessionOptions tunes a Session.
type SessionOptions struct {
	// Clock stamps readings and drives cooldowns. Nil means time.Now.
	Clock  func() time.Time
	Logger logger.Logger
}

// Session owns the parser, series store and alert policy for one monitoring
// run. Process is called from a single goroutine; Snapshot and ClearSeries
// are safe to call from others.
type Session struct {
	parser  *sensor.Parser
	store   *series.Store
	policy  *alert.Policy
	metrics []sensor.Metric
	now     func() time.Time
	log     logger.Logger

	lines        atomic.Int64
	unrecognized atomic.Int64
	parseErrors  atomic.Int64
}

// NewSession builds a session from cfg. Alerts are delivered through notifier.
func NewSession(cfg *config.Config, notifier alert.Notifier, opts SessionOptions) (*Session, error) {
	metrics, err := cfg.EnabledMetrics()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	parserOpts, err := cfg.ParserOptions()
	if err != nil {
		return nil, err
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	policy := alert.NewPolicy(rules, notifier, alert.Options{
		Cooldown:     cfg.Cooldown(),
		RetryBackoff: cfg.RetryBackoff,
		Clock:        now,
		Logger:       log,
	})

	return &Session{
		parser:  sensor.NewParser(parserOpts),
		store:   series.NewStore(cfg.BufferCapacity, metrics...),
		policy:  policy,
		metrics: metrics,
		now:     now,
		log:     log,
	}, nil
}

// Metrics returns the enabled metrics in display order.
func (s *Session) Metrics() []sensor.Metric {
	return append([]sensor.Metric(nil), s.metrics...)
}

// Process parses line, appends every reading to its series and evaluates
// it against the alert policy.
func (s *Session) Process(ctx context.Context, line string) Outcome {
	now := s.now()
	out := Outcome{Line: line, Time: now}
	s.lines.Add(1)

	results := s.parser.ParseLine(line, now)
	if len(results) == 0 {
		s.unrecognized.Add(1)
		return out
	}

	for _, res := range results {
		if !res.OK() {
			s.parseErrors.Add(1)
			out.ParseErrors = append(out.ParseErrors, res)
			continue
		}

		r := res.Reading
		s.store.Append(r.Metric, r.Value)
		out.Readings = append(out.Readings, r)

		a, err := s.policy.Evaluate(ctx, r)
		if err != nil {
			out.NotifyErrors = append(out.NotifyErrors, NotifyError{Metric: r.Metric, Err: err})
			continue
		}
		if a != nil {
			out.Alerts = append(out.Alerts, a)
		}
	}
	return out
}

// ClearSeries empties every series. Alert state is kept.
func (s *Session) ClearSeries() {
	s.store.Clear()
}

// MetricSnapshot is the read-only view of one metric.
type MetricSnapshot struct {
	Metric    sensor.Metric
	Values    []float64
	Stats     series.Stats
	Latest    float64
	HasLatest bool
	Rule      alert.Rule
	HasRule   bool
	State     alert.State
}

// Alerting reports whether the latest value is outside the rule's range.
func (ms MetricSnapshot) Alerting() bool {
	return ms.HasLatest && ms.HasRule && ms.Rule.Triggered(ms.Latest)
}

// Snapshot is a point-in-time copy of the session for presenters.
type Snapshot struct {
	Time         time.Time
	Metrics      []MetricSnapshot
	Lines        int64
	Unrecognized int64
	ParseErrors  int64
}

// Metric returns the snapshot for m.
func (s Snapshot) Metric(m sensor.Metric) (MetricSnapshot, bool) {
	for _, ms := range s.Metrics {
		if ms.Metric == m {
			return ms, true
		}
	}
	return MetricSnapshot{}, false
}

// Snapshot copies the series, latest values, rules and alert states.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Time:         s.now(),
		Metrics:      make([]MetricSnapshot, 0, len(s.metrics)),
		Lines:        s.lines.Load(),
		Unrecognized: s.unrecognized.Load(),
		ParseErrors:  s.parseErrors.Load(),
	}
	states := s.policy.States()

	for _, m := range s.metrics {
		ms := MetricSnapshot{
			Metric: m,
			Values: s.store.Values(m),
			Stats:  s.store.Stats(m),
			State:  states[m],
		}
		ms.Latest, ms.HasLatest = s.store.Latest(m)
		ms.Rule, ms.HasRule = s.policy.Rule(m)
		snap.Metrics = append(snap.Metrics, ms)
	}
	return snap
}
