package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/logger"
	"github.com/rileyhilliard/watchdog/internal/sensor"
)

const (
	// DefaultCooldown is the minimum time between two delivered alerts for
	// the same metric.
	DefaultCooldown = 300 * time.Second
	// DefaultRetryBackoff is how long to wait after a failed delivery before
	// a triggering reading may try again.
	DefaultRetryBackoff = 30 * time.Second
)

// MessageTimeFormat is appended to the last alert message, e.g.
// "Temperature: 41 °C - Sat Mar 14 12:00:00 2026".
const MessageTimeFormat = time.ANSIC

// Notifier delivers a push message. Implementations live in package notify.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, title, body string) error

// Send calls f.
func (f NotifierFunc) Send(ctx context.Context, title, body string) error {
	return f(ctx, title, body)
}

// State is the alert bookkeeping for one metric.
type State struct {
	// LastAlertTime is the time of the last delivered alert; zero means never.
	LastAlertTime time.Time
	// LastAlertMessage is the last delivered body plus a timestamp.
	LastAlertMessage string
	// LastFailure is the most recent delivery error since the last success.
	LastFailure     error
	LastFailureTime time.Time
}

// Fired reports whether an alert was ever delivered for the metric.
func (s State) Fired() bool {
	return !s.LastAlertTime.IsZero()
}

// Alert is a notification the policy decided to send.
type Alert struct {
	ID     string
	Metric sensor.Metric
	Value  float64
	Title  string
	Body   string
	Time   time.Time
}

// Options tunes a Policy. Zero durations are honoured as zero; start from
// DefaultOptions.
type Options struct {
	Cooldown     time.Duration
	RetryBackoff time.Duration
	// Clock returns the current time. Nil means time.Now.
	Clock func() time.Time
	// Logger receives delivery outcomes. Nil means logger.Noop().
	Logger logger.Logger
}

// DefaultOptions returns the stock cooldown and retry backoff.
func DefaultOptions() Options {
	return Options{
		Cooldown:     DefaultCooldown,
		RetryBackoff: DefaultRetryBackoff,
	}
}

// Policy evaluates readings against rules and notifies through a Notifier.
// Evaluate is meant to be called from a single goroutine; State and States
// may be called concurrently with it.
type Policy struct {
	mu           sync.RWMutex
	rules        map[sensor.Metric]Rule
	states       map[sensor.Metric]*State
	notifier     Notifier
	cooldown     time.Duration
	retryBackoff time.Duration
	now          func() time.Time
	log          logger.Logger
}

// NewPolicy creates a policy. A later rule for the same metric replaces an
// earlier one. Metrics without a rule never alert.
func NewPolicy(rules []Rule, notifier Notifier, opts Options) *Policy {
	p := &Policy{
		rules:        make(map[sensor.Metric]Rule, len(rules)),
		states:       make(map[sensor.Metric]*State),
		notifier:     notifier,
		cooldown:     opts.Cooldown,
		retryBackoff: opts.RetryBackoff,
		now:          opts.Clock,
		log:          opts.Logger,
	}
	for _, r := range rules {
		p.rules[r.Metric] = r
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.log == nil {
		p.log = logger.Noop()
	}
	return p
}

// Rule returns the rule configured for m.
func (p *Policy) Rule(m sensor.Metric) (Rule, bool) {
	r, ok := p.rules[m]
	return r, ok
}

// Evaluate checks r against its rule. When the rule triggers and the metric
// is out of cooldown, the notifier is called:
//
//   - on success the metric's LastAlertTime and LastAlertMessage advance and
//     the Alert is returned;
//   - on failure a NOTIFY error is logged, recorded in State.LastFailure and
//     returned, and LastAlertTime is left alone. The next triggering reading
//     retries once the retry backoff has elapsed.
//
// Otherwise Evaluate returns nil, nil and changes nothing.
func (p *Policy) Evaluate(ctx context.Context, r sensor.Reading) (*Alert, error) {
	rule, ok := p.rules[r.Metric]
	if !ok || !rule.Triggered(r.Value) {
		return nil, nil
	}

	now := p.now()

	p.mu.RLock()
	st := p.stateLocked(r.Metric)
	suppressed := p.suppressed(st, now)
	p.mu.RUnlock()
	if suppressed {
		p.log.Debug("%s triggered (%s) but is in cooldown", r.Metric, r.Metric.FormatValue(r.Value))
		return nil, nil
	}

	a := &Alert{
		ID:     uuid.NewString(),
		Metric: r.Metric,
		Value:  r.Value,
		Title:  rule.AlertTitle(),
		Body:   r.String(),
		Time:   now,
	}

	// The notifier may block on the network; readers of State are not held up.
	sendErr := p.notifier.Send(ctx, a.Title, a.Body)

	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.states[r.Metric]
	if s == nil {
		s = &State{}
		p.states[r.Metric] = s
	}

	if sendErr != nil {
		err := errors.WrapWithCode(sendErr, errors.ErrNotify,
			fmt.Sprintf("Failed to deliver %q", a.Title),
			fmt.Sprintf("The alert will be retried after %s if %s stays out of range", p.retryBackoff, r.Metric))
		s.LastFailure = err
		s.LastFailureTime = now
		p.log.Warn("%s", err.Short())
		return nil, err
	}

	s.LastAlertTime = now
	s.LastAlertMessage = a.Body + " - " + now.Format(MessageTimeFormat)
	s.LastFailure = nil
	s.LastFailureTime = time.Time{}
	p.log.Info("sent %q: %s", a.Title, a.Body)
	return a, nil
}

// suppressed reports whether a triggering reading must be held back.
func (p *Policy) suppressed(st State, now time.Time) bool {
	if st.Fired() && now.Sub(st.LastAlertTime) < p.cooldown {
		return true
	}
	if st.LastFailure != nil && now.Sub(st.LastFailureTime) < p.retryBackoff {
		return true
	}
	return false
}

// stateLocked returns a copy of the state for m. Must be called with p.mu held.
func (p *Policy) stateLocked(m sensor.Metric) State {
	if s, ok := p.states[m]; ok {
		return *s
	}
	return State{}
}

// State returns a copy of the alert state for m. The zero State means the
// metric never alerted.
func (p *Policy) State(m sensor.Metric) State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stateLocked(m)
}

// States returns a copy of every metric's alert state.
func (p *Policy) States() map[sensor.Metric]State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[sensor.Metric]State, len(p.states))
	for m, s := range p.states {
		out[m] = *s
	}
	return out
}

// Reset forgets all alert history.
func (p *Policy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = make(map[sensor.Metric]*State)
}
