package monitor

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/watchdog/internal/alert"
	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/logger"
	"github.com/rileyhilliard/watchdog/internal/sensor"
)

var testStart = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type delivery struct {
	title string
	body  string
}

type recorder struct {
	mu   sync.Mutex
	sent []delivery
	err  error
}

func (r *recorder) Send(_ context.Context, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, delivery{title, body})
	return nil
}

func (r *recorder) deliveries() []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]delivery(nil), r.sent...)
}

func newTestSession(t *testing.T, cfg *config.Config, n alert.Notifier) (*Session, *fakeClock) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	clock := &fakeClock{now: testStart}
	s, err := NewSession(cfg, n, SessionOptions{Clock: clock.Now, Logger: logger.Noop()})
	require.NoError(t, err)
	return s, clock
}

func TestSession_EndToEnd(t *testing.T) {
	n := &recorder{}
	s, _ := newTestSession(t, nil, n)
	ctx := context.Background()

	var alerts int
	for _, line := range []string{"Temperature: 41°C", "Noise Level: 250", "Humidity: 50%"} {
		out := s.Process(ctx, line)
		require.Len(t, out.Readings, 1, line)
		assert.Empty(t, out.NotifyErrors)
		alerts += len(out.Alerts)
	}
	assert.Equal(t, 2, alerts)

	got := n.deliveries()
	require.Len(t, got, 2)
	assert.Equal(t, delivery{"High Temperature Alert", "Temperature: 41 °C"}, got[0])
	assert.Equal(t, delivery{"High Noise Alert", "Noise Level: 250"}, got[1])

	snap := s.Snapshot()
	assert.Equal(t, int64(3), snap.Lines)
	require.Len(t, snap.Metrics, 4)

	temp, ok := snap.Metric(sensor.Temperature)
	require.True(t, ok)
	assert.Equal(t, []float64{41}, temp.Values)
	assert.True(t, temp.Alerting())
	assert.Equal(t, "Temperature: 41 °C - Sat Mar 14 12:00:00 2026", temp.State.LastAlertMessage)

	noise, _ := snap.Metric(sensor.Noise)
	assert.Equal(t, []float64{250}, noise.Values)

	hum, _ := snap.Metric(sensor.Humidity)
	assert.Equal(t, []float64{50}, hum.Values)
	assert.False(t, hum.State.Fired(), "in-range humidity never alerts")
	assert.False(t, hum.Alerting())

	gas, _ := snap.Metric(sensor.Gas)
	assert.Empty(t, gas.Values)
	assert.False(t, gas.HasLatest)
}

func TestSession_Cooldown(t *testing.T) {
	n := &recorder{}
	s, clock := newTestSession(t, nil, n)
	ctx := context.Background()

	assert.Len(t, s.Process(ctx, "Temperature: 45").Alerts, 1)
	clock.Advance(time.Minute)
	assert.Empty(t, s.Process(ctx, "Temperature: 46").Alerts, "inside cooldown")
	clock.Advance(5 * time.Minute)
	assert.Len(t, s.Process(ctx, "Temperature: 47").Alerts, 1)

	temp, _ := s.Snapshot().Metric(sensor.Temperature)
	assert.Equal(t, []float64{45, 46, 47}, temp.Values, "every reading is recorded, alerting or not")
}

func TestSession_ParseErrors(t *testing.T) {
	s, _ := newTestSession(t, nil, &recorder{})

	out := s.Process(context.Background(), "Temperature: hot")
	assert.True(t, out.Recognized())
	assert.Empty(t, out.Readings)
	require.Len(t, out.ParseErrors, 1)
	assert.Equal(t, sensor.Temperature, out.ParseErrors[0].Metric)
	assert.True(t, errors.IsCode(out.ParseErrors[0].Err, errors.ErrParse))

	snap := s.Snapshot()
	assert.Equal(t, int64(1), snap.ParseErrors)
	temp, _ := snap.Metric(sensor.Temperature)
	assert.Empty(t, temp.Values)
}

func TestSession_Unrecognized(t *testing.T) {
	s, _ := newTestSession(t, nil, &recorder{})

	out := s.Process(context.Background(), "booting sensor board v2")
	assert.False(t, out.Recognized())
	assert.Equal(t, "booting sensor board v2", out.Line)
	assert.Equal(t, testStart, out.Time)

	snap := s.Snapshot()
	assert.Equal(t, int64(1), snap.Lines)
	assert.Equal(t, int64(1), snap.Unrecognized)
}

func TestSession_NotifyFailure(t *testing.T) {
	n := &recorder{err: stderrors.New("network down")}
	s, clock := newTestSession(t, nil, n)
	ctx := context.Background()

	out := s.Process(ctx, "MQ-2 Value: 350")
	assert.Empty(t, out.Alerts)
	require.Len(t, out.NotifyErrors, 1)
	assert.Equal(t, sensor.Gas, out.NotifyErrors[0].Metric)
	assert.True(t, errors.IsCode(out.NotifyErrors[0].Err, errors.ErrNotify))

	gas, _ := s.Snapshot().Metric(sensor.Gas)
	assert.False(t, gas.State.Fired(), "failed delivery does not start the cooldown")
	assert.Error(t, gas.State.LastFailure)

	n.mu.Lock()
	n.err = nil
	n.mu.Unlock()
	clock.Advance(alert.DefaultRetryBackoff)

	out = s.Process(ctx, "MQ-2 Value: 360")
	assert.Len(t, out.Alerts, 1, "retried after the backoff")
}

func TestSession_EnabledMetricsOnly(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Metrics = []string{"temperature"}
	s, _ := newTestSession(t, cfg, &recorder{})

	out := s.Process(context.Background(), "Humidity: 90%")
	assert.False(t, out.Recognized())

	snap := s.Snapshot()
	require.Len(t, snap.Metrics, 1)
	assert.Equal(t, sensor.Temperature, snap.Metrics[0].Metric)
	assert.Equal(t, []sensor.Metric{sensor.Temperature}, s.Metrics())
}

func TestSession_BufferCapacity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BufferCapacity = 3
	s, _ := newTestSession(t, cfg, &recorder{})

	for _, line := range []string{"Noise Level: 1", "Noise Level: 2", "Noise Level: 3", "Noise Level: 4"} {
		s.Process(context.Background(), line)
	}
	noise, _ := s.Snapshot().Metric(sensor.Noise)
	assert.Equal(t, []float64{2, 3, 4}, noise.Values)
	assert.Equal(t, 4.0, noise.Latest)
}

func TestSession_ClearSeriesKeepsAlertState(t *testing.T) {
	s, _ := newTestSession(t, nil, &recorder{})
	s.Process(context.Background(), "Temperature: 50")

	s.ClearSeries()

	temp, _ := s.Snapshot().Metric(sensor.Temperature)
	assert.Empty(t, temp.Values)
	assert.False(t, temp.HasLatest)
	assert.True(t, temp.State.Fired())
}

func TestNewSession_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Metrics = []string{"pressure"}

	_, err := NewSession(cfg, &recorder{}, SessionOptions{})
	require.Error(t, err)
}
