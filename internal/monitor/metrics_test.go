package monitor

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/watchdog/internal/alert"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/logger"
	"github.com/rileyhilliard/watchdog/internal/sensor"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(sensor.All...)

	m.Observe(Outcome{
		Readings: []sensor.Reading{
			{Metric: sensor.Temperature, Value: 41},
			{Metric: sensor.Noise, Value: 250},
		},
		ParseErrors: []sensor.Result{{Metric: sensor.Humidity}},
		Alerts:      []*alert.Alert{{Metric: sensor.Temperature}},
		NotifyErrors: []NotifyError{
			{Metric: sensor.Noise, Err: stderrors.New("down")},
		},
	})
	m.Observe(Outcome{Readings: []sensor.Reading{{Metric: sensor.Temperature, Value: 39.5}}})
	m.TransportError()

	assert.Equal(t, 39.5, testutil.ToFloat64(m.readingValue.WithLabelValues("temperature")))
	assert.Equal(t, 250.0, testutil.ToFloat64(m.readingValue.WithLabelValues("noise")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.readings.WithLabelValues("temperature")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parseErrors.WithLabelValues("humidity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alerts.WithLabelValues("temperature")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifyFailures.WithLabelValues("noise")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transportErrors))
}

func TestMetrics_PrecreatedSeries(t *testing.T) {
	m := NewMetrics(sensor.Temperature, sensor.Gas)

	// Counters for the enabled metrics exist at zero before any reading.
	assert.Equal(t, 2, testutil.CollectAndCount(m.readings))
	assert.Equal(t, 2, testutil.CollectAndCount(m.alerts))
	assert.Equal(t, 0, testutil.CollectAndCount(m.readingValue))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(sensor.Humidity)
	m.Observe(Outcome{Readings: []sensor.Reading{{Metric: sensor.Humidity, Value: 55}}})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `watchdog_reading_value{metric="humidity"} 55`)
	assert.Contains(t, body, `watchdog_readings_total{metric="humidity"} 1`)
	assert.Contains(t, body, "watchdog_transport_errors_total 0")
}

func TestMetrics_Serve(t *testing.T) {
	m := NewMetrics(sensor.Gas)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.ServeListener(ctx, ln, logger.Noop()) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/metrics")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "watchdog_alerts_total")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("metrics server did not shut down")
	}
}

func TestMetrics_ServeBadAddress(t *testing.T) {
	err := NewMetrics().Serve(context.Background(), "not-an-address", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
