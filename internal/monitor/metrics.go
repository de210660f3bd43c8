package monitor

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/logger"
	"github.com/rileyhilliard/watchdog/internal/sensor"
)

const metricsNamespace = "watchdog"

// Metrics exports loop activity as Prometheus collectors on a private
// registry, so several loops (or tests) never collide.
type Metrics struct {
	registry        *prometheus.Registry
	readingValue    *prometheus.GaugeVec
	readings        *prometheus.CounterVec
	parseErrors     *prometheus.CounterVec
	alerts          *prometheus.CounterVec
	notifyFailures  *prometheus.CounterVec
	transportErrors prometheus.Counter
}

// NewMetrics creates and registers the collectors. Per-metric series are
// pre-created at zero for each of metrics.
func NewMetrics(metrics ...sensor.Metric) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		readingValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "reading_value",
			Help:      "Latest parsed sensor value",
		}, []string{"metric"}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "readings_total",
			Help:      "Count of parsed sensor readings",
		}, []string{"metric"}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parse_errors_total",
			Help:      "Count of recognized labels with a malformed value",
		}, []string{"metric"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "alerts_total",
			Help:      "Count of delivered alerts",
		}, []string{"metric"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notify_failures_total",
			Help:      "Count of alerts the notifier failed to deliver",
		}, []string{"metric"}),
		transportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transport_errors_total",
			Help:      "Count of serial open and read failures",
		}),
	}

	m.registry.MustRegister(
		m.readingValue,
		m.readings,
		m.parseErrors,
		m.alerts,
		m.notifyFailures,
		m.transportErrors,
	)

	for _, metric := range metrics {
		name := metric.String()
		m.readings.WithLabelValues(name)
		m.parseErrors.WithLabelValues(name)
		m.alerts.WithLabelValues(name)
		m.notifyFailures.WithLabelValues(name)
	}
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records an outcome. It satisfies Observer.
func (m *Metrics) Observe(o Outcome) {
	for _, r := range o.Readings {
		name := r.Metric.String()
		m.readingValue.WithLabelValues(name).Set(r.Value)
		m.readings.WithLabelValues(name).Inc()
	}
	for _, pe := range o.ParseErrors {
		m.parseErrors.WithLabelValues(pe.Metric.String()).Inc()
	}
	for _, a := range o.Alerts {
		m.alerts.WithLabelValues(a.Metric.String()).Inc()
	}
	for _, ne := range o.NotifyErrors {
		m.notifyFailures.WithLabelValues(ne.Metric.String()).Inc()
	}
}

// TransportError counts one transport failure.
func (m *Metrics) TransportError() {
	m.transportErrors.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Listen binds addr for ServeListener. A bind failure is a config error, so
// callers can report it before starting anything else.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to listen on metrics_listen address "+addr,
			"Pick a free port, or clear 'metrics_listen' to disable the endpoint")
	}
	return ln, nil
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log logger.Logger) error {
	ln, err := Listen(addr)
	if err != nil {
		return err
	}
	return m.ServeListener(ctx, ln, log)
}

// ServeListener exposes /metrics on ln until ctx is cancelled.
func (m *Metrics) ServeListener(ctx context.Context, ln net.Listener, log logger.Logger) error {
	if log == nil {
		log = logger.Noop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics on http://%s/metrics", ln.Addr())
	if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.WrapWithCode(err, errors.ErrTransport, "Metrics endpoint stopped", "")
	}
	return nil
}
