package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/garyjia/order-intake/internal/domain/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Config holds metrics configuration
type Config struct {
	Namespace string
	// Runtime registers the Go and process collectors
	Runtime bool
}

// Metrics holds every collector of the service on its own registry
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	EventHandlersTotal   *prometheus.CounterVec
	EventHandlerDuration *prometheus.HistogramVec

	FinalizationsTotal   *prometheus.CounterVec
	FinalizationDuration prometheus.Histogram
	StepCommitsTotal     *prometheus.CounterVec

	DraftsPurgedTotal   prometheus.Counter
	CircuitBreakerState *prometheus.GaugeVec
}

// New creates a Metrics instance with all collectors registered
func New(cfg Config) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "order_intake"
	}
	registry := prometheus.NewRegistry()
	if cfg.Runtime {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	m.EventHandlersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "event_handlers_total",
			Help:      "Total number of event handler runs",
		},
		[]string{"event_type", "handler", "status"},
	)

	m.EventHandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "event_handler_duration_seconds",
			Help:      "Event handler duration in seconds",
			Buckets:   []float64{.001, .01, .05, .1, .5, 1, 5},
		},
		[]string{"event_type"},
	)

	m.FinalizationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "finalizations_total",
			Help:      "Total number of order finalizations by outcome",
		},
		[]string{"outcome"},
	)

	m.FinalizationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "finalization_duration_seconds",
			Help:      "Order finalization duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	m.StepCommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "step_commits_total",
			Help:      "Total number of step commits during finalization",
		},
		[]string{"step", "status"},
	)

	m.DraftsPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "drafts_purged_total",
			Help:      "Total number of stale drafts removed by the janitor",
		},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.EventHandlersTotal,
		m.EventHandlerDuration,
		m.FinalizationsTotal,
		m.FinalizationDuration,
		m.StepCommitsTotal,
		m.DraftsPurgedTotal,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackInFlight counts a request as in flight until the returned func runs
func (m *Metrics) TrackInFlight() func() {
	m.HTTPRequestsInFlight.Inc()
	return m.HTTPRequestsInFlight.Dec
}

// RecordHTTPRequest records a served HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveHandler records one event handler run
func (m *Metrics) ObserveHandler(eventType event.Type, handler string, duration time.Duration, err error) {
	m.EventHandlersTotal.WithLabelValues(eventType.String(), handler, status(err)).Inc()
	m.EventHandlerDuration.WithLabelValues(eventType.String()).Observe(duration.Seconds())
}

// RecordFinalization records the outcome of one finalization run
func (m *Metrics) RecordFinalization(outcome string, duration time.Duration) {
	m.FinalizationsTotal.WithLabelValues(outcome).Inc()
	m.FinalizationDuration.Observe(duration.Seconds())
}

// RecordStepCommit records one step commit made during finalization
func (m *Metrics) RecordStepCommit(step string, err error) {
	m.StepCommitsTotal.WithLabelValues(step, status(err)).Inc()
}

// RecordDraftsPurged adds n removed drafts
func (m *Metrics) RecordDraftsPurged(n int64) {
	if n > 0 {
		m.DraftsPurgedTotal.Add(float64(n))
	}
}

// SetCircuitBreakerState sets the state gauge of breaker name
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}
