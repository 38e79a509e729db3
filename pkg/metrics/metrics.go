package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/bootstrap"
)

const namespace = "mapofpi"

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	attempts     *prometheus.CounterVec
	retryDelay   prometheus.Histogram
	transitions  *prometheus.CounterVec
	phase        *prometheus.GaugeVec
	signingIn    prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ bootstrap.Observer = (*Metrics)(nil)

// New builds the collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "login",
				Name:      "attempts_total",
				Help:      "Login attempts by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		retryDelay: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "login",
				Name:      "retry_delay_seconds",
				Help:      "Backoff delays scheduled between interactive login attempts.",
				Buckets:   prometheus.ExponentialBuckets(1, 3, 6), // 1s to ~4m
			},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "login",
				Name:      "phase_transitions_total",
				Help:      "Login phase transitions by event.",
			},
			[]string{"event", "to"},
		),
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "login",
				Name:      "phase",
				Help:      "Current login phase (1 for the active phase).",
			},
			[]string{"phase"},
		),
		signingIn: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "login",
				Name:      "signing_in",
				Help:      "Whether a login sequence is in flight.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Requests handled by the status API.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of status API requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.attempts,
		m.retryDelay,
		m.transitions,
		m.phase,
		m.signingIn,
		m.httpRequests,
		m.httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	m.phase.WithLabelValues(bootstrap.PhaseIdle.String()).Set(1)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) PhaseChanged(from, to bootstrap.Phase, event bootstrap.Event) {
	m.transitions.WithLabelValues(event.String(), to.String()).Inc()
	m.phase.WithLabelValues(from.String()).Set(0)
	m.phase.WithLabelValues(to.String()).Set(1)
}

func (m *Metrics) AttemptFinished(kind bootstrap.AttemptKind, _ int, err error) {
	m.attempts.WithLabelValues(string(kind), outcome(err)).Inc()
}

func (m *Metrics) RetryScheduled(_ int, delay time.Duration) {
	m.retryDelay.Observe(delay.Seconds())
}

func (m *Metrics) SigningInChanged(signingIn bool) {
	if signingIn {
		m.signingIn.Set(1)
		return
	}
	m.signingIn.Set(0)
}

// ObserveRequest records one status API request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case apiclient.IsHardFailure(err):
		return "hard_failure"
	default:
		return "soft_failure"
	}
}
