package metrics

import (
	"errors"
	"strconv"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/poller"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pix_checkout"

// PollMetrics records confirmation poll activity. It implements poller.Observer.
type PollMetrics struct {
	checks   *prometheus.CounterVec
	skipped  prometheus.Counter
	sessions *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ poller.Observer = (*PollMetrics)(nil)

func NewPollMetrics(reg prometheus.Registerer) (*PollMetrics, error) {
	m := &PollMetrics{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "poller", Name: "checks_total",
			Help: "Completed payment status checks by resulting status.",
		}, []string{"status"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "poller", Name: "skipped_ticks_total",
			Help: "Ticks skipped because the previous check was still in flight.",
		}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "poller", Name: "sessions_total",
			Help: "Finished poll sessions by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "poller", Name: "session_duration_seconds",
			Help:    "Time from session start to its outcome.",
			Buckets: []float64{3, 9, 30, 60, 120, 300, 600},
		}, []string{"outcome"}),
	}
	var err error
	if m.checks, err = register(reg, m.checks); err != nil {
		return nil, err
	}
	if m.skipped, err = register(reg, m.skipped); err != nil {
		return nil, err
	}
	if m.sessions, err = register(reg, m.sessions); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PollMetrics) CheckCompleted(_ string, _ int, status entities.PaymentStatus, err error) {
	label := string(status)
	if err != nil {
		label = "error"
	}
	m.checks.WithLabelValues(label).Inc()
}

func (m *PollMetrics) CheckSkipped(string, int) {
	m.skipped.Inc()
}

func (m *PollMetrics) SessionFinished(_ string, outcome poller.Outcome, elapsed time.Duration) {
	m.sessions.WithLabelValues(string(outcome)).Inc()
	m.duration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.latency, err = register(reg, m.latency); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) Observe(route, method string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// register returns the already registered collector when one with the same
// descriptor exists, which happens when the router is built more than once in
// a process (tests).
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}
