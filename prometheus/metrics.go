// Package prometheus exposes executor progress as Prometheus metrics.
package prometheus

import (
	"net/http"
	"sync"

	"github.com/fwojciec/winefetch/crawl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "winefetch"
	subsystem = "executor"
)

// Attempt results.
const (
	resultSuccess   = "success"
	resultRetryable = "retryable_error"
	resultFatal     = "fatal_error"
	resultCancelled = "cancelled"
)

// Metrics counts attempts and outcomes reported by an Executor.
type Metrics struct {
	reg *prometheus.Registry

	attempts *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	inFlight prometheus.Gauge
	stops    prometheus.Counter

	mu      sync.Mutex
	started map[int]struct{}
}

// NewMetrics registers the executor metrics with reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "attempts_total",
			Help:      "Total number of processing attempts grouped by result.",
		}, []string{"result"}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outcomes_total",
			Help:      "Total number of items settled grouped by outcome.",
		}, []string{"outcome"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "in_flight",
			Help:      "Number of attempts currently being processed.",
		}),
		stops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stop_requests_total",
			Help:      "Total number of graceful stop requests observed.",
		}),
		started: make(map[int]struct{}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Observe updates the metrics for one executor event.
func (m *Metrics) Observe(typ crawl.EventType, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch typ {
	case crawl.EventStarted:
		m.started[index] = struct{}{}
		m.inFlight.Inc()
		return
	case crawl.EventStopRequested:
		m.stops.Inc()
		return
	case crawl.EventFinished:
		return
	}

	_, wasStarted := m.started[index]
	if wasStarted {
		delete(m.started, index)
		m.inFlight.Dec()
	}

	switch typ {
	case crawl.EventSucceeded:
		m.attempts.WithLabelValues(resultSuccess).Inc()
		m.outcomes.WithLabelValues(crawl.StatusSuccess.String()).Inc()
	case crawl.EventRetrying:
		m.attempts.WithLabelValues(resultRetryable).Inc()
	case crawl.EventFailed:
		m.attempts.WithLabelValues(resultFatal).Inc()
		m.outcomes.WithLabelValues(crawl.StatusFailure.String()).Inc()
	case crawl.EventCancelled:
		if wasStarted {
			m.attempts.WithLabelValues(resultCancelled).Inc()
		}
		m.outcomes.WithLabelValues(crawl.StatusCancelled.String()).Inc()
	}
}

// Progress adapts m to an executor progress callback.
func Progress[T any](m *Metrics) crawl.ProgressFunc[T] {
	return func(ev crawl.Event[T]) {
		m.Observe(ev.Type, ev.Index)
	}
}
