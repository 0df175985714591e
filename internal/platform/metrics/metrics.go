package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the speedrun tracker.
type Metrics struct {
	registry       *prometheus.Registry
	requestsTotal  *prometheus.CounterVec
	errorsTotal    prometheus.Counter
	rejectedTotal  prometheus.Counter
	eventsTotal    *prometheus.CounterVec
	runsStarted    *prometheus.CounterVec
	runsEnded      *prometheus.CounterVec
	stepsCompleted *prometheus.CounterVec
	runTimeSeconds *prometheus.HistogramVec
	activeRuns     prometheus.Gauge
	ticksTotal     prometheus.Counter
}

// New creates and registers Prometheus metrics for the tracker.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "speedrun_requests_total",
		Help: "Total number of HTTP requests by method, route pattern and status",
	}, []string{"method", "route", "status"})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "speedrun_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	rejectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "speedrun_transitions_rejected_total",
		Help: "Total number of state transitions rejected by a failed precondition",
	})
	eventsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "speedrun_events_total",
		Help: "Total number of run tree events by kind",
	}, []string{"kind"})
	runsStarted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "speedrun_runs_started_total",
		Help: "Total number of runs started",
	}, []string{"definition"})
	runsEnded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "speedrun_runs_ended_total",
		Help: "Total number of runs ended, by outcome (completed, canceled, finished)",
	}, []string{"definition", "outcome"})
	stepsCompleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "speedrun_steps_completed_total",
		Help: "Total number of steps completed",
	}, []string{"definition"})
	runTimeSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "speedrun_run_time_seconds",
		Help:    "Elapsed run time at the moment a run ended",
		Buckets: prometheus.ExponentialBuckets(10, 2, 12),
	}, []string{"definition", "outcome"})
	activeRuns := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "speedrun_active_runs",
		Help: "Number of registered runs that have not ended",
	})
	ticksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "speedrun_ticks_total",
		Help: "Total number of driver ticks",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		rejectedTotal,
		eventsTotal,
		runsStarted,
		runsEnded,
		stepsCompleted,
		runTimeSeconds,
		activeRuns,
		ticksTotal,
	)

	return &Metrics{
		registry:       registry,
		requestsTotal:  requestsTotal,
		errorsTotal:    errorsTotal,
		rejectedTotal:  rejectedTotal,
		eventsTotal:    eventsTotal,
		runsStarted:    runsStarted,
		runsEnded:      runsEnded,
		stepsCompleted: stepsCompleted,
		runTimeSeconds: runTimeSeconds,
		activeRuns:     activeRuns,
		ticksTotal:     ticksTotal,
	}
}

// IncRequests counts one request.
func (m *Metrics) IncRequests(method, route string, status int) {
	m.requestsTotal.WithLabelValues(method, route, statusLabel(status)).Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncRejected increments the rejected transitions counter.
func (m *Metrics) IncRejected() {
	m.rejectedTotal.Inc()
}

// IncTicks increments the driver tick counter.
func (m *Metrics) IncTicks() {
	m.ticksTotal.Inc()
}

// SetActiveRuns sets the active runs gauge.
func (m *Metrics) SetActiveRuns(n int) {
	m.activeRuns.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. active runs).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
