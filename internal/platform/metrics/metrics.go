package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the viewer engine.
type Metrics struct {
	registry            *prometheus.Registry
	requestsTotal       prometheus.Counter
	progressEventsTotal prometheus.Counter
	seeksTotal          prometheus.Counter
	cursorRedrawsTotal  prometheus.Counter
	jobsStartedTotal    prometheus.Counter
	jobsCompletedTotal  prometheus.Counter
	jobsFailedTotal     prometheus.Counter
	overallProgress     prometheus.Gauge
	errorsTotal         prometheus.Counter
}

// New creates and registers Prometheus metrics for the viewer.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oakview_requests_total",
		Help: "Total number of HTTP requests received on the debug endpoint",
	})
	progressEventsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oakview_progress_events_total",
		Help: "Total number of processing progress events consumed",
	})
	seeksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oakview_seeks_total",
		Help: "Total number of playback seeks performed",
	})
	cursorRedrawsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oakview_cursor_redraws_total",
		Help: "Total number of chart cursor redraws requested",
	})
	jobsStartedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oakview_jobs_started_total",
		Help: "Total number of processing jobs started",
	})
	jobsCompletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oakview_jobs_completed_total",
		Help: "Total number of processing jobs that reached done",
	})
	jobsFailedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oakview_jobs_failed_total",
		Help: "Total number of processing jobs that ended in error or lost transport",
	})
	overallProgress := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "oakview_overall_progress",
		Help: "Last overall progress fraction (0-1) of the active processing job",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oakview_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		progressEventsTotal,
		seeksTotal,
		cursorRedrawsTotal,
		jobsStartedTotal,
		jobsCompletedTotal,
		jobsFailedTotal,
		overallProgress,
		errorsTotal,
	)

	return &Metrics{
		registry:            registry,
		requestsTotal:       requestsTotal,
		progressEventsTotal: progressEventsTotal,
		seeksTotal:          seeksTotal,
		cursorRedrawsTotal:  cursorRedrawsTotal,
		jobsStartedTotal:    jobsStartedTotal,
		jobsCompletedTotal:  jobsCompletedTotal,
		jobsFailedTotal:     jobsFailedTotal,
		overallProgress:     overallProgress,
		errorsTotal:         errorsTotal,
	}
}

// IncRequests increments the debug endpoint request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncProgressEvents increments the progress events counter.
func (m *Metrics) IncProgressEvents() {
	m.progressEventsTotal.Inc()
}

// IncSeeks increments the seek counter.
func (m *Metrics) IncSeeks() {
	m.seeksTotal.Inc()
}

// IncCursorRedraws increments the cursor redraw counter.
func (m *Metrics) IncCursorRedraws() {
	m.cursorRedrawsTotal.Inc()
}

// IncJobsStarted increments the jobs started counter.
func (m *Metrics) IncJobsStarted() {
	m.jobsStartedTotal.Inc()
}

// IncJobsCompleted increments the jobs completed counter.
func (m *Metrics) IncJobsCompleted() {
	m.jobsCompletedTotal.Inc()
}

// IncJobsFailed increments the jobs failed counter.
func (m *Metrics) IncJobsFailed() {
	m.jobsFailedTotal.Inc()
}

// SetOverallProgress sets the overall progress gauge.
func (m *Metrics) SetOverallProgress(fraction float64) {
	m.overallProgress.Set(fraction)
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
