// Package metrics records per-run counters for the scraper and calendar builder.
//
// Each command builds a Recorder backed by its own Prometheus registry. After a
// run the registry can be written in the text exposition format, which is what
// the node_exporter textfile collector picks up for batch jobs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ct_events"

// Fetch results used as the "result" label
const (
	ResultOK        = "ok"
	ResultNoDate    = "no_date"
	ResultFetchFail = "fetch_error"
	ResultError     = "error"
)

// Recorder holds the metrics of one process
type Recorder struct {
	registry *prometheus.Registry

	siteResults    *prometheus.CounterVec
	calendarEvents *prometheus.GaugeVec
	runDuration    *prometheus.GaugeVec
	lastSuccess    *prometheus.GaugeVec
}

// New creates a Recorder with all metrics registered
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		siteResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "site_results_total",
			Help:      "Scraped sites by outcome",
		}, []string{"site", "result"}),
		calendarEvents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calendar_events",
			Help:      "Events written to the calendar in the last run, by source",
		}, []string{"source"}),
		runDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run",
		}, []string{"pipeline"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}, []string{"pipeline"}),
	}

	r.registry.MustRegister(r.siteResults, r.calendarEvents, r.runDuration, r.lastSuccess)
	return r
}

// SiteResult counts one scraped site outcome
func (r *Recorder) SiteResult(site, result string) {
	r.siteResults.WithLabelValues(site, result).Inc()
}

// CalendarEvents sets how many events a source contributed
func (r *Recorder) CalendarEvents(source string, n int) {
	r.calendarEvents.WithLabelValues(source).Set(float64(n))
}

// RunFinished records the duration of a pipeline run and, when ok, its completion time
func (r *Recorder) RunFinished(pipeline string, started time.Time, ok bool) {
	r.runDuration.WithLabelValues(pipeline).Set(time.Since(started).Seconds())
	if ok {
		r.lastSuccess.WithLabelValues(pipeline).SetToCurrentTime()
	}
}

// WriteFile writes all metrics to path in the Prometheus text format.
// An empty path is a no-op.
func (r *Recorder) WriteFile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
