package worker

import (
	"ft-crawler/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the scraper worker.
// It embeds the shared config metrics and adds worker-specific metrics
// for scheduled job tracking.
//
// Embedded metrics (from config.Metrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Worker-specific metrics:
//   - worker_scrape_job_runs_total: Total scheduled runs by status
//   - worker_scrape_job_duration_seconds: Duration histogram of scrape runs
//   - worker_scrape_job_articles_saved_total: Articles saved across all runs
//   - worker_scrape_job_skipped_total: Runs skipped because one was in progress
//   - worker_scrape_job_last_success_timestamp: Unix timestamp of last success
type WorkerMetrics struct {
	*config.Metrics

	// ScrapeJobRunsTotal counts scheduled job runs.
	// Labels: status (success, failure)
	ScrapeJobRunsTotal *prometheus.CounterVec

	// ScrapeJobDurationSeconds measures scrape run duration.
	// Buckets cover seconds to half an hour, matching typical crawls.
	ScrapeJobDurationSeconds prometheus.Histogram

	// ScrapeJobArticlesSavedTotal counts articles saved per job run.
	ScrapeJobArticlesSavedTotal prometheus.Counter

	// ScrapeJobSkippedTotal counts triggers skipped because the previous
	// run was still executing.
	ScrapeJobSkippedTotal prometheus.Counter

	// ScrapeJobLastSuccessTimestamp records the Unix timestamp of the
	// last successful run.
	ScrapeJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a WorkerMetrics instance with all metrics
// initialized and auto-registered via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		Metrics: config.NewMetrics("worker"),

		ScrapeJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_scrape_job_runs_total",
			Help: "Total number of scheduled scrape runs by status (success/failure)",
		}, []string{"status"}),

		ScrapeJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_scrape_job_duration_seconds",
			Help:    "Duration of scrape run execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		ScrapeJobArticlesSavedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_scrape_job_articles_saved_total",
			Help: "Total number of articles saved across all scrape runs",
		}),

		ScrapeJobSkippedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_scrape_job_skipped_total",
			Help: "Total number of triggers skipped because a run was in progress",
		}),

		ScrapeJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_scrape_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scrape run",
		}),
	}
}

// MustRegister is a no-op kept for the conventional initialization shape;
// metrics are auto-registered via promauto when created.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordJobRun increments the job run counter for the given status.
// Status should be either "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.ScrapeJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a scrape run, in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.ScrapeJobDurationSeconds.Observe(seconds)
}

// RecordArticlesSaved adds the number of articles saved by one run.
func (m *WorkerMetrics) RecordArticlesSaved(count int64) {
	m.ScrapeJobArticlesSavedTotal.Add(float64(count))
}

// RecordJobSkipped counts a trigger skipped due to an in-progress run.
func (m *WorkerMetrics) RecordJobSkipped() {
	m.ScrapeJobSkippedTotal.Inc()
}

// RecordLastSuccess records the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.ScrapeJobLastSuccessTimestamp.SetToCurrentTime()
}
