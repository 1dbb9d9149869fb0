// Package slo tracks service level objectives for the crawl pipeline.
//
// The objectives cover data freshness (how stale the newest run is),
// run reliability (fraction of recent runs that completed without
// article errors), and per-article error rate. The gauges are updated
// periodically from the recorded run history.
package slo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ft-crawler/internal/domain/entity"
)

// SLO targets for the crawl pipeline.
const (
	// FreshnessSLO is the maximum acceptable age of the newest run.
	// Runs are scheduled hourly, so two missed intervals breach the target.
	FreshnessSLO = 2 * time.Hour

	// RunSuccessRateSLO is the minimum fraction of recent runs that must
	// complete without any article errors.
	RunSuccessRateSLO = 0.95

	// ArticleErrorRateSLO is the maximum acceptable ratio of errored
	// articles to discovered articles across recent runs.
	ArticleErrorRateSLO = 0.05
)

var (
	// CrawlFreshness is the age in seconds of the newest recorded run.
	CrawlFreshness = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_crawl_freshness_seconds",
			Help: "Age of the newest crawl run in seconds, target: < 7200",
		},
	)

	// RunSuccessRate is the fraction (0-1) of recent runs without article errors.
	RunSuccessRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_run_success_ratio",
			Help: "Fraction of recent crawl runs without article errors, target: > 0.95",
		},
	)

	// ArticleErrorRate is the ratio (0-1) of errored to discovered articles.
	ArticleErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_article_error_ratio",
			Help: "Ratio of errored articles to discovered articles, target: < 0.05",
		},
	)

	// Compliance reports per-objective compliance as 0 or 1.
	Compliance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "slo_compliance",
			Help: "Whether each SLO is currently met (1) or breached (0)",
		},
		[]string{"objective"},
	)
)

// Evaluate recomputes the SLO gauges from the given run history. The runs
// are expected newest first, as returned by the run repository. An empty
// history leaves the gauges untouched so a fresh deployment does not
// report a breach before the first run.
func Evaluate(runs []*entity.ScrapeRun, now time.Time) {
	if len(runs) == 0 {
		return
	}

	freshness := now.Sub(runs[0].StartedAt)
	CrawlFreshness.Set(freshness.Seconds())
	setCompliance("freshness", freshness <= FreshnessSLO)

	var clean int
	var found, errored int64
	for _, run := range runs {
		if run.Errors == 0 {
			clean++
		}
		found += run.Found
		errored += run.Errors
	}

	successRate := float64(clean) / float64(len(runs))
	RunSuccessRate.Set(successRate)
	setCompliance("run_success_rate", successRate >= RunSuccessRateSLO)

	errorRate := 0.0
	if found > 0 {
		errorRate = float64(errored) / float64(found)
	}
	ArticleErrorRate.Set(errorRate)
	setCompliance("article_error_rate", errorRate <= ArticleErrorRateSLO)
}

func setCompliance(objective string, met bool) {
	v := 0.0
	if met {
		v = 1.0
	}
	Compliance.WithLabelValues(objective).Set(v)
}
