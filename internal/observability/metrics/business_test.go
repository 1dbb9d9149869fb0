package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordScrapeRun(t *testing.T) {
	tests := []struct {
		name     string
		runType  string
		status   string
		duration time.Duration
	}{
		{
			name:     "initial success",
			runType:  "initial",
			status:   "success",
			duration: 5 * time.Minute,
		},
		{
			name:     "incremental success",
			runType:  "incremental",
			status:   "success",
			duration: 30 * time.Second,
		},
		{
			name:     "incremental failure",
			runType:  "incremental",
			status:   "failure",
			duration: 2 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ScrapeRunsTotal.WithLabelValues(tt.runType, tt.status))

			RecordScrapeRun(tt.runType, tt.status, tt.duration)

			after := testutil.ToFloat64(ScrapeRunsTotal.WithLabelValues(tt.runType, tt.status))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRecordScrapeCounters(t *testing.T) {
	foundBefore := testutil.ToFloat64(ArticlesFoundTotal)
	scrapedBefore := testutil.ToFloat64(ArticlesScrapedTotal)
	savedBefore := testutil.ToFloat64(ArticlesProcessedTotal.WithLabelValues("saved"))

	RecordScrapeCounters(10, 8, 5, 3, 0)

	assert.Equal(t, foundBefore+10, testutil.ToFloat64(ArticlesFoundTotal))
	assert.Equal(t, scrapedBefore+8, testutil.ToFloat64(ArticlesScrapedTotal))
	assert.Equal(t, savedBefore+5, testutil.ToFloat64(ArticlesProcessedTotal.WithLabelValues("saved")))
}

func TestRecordArticleOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome string
	}{
		{name: "saved", outcome: "saved"},
		{name: "skipped", outcome: "skipped"},
		{name: "errored", outcome: "errored"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ArticlesProcessedTotal.WithLabelValues(tt.outcome))

			RecordArticleOutcome(tt.outcome)

			after := testutil.ToFloat64(ArticlesProcessedTotal.WithLabelValues(tt.outcome))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestSetLastScrapeSuccess(t *testing.T) {
	now := time.Now()

	SetLastScrapeSuccess(now)

	assert.Equal(t, float64(now.Unix()), testutil.ToFloat64(LastScrapeSuccessTimestamp))
}

func TestRecordPageFetchError(t *testing.T) {
	before := testutil.ToFloat64(PageFetchErrors.WithLabelValues("timeout"))

	RecordPageFetchError("timeout")

	after := testutil.ToFloat64(PageFetchErrors.WithLabelValues("timeout"))
	assert.Equal(t, before+1, after)
}

func TestUpdateDBConnectionStats(t *testing.T) {
	UpdateDBConnectionStats(7, 3)

	assert.Equal(t, float64(7), testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, float64(3), testutil.ToFloat64(DBConnectionsIdle))
}
