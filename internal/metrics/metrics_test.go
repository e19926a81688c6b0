package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func init() {
	timeSinceFn = func(t time.Time) time.Duration {
		return 1
	}
}

func TestAnalysesTotalMetric(t *testing.T) {
	r := require.New(t)

	IncAnalysesTotal(AnalysisCost, nil)
	IncAnalysesTotal(AnalysisCost, nil)
	IncAnalysesTotal(AnalysisIdle, errors.New("ups"))
	IncAnalysesTotal(AnalysisAnomaly, context.Canceled)

	problems, err := testutil.CollectAndLint(analysesTotal)
	r.NoError(err)
	r.Empty(problems)

	expected := `# HELP costscope_analyses_total Counter tracking analysis runs and statuses
# TYPE costscope_analyses_total counter
costscope_analyses_total{analysis="cost_anomaly",status="ok"} 1
costscope_analyses_total{analysis="cost_by_service",status="ok"} 2
costscope_analyses_total{analysis="idle_instances",status="error"} 1
`
	r.NoError(testutil.CollectAndCompare(analysesTotal, strings.NewReader(expected)))
}

func TestFetchDurationMetric(t *testing.T) {
	r := require.New(t)

	ObserveFetchDuration("cloudwatch", time.Now())

	expected := `# HELP costscope_fetch_duration_seconds Histogram tracking AWS fetch durations in seconds
# TYPE costscope_fetch_duration_seconds histogram
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="0.1"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="0.25"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="0.5"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="1"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="2.5"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="5"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="10"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="20"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="30"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="60"} 1
costscope_fetch_duration_seconds_bucket{source="cloudwatch",le="+Inf"} 1
costscope_fetch_duration_seconds_sum{source="cloudwatch"} 1e-09
costscope_fetch_duration_seconds_count{source="cloudwatch"} 1
`
	r.NoError(testutil.CollectAndCompare(fetchDuration, strings.NewReader(expected)))
}

func TestSkippedRecordsMetric(t *testing.T) {
	r := require.New(t)

	IncSkippedRecords("volume")
	IncSkippedRecords("volume")
	IncSkippedRecords("cost_line_item")

	problems, err := testutil.CollectAndLint(skippedRecords)
	r.NoError(err)
	r.Empty(problems)

	expected := `# HELP costscope_skipped_records_total Counter tracking malformed records skipped during analysis
# TYPE costscope_skipped_records_total counter
costscope_skipped_records_total{record="cost_line_item"} 1
costscope_skipped_records_total{record="volume"} 2
`
	r.NoError(testutil.CollectAndCompare(skippedRecords, strings.NewReader(expected)))
}
