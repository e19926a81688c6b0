package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Analysis labels the analysis type a metric belongs to.
type Analysis string

const (
	AnalysisCost    Analysis = "cost_by_service"
	AnalysisIdle    Analysis = "idle_instances"
	AnalysisTags    Analysis = "untagged_resources"
	AnalysisStorage Analysis = "ebs_optimization"
	AnalysisAnomaly Analysis = "cost_anomaly"
)

// Status tells whether an analysis run completed or failed fetching.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

type timeSinceFunc func(t time.Time) time.Duration

// Used to override time sensitive properties in tests.
var timeSinceFn = timeSinceFunc(func(t time.Time) time.Duration {
	return time.Since(t)
})

var (
	analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "costscope_analyses_total",
		Help: "Counter tracking analysis runs and statuses",
	}, []string{"analysis", "status"})

	fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "costscope_fetch_duration_seconds",
		Help:    "Histogram tracking AWS fetch durations in seconds",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
	}, []string{"source"})

	skippedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "costscope_skipped_records_total",
		Help: "Counter tracking malformed records skipped during analysis",
	}, []string{"record"})
)

func init() {
	prometheus.MustRegister(
		analysesTotal,
		fetchDuration,
		skippedRecords,
	)
}

func status(err error) Status {
	if err != nil && !errors.Is(err, context.Canceled) {
		return StatusError
	}
	return StatusOK
}

func IncAnalysesTotal(analysis Analysis, err error) {
	analysesTotal.WithLabelValues(string(analysis), string(status(err))).Inc()
}

func ObserveFetchDuration(source string, start time.Time) {
	dur := timeSinceFn(start)
	fetchDuration.WithLabelValues(source).Observe(dur.Seconds())
}

func IncSkippedRecords(record string) {
	skippedRecords.WithLabelValues(record).Inc()
}
