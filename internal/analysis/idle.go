package analysis

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/costscope/costscope/internal/metrics"
)

// IdleClassifier flags instances whose CPU utilization stayed below both the
// average and the maximum threshold over the sampling window.
type IdleClassifier struct {
	cfg Config
	log logrus.FieldLogger
}

// NewIdleClassifier creates an idle classifier with the given thresholds.
func NewIdleClassifier(log logrus.FieldLogger, cfg Config) *IdleClassifier {
	return &IdleClassifier{
		cfg: cfg,
		log: log.WithField("component", "idle_classifier"),
	}
}

// Classify returns a finding for every sample below both thresholds.
// Samples without any datapoints carry no utilization evidence and are
// excluded rather than treated as idle. The classifier never looks at
// instance lifecycle state; callers only pass samples they want evaluated.
func (c *IdleClassifier) Classify(samples []UtilizationSample) []IdleFinding {
	findings := []IdleFinding{}
	for _, sample := range samples {
		if sample.InstanceID == "" {
			c.log.Warn("skipping utilization sample: missing instance id")
			metrics.IncSkippedRecords("utilization_sample")
			continue
		}
		if sample.Datapoints == 0 {
			c.log.Debugf("no CPU utilization data for instance %s, excluding from idle check", sample.InstanceID)
			continue
		}
		if sample.Average >= c.cfg.IdleAvgCPUThreshold || sample.Maximum >= c.cfg.IdleMaxCPUThreshold {
			continue
		}
		findings = append(findings, IdleFinding{
			InstanceID: sample.InstanceID,
			Region:     sample.Region,
			AvgCPU:     sample.Average,
			MaxCPU:     sample.Maximum,
			Reason:     c.reason(sample),
		})
	}
	return findings
}

func (c *IdleClassifier) reason(sample UtilizationSample) string {
	window := sample.WindowDays
	if window == 0 {
		window = c.cfg.IdleWindowDays
	}
	return fmt.Sprintf("Avg CPU (%.2f%%) < %.1f%% and Max CPU (%.2f%%) < %.1f%% over last %d days",
		sample.Average, c.cfg.IdleAvgCPUThreshold, sample.Maximum, c.cfg.IdleMaxCPUThreshold, window)
}
