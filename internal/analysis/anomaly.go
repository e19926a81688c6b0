package analysis

import (
	"math"

	"github.com/sirupsen/logrus"
)

// AnomalyDetector judges the most recent day of spend against a mean plus
// standard-deviation threshold derived from the preceding history.
type AnomalyDetector struct {
	cfg Config
	log logrus.FieldLogger
}

// NewAnomalyDetector creates an anomaly detector.
func NewAnomalyDetector(log logrus.FieldLogger, cfg Config) *AnomalyDetector {
	return &AnomalyDetector{
		cfg: cfg,
		log: log.WithField("component", "anomaly_detector"),
	}
}

// Detect splits the ascending history into the latest point and its
// preceding baseline, then flags the latest cost when it exceeds
// mean + multiplier*stddev. The standard deviation is the population form
// (divide by N). With fewer baseline points than AnomalyMinHistory the
// report carries InsufficientData=true and IsAnomaly stays false; the mean
// and threshold are still computed from whatever history exists. The
// detector holds no state between invocations.
func (d *AnomalyDetector) Detect(points []DailyCostPoint) AnomalyReport {
	report := AnomalyReport{
		Multiplier:  d.cfg.AnomalyMultiplier,
		HistoryDays: len(points),
	}
	if len(points) == 0 {
		report.InsufficientData = true
		return report
	}

	latest := points[len(points)-1]
	history := points[:len(points)-1]
	report.LatestDate = latest.Date
	report.LatestCost = latest.TotalCost.InexactFloat64()

	if len(history) > 0 {
		var sum float64
		for _, point := range history {
			sum += point.TotalCost.InexactFloat64()
		}
		report.AverageCost = sum / float64(len(history))
	}
	if len(history) >= 2 {
		var squares float64
		for _, point := range history {
			diff := point.TotalCost.InexactFloat64() - report.AverageCost
			squares += diff * diff
		}
		report.StdDev = math.Sqrt(squares / float64(len(history)))
	}
	report.Threshold = report.AverageCost + report.Multiplier*report.StdDev

	if len(history) < d.cfg.AnomalyMinHistory {
		d.log.Debugf("only %d history points, below the %d point minimum, not flagging", len(history), d.cfg.AnomalyMinHistory)
		report.InsufficientData = true
		return report
	}

	report.IsAnomaly = report.LatestCost > report.Threshold
	return report
}
