package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/costscope/costscope/internal/metrics"
)

// CostAggregator folds cost line items into per-service totals.
type CostAggregator struct {
	log logrus.FieldLogger
}

// NewCostAggregator creates a cost aggregator.
func NewCostAggregator(log logrus.FieldLogger) *CostAggregator {
	return &CostAggregator{
		log: log.WithField("component", "cost_aggregator"),
	}
}

// SumByService sums line-item amounts per service with decimal precision.
// Service names are used exactly as the billing source reports them, the
// result is order-invariant, and empty input yields an empty map. Items
// without a service name are skipped with a note.
func (a *CostAggregator) SumByService(items []CostLineItem) ServiceCosts {
	totals := ServiceCosts{}
	for _, item := range items {
		if item.Service == "" {
			a.log.Warnf("skipping cost line item dated %s: missing service name", item.Date.Format("2006-01-02"))
			metrics.IncSkippedRecords("cost_line_item")
			continue
		}
		totals[item.Service] = totals[item.Service].Add(item.Amount)
	}
	return totals
}
