package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/shopspring/decimal"

	"github.com/costscope/costscope/internal/analysis"
	"github.com/costscope/costscope/internal/metrics"
)

const unblendedCost = "UnblendedCost"

// GetCostByService retrieves unblended costs grouped by service over the
// trailing number of days, one line item per service and billing period.
// Groups without a positive cost are dropped.
func (p *Provider) GetCostByService(ctx context.Context, days int) ([]analysis.CostLineItem, error) {
	end := nowFn().UTC()
	start := end.AddDate(0, 0, -days)

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: stringPtr(start.Format(dateLayout)),
			End:   stringPtr(end.Format(dateLayout)),
		},
		Granularity: types.GranularityMonthly,
		Metrics:     []string{unblendedCost},
		GroupBy: []types.GroupDefinition{
			{Type: types.GroupDefinitionTypeDimension, Key: stringPtr("SERVICE")},
		},
	}

	p.log.Debugf("fetching cost by service from %s to %s", start.Format(dateLayout), end.Format(dateLayout))

	items := []analysis.CostLineItem{}
	for {
		resp, err := p.costexplorer.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("getting cost and usage: %w", err)
		}

		for _, result := range resp.ResultsByTime {
			period, err := parsePeriodStart(result.TimePeriod)
			if err != nil {
				p.log.Warnf("skipping cost result with bad time period: %v", err)
				metrics.IncSkippedRecords("cost_result")
				continue
			}
			for _, group := range result.Groups {
				item, ok := p.costGroupItem(group, period)
				if !ok {
					continue
				}
				items = append(items, item)
			}
		}

		if resp.NextPageToken == nil {
			break
		}
		input.NextPageToken = resp.NextPageToken
	}

	return items, nil
}

// GetDailyCosts retrieves the total account cost per day over the trailing
// number of days, oldest day first.
func (p *Provider) GetDailyCosts(ctx context.Context, days int) ([]analysis.DailyCostPoint, error) {
	end := nowFn().UTC()
	start := end.AddDate(0, 0, -days)

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: stringPtr(start.Format(dateLayout)),
			End:   stringPtr(end.Format(dateLayout)),
		},
		Granularity: types.GranularityDaily,
		Metrics:     []string{unblendedCost},
	}

	p.log.Debugf("fetching daily costs from %s to %s", start.Format(dateLayout), end.Format(dateLayout))

	points := []analysis.DailyCostPoint{}
	for {
		resp, err := p.costexplorer.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("getting daily costs: %w", err)
		}

		for _, result := range resp.ResultsByTime {
			date, err := parsePeriodStart(result.TimePeriod)
			if err != nil {
				p.log.Warnf("skipping daily cost result with bad time period: %v", err)
				metrics.IncSkippedRecords("cost_result")
				continue
			}
			metric, ok := result.Total[unblendedCost]
			if !ok || metric.Amount == nil {
				p.log.Warnf("skipping daily cost result for %s without a total", date.Format(dateLayout))
				metrics.IncSkippedRecords("cost_result")
				continue
			}
			amount, err := decimal.NewFromString(*metric.Amount)
			if err != nil {
				p.log.Warnf("skipping daily cost result for %s: %v", date.Format(dateLayout), err)
				metrics.IncSkippedRecords("cost_result")
				continue
			}
			points = append(points, analysis.DailyCostPoint{Date: date, TotalCost: amount})
		}

		if resp.NextPageToken == nil {
			break
		}
		input.NextPageToken = resp.NextPageToken
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (p *Provider) costGroupItem(group types.Group, period time.Time) (analysis.CostLineItem, bool) {
	if len(group.Keys) == 0 {
		p.log.Warn("skipping cost group without a service key")
		metrics.IncSkippedRecords("cost_group")
		return analysis.CostLineItem{}, false
	}
	service := group.Keys[0]

	metric, ok := group.Metrics[unblendedCost]
	if !ok || metric.Amount == nil {
		p.log.Warnf("skipping cost group %s without an amount", service)
		metrics.IncSkippedRecords("cost_group")
		return analysis.CostLineItem{}, false
	}

	amount, err := decimal.NewFromString(*metric.Amount)
	if err != nil {
		p.log.Warnf("skipping cost group %s: %v", service, err)
		metrics.IncSkippedRecords("cost_group")
		return analysis.CostLineItem{}, false
	}
	if !amount.IsPositive() {
		return analysis.CostLineItem{}, false
	}

	return analysis.CostLineItem{Service: service, Date: period, Amount: amount}, true
}

func parsePeriodStart(period *types.DateInterval) (time.Time, error) {
	if period == nil || period.Start == nil {
		return time.Time{}, errors.New("missing period start")
	}
	return time.Parse(dateLayout, *period.Start)
}
