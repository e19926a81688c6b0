package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/costscope/costscope/internal/analysis"
)

// CloudWatch metric details for the idle instance check.
const (
	ec2Namespace  = "AWS/EC2"
	cpuMetricName = "CPUUtilization"
	// One datapoint per day keeps the API call count low.
	metricPeriodSeconds = 86400
)

// GetCPUUtilization returns one sample per running instance, aggregated
// from daily CloudWatch datapoints over the trailing window. An instance
// whose metric fetch fails is logged and skipped so a single bad instance
// cannot sink the whole scan.
func (p *Provider) GetCPUUtilization(ctx context.Context, windowDays int) ([]analysis.UtilizationSample, error) {
	end := nowFn().UTC()
	start := end.AddDate(0, 0, -windowDays)

	ids, err := p.runningInstanceIDs(ctx)
	if err != nil {
		return nil, err
	}

	samples := []analysis.UtilizationSample{}
	for _, id := range ids {
		input := &cloudwatch.GetMetricStatisticsInput{
			Namespace:  stringPtr(ec2Namespace),
			MetricName: stringPtr(cpuMetricName),
			Dimensions: []types.Dimension{
				{Name: stringPtr("InstanceId"), Value: stringPtr(id)},
			},
			StartTime:  &start,
			EndTime:    &end,
			Period:     int32Ptr(metricPeriodSeconds),
			Statistics: []types.Statistic{types.StatisticAverage, types.StatisticMaximum},
			Unit:       types.StandardUnitPercent,
		}

		resp, err := p.cloudwatch.GetMetricStatistics(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.log.Errorf("fetching %s for instance %s: %v", cpuMetricName, id, err)
			continue
		}

		samples = append(samples, newUtilizationSample(id, p.region, windowDays, resp.Datapoints))
	}

	return samples, nil
}

func newUtilizationSample(id, region string, windowDays int, datapoints []types.Datapoint) analysis.UtilizationSample {
	sample := analysis.UtilizationSample{
		InstanceID: id,
		Region:     region,
		WindowDays: windowDays,
		Datapoints: len(datapoints),
	}

	var sum float64
	var counted int
	for _, dp := range datapoints {
		if dp.Average != nil {
			sum += *dp.Average
			counted++
		}
		if dp.Maximum != nil && *dp.Maximum > sample.Maximum {
			sample.Maximum = *dp.Maximum
		}
	}
	if counted > 0 {
		sample.Average = sum / float64(counted)
	}

	return sample
}
