package providers

import (
	"context"
	"time"

	"github.com/costscope/costscope/internal/analysis"
	"github.com/costscope/costscope/internal/metrics"
)

type instrumented struct {
	next Provider
}

// WithMetrics wraps a provider so that every fetch reports its duration
// under the source it talks to.
func WithMetrics(next Provider) Provider {
	return &instrumented{next: next}
}

func (i *instrumented) GetName() string {
	return i.next.GetName()
}

func (i *instrumented) GetRegion() string {
	return i.next.GetRegion()
}

func (i *instrumented) GetCostByService(ctx context.Context, days int) ([]analysis.CostLineItem, error) {
	defer metrics.ObserveFetchDuration(SourceCostExplorer, time.Now())
	return i.next.GetCostByService(ctx, days)
}

func (i *instrumented) GetDailyCosts(ctx context.Context, days int) ([]analysis.DailyCostPoint, error) {
	defer metrics.ObserveFetchDuration(SourceCostExplorer, time.Now())
	return i.next.GetDailyCosts(ctx, days)
}

func (i *instrumented) GetCPUUtilization(ctx context.Context, windowDays int) ([]analysis.UtilizationSample, error) {
	defer metrics.ObserveFetchDuration(SourceCloudWatch, time.Now())
	return i.next.GetCPUUtilization(ctx, windowDays)
}

func (i *instrumented) GetTaggedResources(ctx context.Context) ([]analysis.TaggedResource, error) {
	defer metrics.ObserveFetchDuration(SourceEC2, time.Now())
	return i.next.GetTaggedResources(ctx)
}

func (i *instrumented) GetVolumes(ctx context.Context) ([]analysis.VolumeDescriptor, error) {
	defer metrics.ObserveFetchDuration(SourceEC2, time.Now())
	return i.next.GetVolumes(ctx)
}
