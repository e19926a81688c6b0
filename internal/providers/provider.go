package providers

import (
	"context"

	"github.com/costscope/costscope/internal/analysis"
)

// Fetch sources, used as the metric label for fetch durations.
const (
	SourceCostExplorer = "costexplorer"
	SourceCloudWatch   = "cloudwatch"
	SourceEC2          = "ec2"
)

// Provider interface that must be implemented by each cloud provider.
// Implementations return analysis records as fetched and leave all
// interpretation to the analysis package.
type Provider interface {
	// GetName returns the short provider name, e.g. "aws".
	GetName() string

	// GetRegion returns the region the provider is bound to.
	GetRegion() string

	// GetCostByService retrieves one cost line item per service and
	// billing period over the trailing number of days.
	GetCostByService(ctx context.Context, days int) ([]analysis.CostLineItem, error)

	// GetDailyCosts retrieves the total account cost per day over the
	// trailing number of days, oldest day first.
	GetDailyCosts(ctx context.Context, days int) ([]analysis.DailyCostPoint, error)

	// GetCPUUtilization retrieves one utilization sample per running
	// instance over the trailing window.
	GetCPUUtilization(ctx context.Context, windowDays int) ([]analysis.UtilizationSample, error)

	// GetTaggedResources retrieves the tag inventory. When a later
	// listing fails the resources gathered so far are returned together
	// with the error.
	GetTaggedResources(ctx context.Context) ([]analysis.TaggedResource, error)

	// GetVolumes retrieves every block storage volume in the region.
	GetVolumes(ctx context.Context) ([]analysis.VolumeDescriptor, error)
}
