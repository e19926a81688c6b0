// Package analysis is the decision core: pure, stateless transformations
// from fetched AWS records (cost line items, utilization samples, resource
// and volume descriptors, daily cost history) into classified findings.
// Components never perform I/O; all data arrives already fetched and
// deserialized, and identical inputs always produce identical outputs.
package analysis

import (
	"time"

	"github.com/shopspring/decimal"
)

// TagSet maps tag keys to values. Keys are case-sensitive and unordered.
type TagSet map[string]string

// AttachmentState is the attachment state of an EBS volume.
type AttachmentState string

const (
	// VolumeAvailable marks a volume not attached to any instance.
	VolumeAvailable AttachmentState = "available"
	// VolumeAttached marks a volume in use by an instance.
	VolumeAttached AttachmentState = "attached"
)

// CostLineItem is one billed amount for a (service, period) pair as reported
// by Cost Explorer. Amounts are decimals to keep summation drift-free.
type CostLineItem struct {
	Service string          `json:"service"`
	Date    time.Time       `json:"date"`
	Amount  decimal.Decimal `json:"amount"`
}

// ServiceCosts maps a service name, verbatim from the billing source, to its
// summed cost over the queried window.
type ServiceCosts map[string]decimal.Decimal

// Total returns the exact sum of all per-service totals.
func (sc ServiceCosts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range sc {
		total = total.Add(amount)
	}
	return total
}

// Rounded converts the totals to two-decimal floats for display and
// serialization at the boundary.
func (sc ServiceCosts) Rounded() map[string]float64 {
	out := make(map[string]float64, len(sc))
	for service, amount := range sc {
		out[service] = amount.Round(2).InexactFloat64()
	}
	return out
}

// Resource types inventoried for tag compliance.
const (
	ResourceTypeInstance = "instance"
	ResourceTypeVolume   = "volume"
)

// TaggedResource is an inventory record checked for tag compliance.
type TaggedResource struct {
	ResourceID   string `json:"resource_id"`
	ResourceType string `json:"resource_type"`
	Region       string `json:"region"`
	Tags         TagSet `json:"tags"`
}

// UtilizationSample is the per-instance CPU aggregate over the sampling
// window. Datapoints is the number of CloudWatch datapoints behind the
// aggregate; zero means no utilization evidence exists for the instance.
type UtilizationSample struct {
	InstanceID string  `json:"instance_id"`
	Region     string  `json:"region"`
	Average    float64 `json:"average"`
	Maximum    float64 `json:"maximum"`
	WindowDays int     `json:"window_days"`
	Datapoints int     `json:"datapoints"`
}

// VolumeDescriptor describes an EBS volume for storage optimization.
// CreatedAt is nil when the creation timestamp is unknown; the
// absence-to-placeholder mapping happens at the presentation layer.
type VolumeDescriptor struct {
	VolumeID   string          `json:"volume_id"`
	Region     string          `json:"region"`
	SizeGiB    int32           `json:"size_gib"`
	VolumeType string          `json:"volume_type"`
	State      AttachmentState `json:"state"`
	Tags       TagSet          `json:"tags"`
	CreatedAt  *time.Time      `json:"created_at,omitempty"`
}

// DailyCostPoint is one day of total spend, part of an ascending history.
type DailyCostPoint struct {
	Date      time.Time       `json:"date"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// IdleFinding reports an instance whose CPU stayed below both thresholds.
type IdleFinding struct {
	InstanceID string  `json:"instance_id"`
	Region     string  `json:"region"`
	AvgCPU     float64 `json:"avg_cpu"`
	MaxCPU     float64 `json:"max_cpu"`
	Reason     string  `json:"reason"`
}

// TagFinding reports a resource missing one or more required tags, in
// required-list order.
type TagFinding struct {
	ResourceID   string   `json:"resource_id"`
	ResourceType string   `json:"resource_type"`
	Region       string   `json:"region"`
	MissingTags  []string `json:"missing_tags"`
}

// StorageFinding reports a volume flagged by one of the storage rules.
// AgeDays is set only for unattached volumes with a known creation time;
// CurrentType only for migration candidates. Nil means not applicable.
type StorageFinding struct {
	VolumeID    string  `json:"volume_id"`
	Region      string  `json:"region"`
	SizeGiB     int32   `json:"size_gib"`
	AgeDays     *int    `json:"age_days,omitempty"`
	CurrentType *string `json:"current_type,omitempty"`
	Reason      string  `json:"reason"`
}

// StorageFindings holds the two independently addressable storage rule
// outcomes. A volume appears in at most one of the collections.
type StorageFindings struct {
	Unattached   []StorageFinding `json:"unattached_volumes"`
	GP2Migration []StorageFinding `json:"gp2_volumes"`
}

// AnomalyReport is the outcome of one anomaly detection pass over a daily
// cost history. HistoryDays echoes the number of points supplied; the last
// point is the one judged against the preceding baseline.
type AnomalyReport struct {
	LatestDate       time.Time `json:"latest_date"`
	LatestCost       float64   `json:"latest_cost"`
	AverageCost      float64   `json:"average_cost"`
	StdDev           float64   `json:"std_dev"`
	Multiplier       float64   `json:"std_dev_threshold"`
	Threshold        float64   `json:"threshold"`
	IsAnomaly        bool      `json:"is_anomaly"`
	HistoryDays      int       `json:"history_days"`
	InsufficientData bool      `json:"insufficient_data"`
}
