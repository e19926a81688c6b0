package analysis

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Service is the analysis facade. It wires the classifiers together behind
// one method per analysis type and performs no fetching, no I/O, and no
// formatting beyond what the components themselves produce.
type Service struct {
	cfg     Config
	log     logrus.FieldLogger
	costs   *CostAggregator
	idle    *IdleClassifier
	tags    *TagChecker
	storage *StorageClassifier
	anomaly *AnomalyDetector
}

// NewService creates the facade and its components from one config.
func NewService(log logrus.FieldLogger, cfg Config) *Service {
	return &Service{
		cfg:     cfg,
		log:     log.WithField("component", "analysis"),
		costs:   NewCostAggregator(log),
		idle:    NewIdleClassifier(log, cfg),
		tags:    NewTagChecker(log, cfg),
		storage: NewStorageClassifier(log, cfg),
		anomaly: NewAnomalyDetector(log, cfg),
	}
}

// Config returns the configuration the facade was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// CostBreakdown aggregates cost line items per service.
func (s *Service) CostBreakdown(items []CostLineItem) ServiceCosts {
	return s.costs.SumByService(items)
}

// IdleInstances classifies utilization samples against the idle thresholds.
func (s *Service) IdleInstances(samples []UtilizationSample) []IdleFinding {
	return s.idle.Classify(samples)
}

// TagCompliance reports resources missing required tags.
func (s *Service) TagCompliance(resources []TaggedResource) []TagFinding {
	return s.tags.CheckResources(resources)
}

// StorageOptimization runs the unattached and gp2 rules over the inventory.
func (s *Service) StorageOptimization(volumes []VolumeDescriptor, asOf time.Time) StorageFindings {
	return s.storage.Classify(volumes, asOf)
}

// CostAnomaly scores the latest daily cost against its history.
func (s *Service) CostAnomaly(points []DailyCostPoint) AnomalyReport {
	return s.anomaly.Detect(points)
}

// OverviewInput carries the already-fetched data for a combined run. A nil
// slice is a typed absence: that section is skipped and rendered null. The
// sections are independent, so callers with a failed fetch simply leave the
// corresponding input nil.
type OverviewInput struct {
	CostItems   []CostLineItem
	Utilization []UtilizationSample
	Resources   []TaggedResource
	Volumes     []VolumeDescriptor
	DailyCosts  []DailyCostPoint
	AsOf        time.Time
}

// Overview bundles the result of every analysis that had input. Absent
// sections marshal as null, present-but-empty ones as empty collections.
// Costs are rounded floats here; callers needing exact amounts use
// CostBreakdown directly.
type Overview struct {
	CostByService     map[string]float64 `json:"cost_by_service"`
	IdleInstances     []IdleFinding      `json:"idle_instances"`
	UntaggedResources []TagFinding       `json:"untagged_resources"`
	Storage           *StorageFindings   `json:"ebs_optimization"`
	Anomaly           *AnomalyReport     `json:"cost_anomaly"`
}

// Overview runs every analysis whose input is present. One section's
// absence never affects another.
func (s *Service) Overview(in OverviewInput) Overview {
	var out Overview
	if in.CostItems != nil {
		out.CostByService = s.CostBreakdown(in.CostItems).Rounded()
	}
	if in.Utilization != nil {
		out.IdleInstances = s.IdleInstances(in.Utilization)
	}
	if in.Resources != nil {
		out.UntaggedResources = s.TagCompliance(in.Resources)
	}
	if in.Volumes != nil {
		findings := s.StorageOptimization(in.Volumes, in.AsOf)
		out.Storage = &findings
	}
	if in.DailyCosts != nil {
		report := s.CostAnomaly(in.DailyCosts)
		out.Anomaly = &report
	}
	return out
}
