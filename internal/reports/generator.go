package reports

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/costscope/costscope/internal/analysis"
	"github.com/costscope/costscope/internal/metrics"
	"github.com/costscope/costscope/internal/providers"
)

// Generator fetches provider data for the requested report type, feeds it
// through the analysis service and bundles the outcome into a Report.
type Generator struct {
	log      logrus.FieldLogger
	provider providers.Provider
	svc      *analysis.Service
}

// NewGenerator creates a report generator bound to one provider.
func NewGenerator(log logrus.FieldLogger, provider providers.Provider, svc *analysis.Service) *Generator {
	return &Generator{
		log:      log.WithField("component", "report_generator"),
		provider: provider,
		svc:      svc,
	}
}

// Generate runs the analyses behind the requested report type, fetching
// section inputs concurrently. A single-section report fails on fetch
// errors; a full report degrades the failed section to an Errors entry
// and keeps the rest.
func (g *Generator) Generate(ctx context.Context, reportType string) (*Report, error) {
	switch reportType {
	case TypeCost, TypeIdle, TypeTags, TypeStorage, TypeAnomaly, TypeAll:
	default:
		return nil, fmt.Errorf("unsupported report type: %s", reportType)
	}

	report := &Report{
		Provider:    g.provider.GetName(),
		Region:      g.provider.GetRegion(),
		GeneratedAt: time.Now().UTC(),
	}

	var (
		mu sync.Mutex
		in analysis.OverviewInput
	)
	failFast := reportType != TypeAll
	record := func(section string, err error) {
		g.log.Errorf("section %s failed: %v", section, err)
		mu.Lock()
		defer mu.Unlock()
		if report.Errors == nil {
			report.Errors = map[string]string{}
		}
		report.Errors[section] = err.Error()
	}

	cfg := g.svc.Config()
	eg, egCtx := errgroup.WithContext(ctx)
	run := func(kind metrics.Analysis, section string, fetch func(context.Context) error) func() error {
		return func() error {
			err := fetch(egCtx)
			metrics.IncAnalysesTotal(kind, err)
			if err == nil {
				return nil
			}
			if failFast {
				return fmt.Errorf("%s: %w", section, err)
			}
			record(section, err)
			return nil
		}
	}
	want := func(t string) bool { return reportType == TypeAll || reportType == t }

	if want(TypeCost) {
		eg.Go(run(metrics.AnalysisCost, "cost_by_service", func(ctx context.Context) error {
			items, err := g.provider.GetCostByService(ctx, cfg.CostWindowDays)
			if err != nil {
				return err
			}
			in.CostItems = items
			return nil
		}))
	}
	if want(TypeIdle) {
		eg.Go(run(metrics.AnalysisIdle, "idle_instances", func(ctx context.Context) error {
			samples, err := g.provider.GetCPUUtilization(ctx, cfg.IdleWindowDays)
			if err != nil {
				return err
			}
			in.Utilization = samples
			return nil
		}))
	}
	if want(TypeTags) {
		eg.Go(run(metrics.AnalysisTags, "untagged_resources", func(ctx context.Context) error {
			// Partial inventories are still worth reporting on.
			resources, err := g.provider.GetTaggedResources(ctx)
			if resources != nil {
				in.Resources = resources
			}
			return err
		}))
	}
	if want(TypeStorage) {
		eg.Go(run(metrics.AnalysisStorage, "ebs_optimization", func(ctx context.Context) error {
			volumes, err := g.provider.GetVolumes(ctx)
			if err != nil {
				return err
			}
			in.Volumes = volumes
			return nil
		}))
	}
	if want(TypeAnomaly) {
		eg.Go(run(metrics.AnalysisAnomaly, "cost_anomaly", func(ctx context.Context) error {
			points, err := g.provider.GetDailyCosts(ctx, cfg.AnomalyHistoryDays)
			if err != nil {
				return err
			}
			in.DailyCosts = points
			return nil
		}))
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	in.AsOf = report.GeneratedAt
	report.Overview = g.svc.Overview(in)
	return report, nil
}
