// Package server exposes the cost analyses over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/costscope/costscope/internal/analysis"
	"github.com/costscope/costscope/internal/metrics"
	"github.com/costscope/costscope/internal/providers"
	"github.com/costscope/costscope/internal/providers/aws"
	"github.com/costscope/costscope/internal/reports"
)

// Server serves analysis results as JSON. Single-section endpoints hit the
// cloud APIs on demand; /api/overview fans out to all of them concurrently.
type Server struct {
	log      logrus.FieldLogger
	addr     string
	provider providers.Provider
	svc      *analysis.Service
	gen      *reports.Generator
	echo     *echo.Echo
}

func New(log logrus.FieldLogger, addr string, provider providers.Provider, svc *analysis.Service) *Server {
	s := &Server{
		log:      log.WithField("component", "http_server"),
		addr:     addr,
		provider: provider,
		svc:      svc,
		gen:      reports.NewGenerator(log, provider, svc),
	}

	e := echo.New()
	e.HideBanner = true
	e.Debug = false
	e.Use(middleware.Recover())

	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/cost-by-service", s.costByService)
	api.GET("/idle-instances", s.idleInstances)
	api.GET("/untagged-resources", s.untaggedResources)
	api.GET("/ebs-optimization", s.ebsOptimization)
	api.GET("/cost-anomalies", s.costAnomalies)
	api.GET("/overview", s.overview)
	api.GET("/regions", s.regions)

	s.echo = e
	return s
}

// Echo returns the underlying router so tests can drive it directly.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := http.Server{
		Addr:         s.addr,
		Handler:      s.echo,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 1 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		s.log.Info("shutting down http server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.log.Errorf("http server shutdown: %v", err)
		}
	}()

	s.log.Infof("running http server, addr=%s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(c echo.Context) error {
	type res struct {
		Msg string `json:"msg"`
	}
	return c.JSON(http.StatusOK, res{Msg: "Ok"})
}

func (s *Server) costByService(c echo.Context) error {
	days, ok := intParam(c, "days", s.svc.Config().CostWindowDays)
	if !ok {
		return badIntParam(c, "days")
	}
	items, err := s.provider.GetCostByService(c.Request().Context(), days)
	metrics.IncAnalysesTotal(metrics.AnalysisCost, err)
	if err != nil {
		return s.fetchError(c, "cost by service", err)
	}
	return c.JSON(http.StatusOK, s.svc.CostBreakdown(items).Rounded())
}

func (s *Server) idleInstances(c echo.Context) error {
	days, ok := intParam(c, "days", s.svc.Config().IdleWindowDays)
	if !ok {
		return badIntParam(c, "days")
	}
	samples, err := s.provider.GetCPUUtilization(c.Request().Context(), days)
	metrics.IncAnalysesTotal(metrics.AnalysisIdle, err)
	if err != nil {
		return s.fetchError(c, "idle instances", err)
	}
	return c.JSON(http.StatusOK, s.svc.IdleInstances(samples))
}

func (s *Server) untaggedResources(c echo.Context) error {
	resources, err := s.provider.GetTaggedResources(c.Request().Context())
	metrics.IncAnalysesTotal(metrics.AnalysisTags, err)
	if err != nil {
		// A partial inventory is still worth reporting on.
		if resources == nil {
			return s.fetchError(c, "untagged resources", err)
		}
		s.log.Warnf("resource inventory is partial: %v", err)
	}

	grouped := lo.GroupBy(s.svc.TagCompliance(resources), func(f analysis.TagFinding) string {
		return f.ResourceType
	})
	return c.JSON(http.StatusOK, echo.Map{
		"instances": orEmpty(grouped[analysis.ResourceTypeInstance]),
		"volumes":   orEmpty(grouped[analysis.ResourceTypeVolume]),
	})
}

func (s *Server) ebsOptimization(c echo.Context) error {
	volumes, err := s.provider.GetVolumes(c.Request().Context())
	metrics.IncAnalysesTotal(metrics.AnalysisStorage, err)
	if err != nil {
		return s.fetchError(c, "ebs optimization", err)
	}
	return c.JSON(http.StatusOK, s.svc.StorageOptimization(volumes, time.Now().UTC()))
}

func (s *Server) costAnomalies(c echo.Context) error {
	cfg := s.svc.Config()

	days, ok := intParam(c, "days", cfg.AnomalyHistoryDays)
	if !ok {
		return badIntParam(c, "days")
	}
	if raw := c.QueryParam("multiplier"); raw != "" {
		multiplier, err := strconv.ParseFloat(raw, 64)
		if err != nil || multiplier <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": `query parameter "multiplier" must be a positive number`,
			})
		}
		cfg.AnomalyMultiplier = multiplier
	}

	points, err := s.provider.GetDailyCosts(c.Request().Context(), days)
	metrics.IncAnalysesTotal(metrics.AnalysisAnomaly, err)
	if err != nil {
		return s.fetchError(c, "cost anomalies", err)
	}
	return c.JSON(http.StatusOK, analysis.NewAnomalyDetector(s.log, cfg).Detect(points))
}

func (s *Server) overview(c echo.Context) error {
	report, err := s.gen.Generate(c.Request().Context(), reports.TypeAll)
	if err != nil {
		return s.fetchError(c, "overview", err)
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) regions(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"current": s.provider.GetRegion(),
		"regions": aws.SupportedRegions(),
	})
}

func (s *Server) fetchError(c echo.Context, what string, err error) error {
	s.log.Errorf("%s request failed: %v", what, err)
	return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
}

func intParam(c echo.Context, name string, fallback int) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func badIntParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error": fmt.Sprintf("query parameter %q must be a positive integer", name),
	})
}

func orEmpty(findings []analysis.TagFinding) []analysis.TagFinding {
	if findings == nil {
		return []analysis.TagFinding{}
	}
	return findings
}
