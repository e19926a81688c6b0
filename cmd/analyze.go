package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/costscope/costscope/internal/analysis"
	"github.com/costscope/costscope/internal/config"
	"github.com/costscope/costscope/internal/reports"
)

func init() {
	var (
		reportType string
		days       int
		outPath    string
	)

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run cost analyses and print a report",
		Long: `Run one analysis or all of them against the configured AWS account and
write the report to stdout or a file.

Report types: cost, idle, tags, storage, anomaly, all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), reportType, days, outPath)
		},
	}

	analyzeCmd.Flags().StringVarP(&reportType, "type", "t", reports.TypeAll, "Report type: cost, idle, tags, storage, anomaly or all")
	analyzeCmd.Flags().IntVar(&days, "days", 0, "Override the analysis lookback windows in days")
	analyzeCmd.Flags().StringVar(&outPath, "out", "", "Write the report to a file instead of stdout")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(ctx context.Context, reportType string, days int, outPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if days < 0 {
		return fmt.Errorf("days must be positive, got %d", days)
	}
	if days > 0 {
		cfg.Analysis.CostWindowDays = days
		cfg.Analysis.IdleWindowDays = days
		cfg.Analysis.AnomalyHistoryDays = days
	}

	log := newLogger(cfg)

	provider, err := buildProvider(ctx, log, cfg)
	if err != nil {
		return err
	}

	svc := analysis.NewService(log, cfg.Analysis)
	report, err := reports.NewGenerator(log, provider, svc).Generate(ctx, reportType)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return report.Output(w, cfg.Output)
}
