package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/costscope/costscope/internal/analysis"
	"github.com/costscope/costscope/internal/config"
	"github.com/costscope/costscope/internal/server"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyses over an HTTP JSON API",
		Long: `Start an HTTP server exposing every analysis under /api, a health
probe under /healthz and Prometheus metrics under /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	serveCmd.Flags().String("addr", ":8080", "Listen address for the HTTP API")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := buildProvider(ctx, log, cfg)
	if err != nil {
		return err
	}

	svc := analysis.NewService(log, cfg.Analysis)
	return server.New(log, cfg.Server.Addr, provider, svc).Run(ctx)
}
