package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/costscope/costscope/internal/config"
	"github.com/costscope/costscope/internal/providers"
	"github.com/costscope/costscope/internal/providers/aws"
)

var rootCmd = &cobra.Command{
	Use:   "costscope",
	Short: "Analyze AWS spend and surface savings opportunities",
	Long: `costscope connects to AWS Cost Explorer, CloudWatch and EC2 to break
down spend by service, spot idle instances, audit tag compliance,
flag EBS volumes worth optimizing and detect daily cost anomalies.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.costscope.yaml)")
	rootCmd.PersistentFlags().StringP("region", "r", "", "AWS region to analyze")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table, json)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("aws.region", rootCmd.PersistentFlags().Lookup("region"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(cfg.LogLevel())
	return log
}

func buildProvider(ctx context.Context, log logrus.FieldLogger, cfg *config.Config) (providers.Provider, error) {
	awsProvider, err := aws.New(ctx, log, aws.Config{
		Region:  cfg.AWS.Region,
		Profile: cfg.AWS.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing aws provider: %w", err)
	}
	return providers.WithMetrics(awsProvider), nil
}
