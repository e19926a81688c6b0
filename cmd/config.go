package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/costscope/costscope/internal/analysis"
)

const configHeader = `# costscope configuration.
# Every value below is the built-in default. COSTSCOPE_* environment
# variables (e.g. COSTSCOPE_AWS_REGION) and command line flags override
# whatever is set here.
`

// configDocument mirrors config.Config with the keys in the order the
// generated file should list them.
type configDocument struct {
	Output string `yaml:"output"`
	AWS    struct {
		Region  string `yaml:"region"`
		Profile string `yaml:"profile"`
	} `yaml:"aws"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Analysis struct {
		CostWindowDays      int      `yaml:"cost_window_days"`
		IdleAvgCPUThreshold float64  `yaml:"idle_avg_cpu_threshold"`
		IdleMaxCPUThreshold float64  `yaml:"idle_max_cpu_threshold"`
		IdleWindowDays      int      `yaml:"idle_window_days"`
		RequiredTags        []string `yaml:"required_tags"`
		AnomalyHistoryDays  int      `yaml:"anomaly_history_days"`
		AnomalyMultiplier   float64  `yaml:"anomaly_multiplier"`
		AnomalyMinHistory   int      `yaml:"anomaly_min_history"`
	} `yaml:"analysis"`
}

func init() {
	var configPath string

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a default configuration file",
		Long:  `Write a configuration file populated with the built-in defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := generateDefaultConfig(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("Configuration file generated at: %s\n", path)
			return nil
		},
	}

	generateCmd.Flags().StringVarP(&configPath, "path", "f", "", "Path to save the configuration file (default is $HOME/.costscope.yaml)")

	configCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(configCmd)
}

func generateDefaultConfig(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		path = filepath.Join(home, ".costscope.yaml")
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("configuration file already exists at %s, use --path to pick a different location", path)
	}

	document, err := defaultConfigDocument()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("could not create directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, document, 0644); err != nil {
		return "", fmt.Errorf("could not write configuration file: %w", err)
	}

	return path, nil
}

func defaultConfigDocument() ([]byte, error) {
	defaults := analysis.DefaultConfig()

	var document configDocument
	document.Output = "table"
	document.AWS.Region = "us-east-1"
	document.AWS.Profile = ""
	document.Server.Addr = ":8080"
	document.Log.Level = "info"
	document.Analysis.CostWindowDays = defaults.CostWindowDays
	document.Analysis.IdleAvgCPUThreshold = defaults.IdleAvgCPUThreshold
	document.Analysis.IdleMaxCPUThreshold = defaults.IdleMaxCPUThreshold
	document.Analysis.IdleWindowDays = defaults.IdleWindowDays
	document.Analysis.RequiredTags = defaults.RequiredTags
	document.Analysis.AnomalyHistoryDays = defaults.AnomalyHistoryDays
	document.Analysis.AnomalyMultiplier = defaults.AnomalyMultiplier
	document.Analysis.AnomalyMinHistory = defaults.AnomalyMinHistory

	body, err := yaml.Marshal(&document)
	if err != nil {
		return nil, fmt.Errorf("marshaling default config: %w", err)
	}

	return append([]byte(configHeader), body...), nil
}
