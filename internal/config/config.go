package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/costscope/costscope/internal/analysis"
)

// Config holds the application configuration.
type Config struct {
	Output   string `mapstructure:"output"`
	AWS      AWSConfig
	Server   ServerConfig
	Log      LogConfig
	Analysis analysis.Config
}

// AWSConfig holds AWS-specific configuration.
type AWSConfig struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from flags bound to viper, COSTSCOPE_*
// environment variables, the config file and built-in defaults, in that
// order of precedence. The stock AWS_REGION and AWS_PROFILE variables are
// honored too so the usual credential tooling keeps working.
func Load() (*Config, error) {
	setDefaults()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting user home directory: %w", err)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".costscope")
	}

	viper.SetEnvPrefix("COSTSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("aws.region", "COSTSCOPE_AWS_REGION", "AWS_REGION")
	viper.BindEnv("aws.profile", "COSTSCOPE_AWS_PROFILE", "AWS_PROFILE")

	// Missing config files are fine, the defaults carry the run.
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	defaults := analysis.DefaultConfig()

	viper.SetDefault("output", "table")
	viper.SetDefault("aws.region", "us-east-1")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("analysis.cost_window_days", defaults.CostWindowDays)
	viper.SetDefault("analysis.idle_avg_cpu_threshold", defaults.IdleAvgCPUThreshold)
	viper.SetDefault("analysis.idle_max_cpu_threshold", defaults.IdleMaxCPUThreshold)
	viper.SetDefault("analysis.idle_window_days", defaults.IdleWindowDays)
	viper.SetDefault("analysis.required_tags", defaults.RequiredTags)
	viper.SetDefault("analysis.anomaly_history_days", defaults.AnomalyHistoryDays)
	viper.SetDefault("analysis.anomaly_multiplier", defaults.AnomalyMultiplier)
	viper.SetDefault("analysis.anomaly_min_history", defaults.AnomalyMinHistory)
}

// Validate rejects configurations the analyses cannot run with.
func (c *Config) Validate() error {
	if c.Output != "table" && c.Output != "json" {
		return fmt.Errorf("unsupported output format: %s", c.Output)
	}
	if c.AWS.Region == "" {
		return errors.New("aws region is empty")
	}
	if c.Server.Addr == "" {
		return errors.New("server address is empty")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	return c.Analysis.Validate()
}

// LogLevel returns the parsed logrus level. Call Validate first.
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
