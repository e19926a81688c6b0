package analysis

import "fmt"

// Config carries the policy thresholds for every analysis. All former
// hard-coded defaults live in DefaultConfig; callers override per run by
// passing a modified copy into the component constructors.
type Config struct {
	// CostWindowDays is the trailing window for the cost-by-service breakdown.
	CostWindowDays int `mapstructure:"cost_window_days"`

	// IdleAvgCPUThreshold and IdleMaxCPUThreshold are the CPU percentages an
	// instance must stay below to be classified idle. IdleWindowDays is the
	// metric lookback used when a sample does not carry its own window.
	IdleAvgCPUThreshold float64 `mapstructure:"idle_avg_cpu_threshold"`
	IdleMaxCPUThreshold float64 `mapstructure:"idle_max_cpu_threshold"`
	IdleWindowDays      int     `mapstructure:"idle_window_days"`

	// RequiredTags are the tag keys every resource must carry. Missing-tag
	// findings report absences in this exact order.
	RequiredTags []string `mapstructure:"required_tags"`

	// AnomalyHistoryDays is the daily cost lookback, AnomalyMultiplier the
	// standard-deviation multiple above the mean that flags an anomaly, and
	// AnomalyMinHistory the minimum number of preceding points required
	// before the detector will flag anything.
	AnomalyHistoryDays int     `mapstructure:"anomaly_history_days"`
	AnomalyMultiplier  float64 `mapstructure:"anomaly_multiplier"`
	AnomalyMinHistory  int     `mapstructure:"anomaly_min_history"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CostWindowDays:      30,
		IdleAvgCPUThreshold: 5.0,
		IdleMaxCPUThreshold: 10.0,
		IdleWindowDays:      14,
		RequiredTags:        []string{"Project", "Owner"},
		AnomalyHistoryDays:  60,
		AnomalyMultiplier:   2.5,
		AnomalyMinHistory:   2,
	}
}

// Validate rejects thresholds that would make every analysis degenerate.
func (c Config) Validate() error {
	if c.CostWindowDays <= 0 {
		return fmt.Errorf("cost window must be positive, got %d", c.CostWindowDays)
	}
	if c.IdleAvgCPUThreshold <= 0 || c.IdleMaxCPUThreshold <= 0 {
		return fmt.Errorf("idle CPU thresholds must be positive, got avg=%v max=%v", c.IdleAvgCPUThreshold, c.IdleMaxCPUThreshold)
	}
	if c.IdleAvgCPUThreshold > c.IdleMaxCPUThreshold {
		return fmt.Errorf("idle average threshold %v exceeds maximum threshold %v", c.IdleAvgCPUThreshold, c.IdleMaxCPUThreshold)
	}
	if c.IdleWindowDays <= 0 {
		return fmt.Errorf("idle window must be positive, got %d", c.IdleWindowDays)
	}
	if c.AnomalyHistoryDays <= 0 {
		return fmt.Errorf("anomaly history must be positive, got %d", c.AnomalyHistoryDays)
	}
	if c.AnomalyMultiplier <= 0 {
		return fmt.Errorf("anomaly multiplier must be positive, got %v", c.AnomalyMultiplier)
	}
	if c.AnomalyMinHistory < 0 {
		return fmt.Errorf("anomaly minimum history must not be negative, got %d", c.AnomalyMinHistory)
	}
	return nil
}
