package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	r := require.New(t)

	r.NoError(DefaultConfig().Validate())

	mutations := map[string]func(*Config){
		"zero cost window":       func(c *Config) { c.CostWindowDays = 0 },
		"negative avg threshold": func(c *Config) { c.IdleAvgCPUThreshold = -1 },
		"zero max threshold":     func(c *Config) { c.IdleMaxCPUThreshold = 0 },
		"avg above max":          func(c *Config) { c.IdleAvgCPUThreshold = 50; c.IdleMaxCPUThreshold = 10 },
		"zero idle window":       func(c *Config) { c.IdleWindowDays = 0 },
		"zero anomaly history":   func(c *Config) { c.AnomalyHistoryDays = 0 },
		"zero multiplier":        func(c *Config) { c.AnomalyMultiplier = 0 },
		"negative min history":   func(c *Config) { c.AnomalyMinHistory = -1 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	empty := DefaultConfig()
	empty.RequiredTags = nil
	r.NoError(empty.Validate(), "empty required tags are allowed")
}
