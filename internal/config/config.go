package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/LumeAnalytics/safralens-cli/internal/cohort"
	"github.com/LumeAnalytics/safralens-cli/internal/dataset"
	"github.com/LumeAnalytics/safralens-cli/internal/metrics"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Rounding precision (decimal digits) applied to every percentage.
	Precision int `mapstructure:"precision" yaml:"precision"`

	// Segment labels for the market-background split.
	SegmentTrueLabel  string `mapstructure:"segment_true_label" yaml:"segment_true_label"`
	SegmentFalseLabel string `mapstructure:"segment_false_label" yaml:"segment_false_label"`

	// Column mapping of the uploaded dataset.
	ColumnID     string   `mapstructure:"column_id" yaml:"column_id"`
	ColumnDate   string   `mapstructure:"column_date" yaml:"column_date"`
	ColumnCohort string   `mapstructure:"column_cohort" yaml:"column_cohort"`
	ColumnFlag   string   `mapstructure:"column_flag" yaml:"column_flag"`
	ColumnStatus string   `mapstructure:"column_status" yaml:"column_status"`
	Tracks       []string `mapstructure:"tracks" yaml:"tracks"`

	// Macro cohort groups available as selectors (threshold buckets or
	// explicit unions).
	Groups []cohort.Group `mapstructure:"groups" yaml:"groups"`

	// Default number of most-recent cohorts selected when none are given.
	RecentCohorts int `mapstructure:"recent_cohorts" yaml:"recent_cohorts"`
}

// Mapping builds the dataset column mapping from the configuration.
func (c *Global) Mapping() dataset.Mapping {
	return dataset.Mapping{
		ID:               c.ColumnID,
		ObservedAt:       c.ColumnDate,
		Cohort:           c.ColumnCohort,
		MarketBackground: c.ColumnFlag,
		Status:           c.ColumnStatus,
		Tracks:           c.Tracks,
	}
}

// MetricsOptions builds the engine options from the configuration. The cohort
// order is filled in per run by the partition.
func (c *Global) MetricsOptions() metrics.Options {
	opt := metrics.DefaultOptions()
	if c.Precision > 0 {
		opt.Precision = c.Precision
	}
	if c.SegmentTrueLabel != "" {
		opt.SegmentTrue = c.SegmentTrueLabel
	}
	if c.SegmentFalseLabel != "" {
		opt.SegmentFalse = c.SegmentFalseLabel
	}
	return opt
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.safralens/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".safralens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SAFRALENS")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("precision", 1)
	v.SetDefault("segment_true_label", "Finance-market background")
	v.SetDefault("segment_false_label", "Career changers")
	v.SetDefault("column_id", "Email")
	v.SetDefault("column_date", "Date")
	v.SetDefault("column_cohort", "Cohort")
	v.SetDefault("column_flag", "MarketBackground")
	v.SetDefault("column_status", "Status")
	v.SetDefault("tracks", []string{"AUCTier", "RevenueTier"})
	v.SetDefault("recent_cohorts", 5)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".safralens")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
