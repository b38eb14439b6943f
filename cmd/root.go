package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/LumeAnalytics/safralens-cli/internal/config"
	"github.com/LumeAnalytics/safralens-cli/internal/profile"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagPrecision int

	// Loaded configuration
	cfg *cfgpkg.Global

	// Consolidation cache shared across commands in one invocation, keyed by
	// dataset fingerprint.
	consolidator profile.Cache
)

var rootCmd = &cobra.Command{
	Use:   "safralens",
	Short: "Safralens CLI: cohort performance and attrition analysis for consultant records",
	Long:  `Safralens ingests a longitudinal CSV of per-consultant observations, consolidates each consultant's best-ever profile, and reports attainment distributions and churn rates per cohort and background segment.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.safralens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagPrecision, "precision", 0, "percentage rounding precision, 1 or 2 digits (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: defaults still allow most commands to run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("precision") && flagPrecision > 0 {
		cfg.Precision = flagPrecision
	}
}

// ensureConfig returns the loaded configuration, loading it on demand when
// the cobra initializer could not.
func ensureConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s (use ','|';'|'tab')", s)
}
