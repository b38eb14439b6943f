package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/LumeAnalytics/safralens-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Safralens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		fmt.Printf("precision: %d\n", c.Precision)
		fmt.Printf("segment_true_label: %s\n", c.SegmentTrueLabel)
		fmt.Printf("segment_false_label: %s\n", c.SegmentFalseLabel)
		fmt.Printf("column_id: %s\n", c.ColumnID)
		fmt.Printf("column_date: %s\n", c.ColumnDate)
		fmt.Printf("column_cohort: %s\n", c.ColumnCohort)
		fmt.Printf("column_flag: %s\n", c.ColumnFlag)
		fmt.Printf("column_status: %s\n", c.ColumnStatus)
		fmt.Printf("tracks: %s\n", strings.Join(c.Tracks, ", "))
		fmt.Printf("recent_cohorts: %d\n", c.RecentCohorts)
		for _, g := range c.Groups {
			if g.Op != "" {
				fmt.Printf("group %s: cohort %s %d\n", g.Name, g.Op, g.Threshold)
			} else {
				fmt.Printf("group %s: %s\n", g.Name, strings.Join(g.Values, ", "))
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		switch key {
		case "precision":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 || i > 2 {
				return fmt.Errorf("invalid precision: %s (use 1 or 2)", val)
			}
			c.Precision = i
		case "segment_true_label":
			c.SegmentTrueLabel = val
		case "segment_false_label":
			c.SegmentFalseLabel = val
		case "column_id":
			c.ColumnID = val
		case "column_date":
			c.ColumnDate = val
		case "column_cohort":
			c.ColumnCohort = val
		case "column_flag":
			c.ColumnFlag = val
		case "column_status":
			c.ColumnStatus = val
		case "tracks":
			var tracks []string
			for _, t := range strings.Split(val, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tracks = append(tracks, t)
				}
			}
			if len(tracks) == 0 {
				return fmt.Errorf("tracks requires at least one column name")
			}
			c.Tracks = tracks
		case "recent_cohorts":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for recent_cohorts: %s", val)
			}
			c.RecentCohorts = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
