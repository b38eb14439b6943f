package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/LumeAnalytics/safralens-cli/internal/dataset"
	"github.com/LumeAnalytics/safralens-cli/internal/profile"
	"github.com/LumeAnalytics/safralens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	conDelimiter string
	conJSON      bool
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate <file>",
	Short: "Collapse raw observations into one best-ever profile per consultant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		delim, err := parseDelimiter(conDelimiter)
		if err != nil {
			return err
		}
		snap, err := dataset.LoadCSV(args[0], c.Mapping(), delim)
		if err != nil {
			return err
		}
		res := consolidator.Consolidate(snap)

		if conJSON {
			out, err := utils.PrettyJSON(res.Profiles)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("Consolidated %d profile(s) from %d record(s)\n\n", len(res.Profiles), len(snap.Rows))
		fmt.Printf("| ID | Cohort | %s | Segment flag | Status |\n", strings.Join(res.Tracks, " | "))
		fmt.Printf("| --- | --- |%s --- | --- |\n", strings.Repeat(" --- |", len(res.Tracks)))
		for _, p := range res.Profiles {
			levels := make([]string, len(p.Levels))
			for i, l := range p.Levels {
				if l == profile.LevelNone {
					levels[i] = "(none)"
				} else {
					levels[i] = string(l)
				}
			}
			status := profile.StatusActive
			if p.Terminated {
				status = profile.StatusTerminated
			}
			fmt.Printf("| %s | %s | %s | %t | %s |\n",
				p.ID, p.Cohort, strings.Join(levels, " | "), p.MarketBackground, status)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
		}
		if snap.ParseFailures > 0 {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %d record(s) had an unparseable date\n", snap.ParseFailures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consolidateCmd)
	consolidateCmd.Flags().StringVar(&conDelimiter, "delimiter", "", "field delimiter: ','|';'|'tab' (default: sniffed)")
	consolidateCmd.Flags().BoolVar(&conJSON, "json", false, "emit profiles as JSON")
}
