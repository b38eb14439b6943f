package cmd

import (
	"fmt"
	"os"

	"github.com/LumeAnalytics/safralens-cli/internal/cohort"
	"github.com/LumeAnalytics/safralens-cli/internal/dataset"
	"github.com/LumeAnalytics/safralens-cli/internal/report"
	"github.com/LumeAnalytics/safralens-cli/internal/utils"
	"github.com/spf13/cobra"
)

const (
	modeOverall = "overall"
	modeCohorts = "cohorts"
)

var (
	repMode      string
	repCohorts   []string
	repRecent    int
	repDelimiter string
	repOutPath   string
	repJSON      bool
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Run the full analysis and print distribution and churn tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		delim, err := parseDelimiter(repDelimiter)
		if err != nil {
			return err
		}
		snap, err := dataset.LoadCSV(args[0], c.Mapping(), delim)
		if err != nil {
			return err
		}
		if debug && consolidator.Cached(snap.Fingerprint) {
			fmt.Fprintf(os.Stderr, "⚠ Debug: consolidation served from cache (%.12s)\n", snap.Fingerprint)
		}
		res := consolidator.Consolidate(snap)

		var part cohort.Partition
		switch repMode {
		case modeOverall:
			part = cohort.Overall()
		case modeCohorts:
			available := cohort.Available(res.Profiles)
			selectors := repCohorts
			if len(selectors) == 0 {
				n := repRecent
				if n <= 0 {
					n = c.RecentCohorts
				}
				selectors = cohort.MostRecent(available, n)
			}
			selected, err := cohort.Resolve(available, selectors, c.Groups)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				fmt.Fprintln(os.Stderr, "⚠ Warning: cohort selection is empty; tables will have no rows")
			}
			part = cohort.Identity(selected)
		default:
			return fmt.Errorf("unsupported --mode: %s (use %s|%s)", repMode, modeOverall, modeCohorts)
		}

		rep := report.Build(snap, res, part, c.MetricsOptions(), repMode)

		var out []byte
		if repJSON {
			out, err = utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
		} else {
			out = []byte(rep.Markdown())
		}
		if repOutPath != "" {
			if err := utils.SafeWriteFile(repOutPath, out); err != nil {
				return err
			}
			fmt.Printf("Wrote report to %s\n", repOutPath)
			return nil
		}
		fmt.Print(string(out))
		if repJSON {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&repMode, "mode", modeCohorts, "analysis view: overall|cohorts")
	reportCmd.Flags().StringSliceVar(&repCohorts, "cohorts", nil, "cohort values or macro group names to include (default: most recent)")
	reportCmd.Flags().IntVar(&repRecent, "recent", 0, "select the N most recent cohorts when --cohorts is not given")
	reportCmd.Flags().StringVar(&repDelimiter, "delimiter", "", "field delimiter: ','|';'|'tab' (default: sniffed)")
	reportCmd.Flags().StringVar(&repOutPath, "out", "", "write the report to a file instead of stdout")
	reportCmd.Flags().BoolVar(&repJSON, "json", false, "emit the report as JSON")
}
