package cmd

import (
	"fmt"
	"strings"

	"github.com/LumeAnalytics/safralens-cli/internal/cohort"
	"github.com/LumeAnalytics/safralens-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var cohDelimiter string

var cohortsCmd = &cobra.Command{
	Use:   "cohorts <file>",
	Short: "List the cohort values in a dataset and the configured macro groups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		delim, err := parseDelimiter(cohDelimiter)
		if err != nil {
			return err
		}
		snap, err := dataset.LoadCSV(args[0], c.Mapping(), delim)
		if err != nil {
			return err
		}
		res := consolidator.Consolidate(snap)
		available := cohort.Available(res.Profiles)
		if len(available) == 0 {
			fmt.Println("(no cohorts)")
			return nil
		}

		counts := map[string]int{}
		for _, p := range res.Profiles {
			counts[p.Cohort]++
		}
		fmt.Printf("Cohorts (%d):\n", len(available))
		for _, v := range available {
			fmt.Printf("- %s: %d profile(s)\n", v, counts[v])
		}

		if len(c.Groups) > 0 {
			fmt.Println("\nMacro groups:")
			for _, g := range c.Groups {
				expanded, err := cohort.Resolve(available, []string{g.Name}, c.Groups)
				if err != nil {
					return err
				}
				if len(expanded) == 0 {
					fmt.Printf("- %s: (empty)\n", g.Name)
					continue
				}
				fmt.Printf("- %s: %s\n", g.Name, strings.Join(expanded, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cohortsCmd)
	cohortsCmd.Flags().StringVar(&cohDelimiter, "delimiter", "", "field delimiter: ','|';'|'tab' (default: sniffed)")
}
