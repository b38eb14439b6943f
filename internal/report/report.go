package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/LumeAnalytics/safralens-cli/internal/cohort"
	"github.com/LumeAnalytics/safralens-cli/internal/dataset"
	"github.com/LumeAnalytics/safralens-cli/internal/metrics"
	"github.com/LumeAnalytics/safralens-cli/internal/profile"
	"github.com/google/uuid"
)

// Section is one distribution table, one per attainment track.
type Section struct {
	Track string                    `json:"track"`
	Rows  []metrics.DistributionRow `json:"rows"`
}

// Report bundles everything one analysis run hands to the rendering layer:
// the distribution table per track, the churn table, and run diagnostics.
type Report struct {
	RunID         string             `json:"run_id"`
	Dataset       string             `json:"dataset"`
	Fingerprint   string             `json:"fingerprint"`
	Mode          string             `json:"mode"`
	Profiles      int                `json:"profiles"`
	Selected      int                `json:"selected"`
	Cohorts       []string           `json:"cohorts"`
	Distributions []Section          `json:"distributions"`
	Churn         []metrics.ChurnRow `json:"churn"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// Build runs the metrics stage over the consolidated profiles under the
// given partition and assembles the report. An empty selection produces
// empty-but-well-formed tables.
func Build(snap *dataset.Snapshot, res profile.Result, part cohort.Partition, opt metrics.Options, mode string) *Report {
	selected := part.Apply(res.Profiles)
	opt.CohortOrder = part.Order

	rep := &Report{
		RunID:       uuid.NewString(),
		Dataset:     snap.Name,
		Fingerprint: snap.Fingerprint,
		Mode:        mode,
		Profiles:    len(res.Profiles),
		Selected:    len(selected),
		Cohorts:     part.Order,
		Churn:       metrics.Churn(selected, opt),
		Warnings:    append([]string(nil), res.Warnings...),
	}
	for i, track := range res.Tracks {
		rep.Distributions = append(rep.Distributions, Section{
			Track: track,
			Rows:  metrics.Distribution(selected, i, opt),
		})
	}
	if snap.ParseFailures > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(
			"%d record(s) had an unparseable date and were kept with an unknown timestamp", snap.ParseFailures))
	}
	if len(selected) == 0 {
		rep.Warnings = append(rep.Warnings, "cohort selection matched no profiles; tables are empty")
	}
	return rep
}

// Markdown renders the report as a compact document for the terminal or for
// writing to disk.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[COHORT ANALYSIS]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Dataset: %s (fingerprint %s)\n", r.Dataset, shortHash(r.Fingerprint)))
	b.WriteString(fmt.Sprintf("View: %s\n", r.Mode))
	b.WriteString(fmt.Sprintf("Profiles: %d consolidated, %d selected\n", r.Profiles, r.Selected))
	if len(r.Cohorts) > 0 {
		b.WriteString(fmt.Sprintf("Cohorts: %s\n", strings.Join(r.Cohorts, ", ")))
	}

	for _, sec := range r.Distributions {
		b.WriteString(fmt.Sprintf("\n[DISTRIBUTION: %s]\n", sec.Track))
		if len(sec.Rows) == 0 {
			b.WriteString("(no rows)\n")
			continue
		}
		b.WriteString("| Cohort | Segment | Level | % | n/N |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, row := range sec.Rows {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d/%d |\n",
				row.Cohort, row.Segment, levelLabel(row.Level),
				formatPercent(row.Percent), row.Count, row.Total))
		}
	}

	b.WriteString("\n[CHURN]\n")
	if len(r.Churn) == 0 {
		b.WriteString("(no rows)\n")
	} else {
		b.WriteString("| Cohort | Segment | Churn % | Terminated/N |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, row := range r.Churn {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %d/%d |\n",
				row.Cohort, row.Segment, formatPercent(row.Percent), row.Terminated, row.Total))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func levelLabel(l profile.Level) string {
	if l == profile.LevelNone {
		return "(none)"
	}
	return string(l)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
