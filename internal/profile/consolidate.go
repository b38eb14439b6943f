package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LumeAnalytics/safralens-cli/internal/dataset"
)

// Lifecycle status values recognized on raw records. Anything else is kept
// verbatim and simply never counts as terminated.
const (
	StatusActive     = "Active"
	StatusTerminated = "Terminated"
)

// Profile is the consolidated best-ever view of one consultant across all of
// their observations. Levels is parallel to Result.Tracks.
type Profile struct {
	ID               string  `json:"id"`
	Cohort           string  `json:"cohort"`
	MarketBackground bool    `json:"market_background"`
	Levels           []Level `json:"levels"`
	Terminated       bool    `json:"terminated"`
}

// Result is the output of one consolidation pass. Warnings carry data-quality
// findings (cohort disagreements) that must surface without failing the run.
type Result struct {
	Profiles []Profile
	Tracks   []string
	Warnings []string
}

// Consolidate collapses the snapshot's rows into one profile per consultant:
// the cohort of the chronologically first record, the logical OR of the
// market-background flag, the apex level per attainment track, and a sticky
// terminated status. Records with unknown timestamps sort first within a
// consultant; ties between equally-timestamped rows keep input order, so the
// relative order of several un-timestamped rows is only as good as the input.
func Consolidate(snap *dataset.Snapshot) Result {
	rows := append([]dataset.Record(nil), snap.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ID != rows[j].ID {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].ObservedAt.Before(rows[j].ObservedAt)
	})

	res := Result{Tracks: append([]string(nil), snap.Tracks...)}
	for start := 0; start < len(rows); {
		end := start
		for end < len(rows) && rows[end].ID == rows[start].ID {
			end++
		}
		group := rows[start:end]
		start = end

		p := Profile{
			ID:     group[0].ID,
			Cohort: group[0].Cohort,
			Levels: make([]Level, len(res.Tracks)),
		}
		for i := range p.Levels {
			p.Levels[i] = LevelNone
		}
		cohorts := map[string]bool{}
		for _, r := range group {
			cohorts[r.Cohort] = true
			if r.MarketBackground {
				p.MarketBackground = true
			}
			if strings.EqualFold(r.Status, StatusTerminated) {
				p.Terminated = true
			}
			for i := range res.Tracks {
				if i >= len(r.Levels) {
					continue
				}
				if lv := ParseLevel(r.Levels[i]); lv != LevelNone && lv.Better(p.Levels[i]) {
					p.Levels[i] = lv
				}
			}
		}
		if len(cohorts) > 1 {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"consultant %s has %d distinct cohort values; using first-observed %q",
				p.ID, len(cohorts), p.Cohort))
		}
		res.Profiles = append(res.Profiles, p)
	}
	return res
}
