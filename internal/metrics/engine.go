package metrics

import (
	"math"
	"sort"

	"github.com/LumeAnalytics/safralens-cli/internal/profile"
)

// Options fixes how the engine groups and renders its tables: the explicit
// display order for cohort labels (numeric labels must not be sorted as
// text), the two segment labels for the market-background split, and the
// rounding precision applied to every percentage in one output.
type Options struct {
	CohortOrder  []string
	SegmentTrue  string
	SegmentFalse string
	Precision    int
}

// DefaultOptions returns the segment labels and precision of the standard
// report.
func DefaultOptions() Options {
	return Options{
		SegmentTrue:  "Finance-market background",
		SegmentFalse: "Career changers",
		Precision:    1,
	}
}

func (o Options) segment(p profile.Profile) string {
	if p.MarketBackground {
		return o.SegmentTrue
	}
	return o.SegmentFalse
}

// DistributionRow is one (cohort, segment, level) cell of a distribution
// table. Combinations with zero occurrences are absent from the table;
// consumers must read absence as 0%, not as missing data.
type DistributionRow struct {
	Cohort  string        `json:"cohort"`
	Segment string        `json:"segment"`
	Level   profile.Level `json:"level"`
	Count   int           `json:"count"`
	Total   int           `json:"total"`
	Percent float64       `json:"percent"`
}

// ChurnRow is one (cohort, segment) attrition rate. Unlike the distribution
// table this one is dense: every group that exists gets a row, with a zero
// rate when none of its members terminated.
type ChurnRow struct {
	Cohort     string  `json:"cohort"`
	Segment    string  `json:"segment"`
	Terminated int     `json:"terminated"`
	Total      int     `json:"total"`
	Percent    float64 `json:"percent"`
}

type groupKey struct {
	cohort  string
	segment string
}

// Distribution computes the percentage split of the given attainment track
// across each (cohort, segment) group. For any group the present rows sum to
// 100% within rounding tolerance, since missing and unknown levels count as
// their own categories. Empty input yields an empty table.
func Distribution(profiles []profile.Profile, track int, opt Options) []DistributionRow {
	totals := map[groupKey]int{}
	counts := map[groupKey]map[profile.Level]int{}
	for _, p := range profiles {
		key := groupKey{cohort: p.Cohort, segment: opt.segment(p)}
		totals[key]++
		level := profile.LevelNone
		if track < len(p.Levels) {
			level = p.Levels[track]
		}
		if counts[key] == nil {
			counts[key] = map[profile.Level]int{}
		}
		counts[key][level]++
	}
	var rows []DistributionRow
	for key, levels := range counts {
		for level, n := range levels {
			rows = append(rows, DistributionRow{
				Cohort:  key.cohort,
				Segment: key.segment,
				Level:   level,
				Count:   n,
				Total:   totals[key],
				Percent: round(100*float64(n)/float64(totals[key]), opt.Precision),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Cohort != rows[j].Cohort {
			return opt.cohortLess(rows[i].Cohort, rows[j].Cohort)
		}
		if rows[i].Segment != rows[j].Segment {
			return opt.segmentLess(rows[i].Segment, rows[j].Segment)
		}
		if rows[i].Level.Rank() != rows[j].Level.Rank() {
			return rows[i].Level.Rank() < rows[j].Level.Rank()
		}
		return rows[i].Level < rows[j].Level
	})
	return rows
}

// Churn computes the attrition rate per (cohort, segment) group. Every group
// with at least one profile gets exactly one row; a group can never appear
// with a zero denominator.
func Churn(profiles []profile.Profile, opt Options) []ChurnRow {
	totals := map[groupKey]int{}
	terminated := map[groupKey]int{}
	for _, p := range profiles {
		key := groupKey{cohort: p.Cohort, segment: opt.segment(p)}
		totals[key]++
		if p.Terminated {
			terminated[key]++
		}
	}
	rows := make([]ChurnRow, 0, len(totals))
	for key, total := range totals {
		term := terminated[key]
		rows = append(rows, ChurnRow{
			Cohort:     key.cohort,
			Segment:    key.segment,
			Terminated: term,
			Total:      total,
			Percent:    round(100*float64(term)/float64(total), opt.Precision),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Cohort != rows[j].Cohort {
			return opt.cohortLess(rows[i].Cohort, rows[j].Cohort)
		}
		return opt.segmentLess(rows[i].Segment, rows[j].Segment)
	})
	return rows
}

func (o Options) cohortLess(a, b string) bool {
	ia, ib := o.cohortIndex(a), o.cohortIndex(b)
	if ia != ib {
		return ia < ib
	}
	return a < b
}

func (o Options) cohortIndex(v string) int {
	for i, c := range o.CohortOrder {
		if c == v {
			return i
		}
	}
	// Labels outside the explicit order are the caller's bug; park them last.
	return len(o.CohortOrder)
}

func (o Options) segmentLess(a, b string) bool {
	if a == b {
		return false
	}
	if a == o.SegmentTrue {
		return true
	}
	if b == o.SegmentTrue {
		return false
	}
	return a < b
}

func round(x float64, digits int) float64 {
	if digits < 1 {
		digits = 1
	} else if digits > 2 {
		digits = 2
	}
	pow := math.Pow10(digits)
	return math.Round(x*pow) / pow
}
