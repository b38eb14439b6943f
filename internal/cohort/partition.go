package cohort

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/LumeAnalytics/safralens-cli/internal/profile"
)

// OverallLabel is the synthetic display cohort used when all profiles are
// collapsed into a single consolidated view.
const OverallLabel = "Overall"

// SelectAll is the selector that expands to every available cohort value.
const SelectAll = "all"

// Group is a named macro selection: either an explicit union of cohort
// values, or a numeric threshold bucket over cohort labels (Op ">=" or "<").
type Group struct {
	Name      string   `mapstructure:"name" yaml:"name"`
	Values    []string `mapstructure:"values" yaml:"values"`
	Op        string   `mapstructure:"op" yaml:"op"`
	Threshold int      `mapstructure:"threshold" yaml:"threshold"`
}

func (g Group) matches(value string) bool {
	for _, v := range g.Values {
		if v == value {
			return true
		}
	}
	if g.Op == "" {
		return false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	switch g.Op {
	case ">=":
		return n >= g.Threshold
	case "<":
		return n < g.Threshold
	}
	return false
}

// Partition maps each profile to exactly one display-cohort label; profiles
// outside the selection are dropped. Order fixes the presentation order of
// the labels it can produce.
type Partition struct {
	Order  []string
	assign func(profile.Profile) (string, bool)
}

// Apply relabels and filters profiles according to the partition. The input
// is never mutated.
func (p Partition) Apply(profiles []profile.Profile) []profile.Profile {
	var out []profile.Profile
	for _, pr := range profiles {
		label, ok := p.assign(pr)
		if !ok {
			continue
		}
		pr.Cohort = label
		out = append(out, pr)
	}
	return out
}

// Identity keeps each selected raw cohort as its own display cohort.
func Identity(selected []string) Partition {
	set := make(map[string]bool, len(selected))
	for _, v := range selected {
		set[v] = true
	}
	return Partition{
		Order: DisplayOrder(selected),
		assign: func(pr profile.Profile) (string, bool) {
			return pr.Cohort, set[pr.Cohort]
		},
	}
}

// Overall collapses every profile into the single OverallLabel cohort.
func Overall() Partition {
	return Partition{
		Order: []string{OverallLabel},
		assign: func(profile.Profile) (string, bool) {
			return OverallLabel, true
		},
	}
}

// Available returns the distinct non-empty cohort values observed across the
// profiles, in display order.
func Available(profiles []profile.Profile) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range profiles {
		if p.Cohort == "" || seen[p.Cohort] {
			continue
		}
		seen[p.Cohort] = true
		out = append(out, p.Cohort)
	}
	return DisplayOrder(out)
}

// Resolve expands selection descriptors (explicit cohort values, macro group
// names, or SelectAll) against the available cohort values into one
// de-duplicated set in display order. A selector that matches neither an
// available value nor a group name is an error.
func Resolve(available, selectors []string, groups []Group) ([]string, error) {
	avail := make(map[string]bool, len(available))
	for _, v := range available {
		avail[v] = true
	}
	byName := make(map[string]Group, len(groups))
	for _, g := range groups {
		byName[g.Name] = g
	}
	set := map[string]bool{}
	for _, sel := range selectors {
		switch {
		case sel == SelectAll:
			for _, v := range available {
				set[v] = true
			}
		case avail[sel]:
			set[sel] = true
		default:
			g, ok := byName[sel]
			if !ok {
				return nil, fmt.Errorf("unknown cohort or group %q", sel)
			}
			for _, v := range available {
				if g.matches(v) {
					set[v] = true
				}
			}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return DisplayOrder(out), nil
}

// MostRecent returns the n highest cohort values in display order, the
// default selection for a fresh per-cohort view.
func MostRecent(available []string, n int) []string {
	ordered := DisplayOrder(available)
	if n >= len(ordered) {
		return ordered
	}
	return ordered[len(ordered)-n:]
}

// DisplayOrder sorts cohort labels numerically when both parse as integers
// (so "2" sorts before "10"), placing non-numeric labels after numeric ones.
func DisplayOrder(values []string) []string {
	out := append([]string(nil), values...)
	sort.SliceStable(out, func(i, j int) bool {
		ni, errI := strconv.Atoi(out[i])
		nj, errJ := strconv.Atoi(out[j])
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		}
		return out[i] < out[j]
	})
	return out
}
