package report

import (
	"strings"
	"testing"
	"time"

	"github.com/LumeAnalytics/safralens-cli/internal/cohort"
	"github.com/LumeAnalytics/safralens-cli/internal/dataset"
	"github.com/LumeAnalytics/safralens-cli/internal/metrics"
	"github.com/LumeAnalytics/safralens-cli/internal/profile"
)

func fixtureSnapshot() *dataset.Snapshot {
	day := func(d int) time.Time {
		return time.Date(2023, time.May, d, 0, 0, 0, 0, time.UTC)
	}
	return &dataset.Snapshot{
		Name:   "master.csv",
		Tracks: []string{"AUCTier", "RevenueTier"},
		Rows: []dataset.Record{
			{ID: "a", ObservedAt: day(1), Cohort: "1", Levels: []string{"B", "C"}, Status: profile.StatusActive},
			{ID: "a", ObservedAt: day(2), Cohort: "1", Levels: []string{"A", "B"}, Status: profile.StatusActive},
			{ID: "b", ObservedAt: day(1), Cohort: "1", MarketBackground: true, Levels: []string{"B", "B"}, Status: profile.StatusTerminated},
			{ID: "c", ObservedAt: day(1), Cohort: "2", Levels: []string{"C", "D"}, Status: profile.StatusActive},
		},
		Fingerprint:   "0123456789abcdef",
		ParseFailures: 1,
	}
}

func TestBuildPerCohort(t *testing.T) {
	snap := fixtureSnapshot()
	res := profile.Consolidate(snap)
	part := cohort.Identity([]string{"1", "2"})
	rep := Build(snap, res, part, metrics.DefaultOptions(), "cohorts")

	if rep.RunID == "" {
		t.Fatalf("report must carry a run id")
	}
	if rep.Profiles != 3 || rep.Selected != 3 {
		t.Fatalf("profiles = %d selected = %d", rep.Profiles, rep.Selected)
	}
	if len(rep.Distributions) != 2 {
		t.Fatalf("one distribution section per track, got %d", len(rep.Distributions))
	}
	if rep.Distributions[0].Track != "AUCTier" || rep.Distributions[1].Track != "RevenueTier" {
		t.Fatalf("sections = %+v", rep.Distributions)
	}
	if len(rep.Churn) != 3 {
		t.Fatalf("churn rows = %d, want 3 (cohort 1 split by segment, cohort 2 single)", len(rep.Churn))
	}

	md := rep.Markdown()
	for _, want := range []string{
		"[COHORT ANALYSIS]",
		"Dataset: master.csv (fingerprint 0123456789ab)",
		"[DISTRIBUTION: AUCTier]",
		"[DISTRIBUTION: RevenueTier]",
		"[CHURN]",
		"unparseable date",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestBuildOverall(t *testing.T) {
	snap := fixtureSnapshot()
	res := profile.Consolidate(snap)
	rep := Build(snap, res, cohort.Overall(), metrics.DefaultOptions(), "overall")
	for _, row := range rep.Churn {
		if row.Cohort != cohort.OverallLabel {
			t.Fatalf("overall view must collapse cohorts: %+v", row)
		}
	}
}

func TestBuildEmptySelection(t *testing.T) {
	snap := fixtureSnapshot()
	res := profile.Consolidate(snap)
	rep := Build(snap, res, cohort.Identity(nil), metrics.DefaultOptions(), "cohorts")
	if rep.Selected != 0 {
		t.Fatalf("selected = %d, want 0", rep.Selected)
	}
	for _, sec := range rep.Distributions {
		if len(sec.Rows) != 0 {
			t.Fatalf("empty selection must yield empty tables: %+v", sec)
		}
	}
	if len(rep.Churn) != 0 {
		t.Fatalf("empty selection must yield empty churn: %+v", rep.Churn)
	}
	found := false
	for _, w := range rep.Warnings {
		if strings.Contains(w, "matched no profiles") {
			found = true
		}
	}
	if !found {
		t.Fatalf("empty selection must be reported in warnings: %v", rep.Warnings)
	}
	// Rendering an empty report must not panic or divide by zero.
	if md := rep.Markdown(); !strings.Contains(md, "(no rows)") {
		t.Fatalf("markdown should mark empty tables:\n%s", md)
	}
}
