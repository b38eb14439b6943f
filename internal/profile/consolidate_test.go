package profile

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/LumeAnalytics/safralens-cli/internal/dataset"
)

func day(d int) time.Time {
	return time.Date(2023, time.March, d, 0, 0, 0, 0, time.UTC)
}

func snapshot(rows ...dataset.Record) *dataset.Snapshot {
	return &dataset.Snapshot{Rows: rows, Tracks: []string{"AUCTier"}, Fingerprint: "test"}
}

func TestConsolidateOneProfilePerConsultant(t *testing.T) {
	snap := snapshot(
		dataset.Record{ID: "b", ObservedAt: day(1), Cohort: "2", Levels: []string{"B"}, Status: StatusActive},
		dataset.Record{ID: "a", ObservedAt: day(2), Cohort: "1", Levels: []string{"C"}, Status: StatusActive},
		dataset.Record{ID: "b", ObservedAt: day(3), Cohort: "2", Levels: []string{"A"}, Status: StatusActive},
	)
	res := Consolidate(snap)
	if len(res.Profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(res.Profiles))
	}
	if res.Profiles[0].ID != "a" || res.Profiles[1].ID != "b" {
		t.Fatalf("profiles must be sorted by id: %+v", res.Profiles)
	}
}

func TestConsolidateIdempotent(t *testing.T) {
	snap := snapshot(
		dataset.Record{ID: "a", ObservedAt: day(1), Cohort: "1", Levels: []string{"B"}, Status: StatusActive},
		dataset.Record{ID: "a", ObservedAt: day(2), Cohort: "1", Levels: []string{"A"}, Status: StatusTerminated},
	)
	first := Consolidate(snap)
	second := Consolidate(snap)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("consolidation must be deterministic:\n%+v\n%+v", first, second)
	}
}

func TestConsolidateMonotonicFlag(t *testing.T) {
	snap := snapshot(
		dataset.Record{ID: "a", ObservedAt: day(3), Cohort: "1", MarketBackground: true, Levels: []string{"C"}, Status: StatusActive},
		dataset.Record{ID: "a", ObservedAt: day(1), Cohort: "1", Levels: []string{"C"}, Status: StatusActive},
	)
	res := Consolidate(snap)
	if !res.Profiles[0].MarketBackground {
		t.Fatalf("flag must be true when any record carries true")
	}
}

func TestConsolidateBestAttainment(t *testing.T) {
	snap := snapshot(
		dataset.Record{ID: "a", ObservedAt: day(1), Cohort: "1", Levels: []string{"C"}, Status: StatusActive},
		dataset.Record{ID: "a", ObservedAt: day(2), Cohort: "1", Levels: []string{"A"}, Status: StatusActive},
		dataset.Record{ID: "a", ObservedAt: day(3), Cohort: "1", Levels: []string{"B"}, Status: StatusActive},
	)
	res := Consolidate(snap)
	if got := res.Profiles[0].Levels[0]; got != LevelA {
		t.Fatalf("apex = %q, want A", got)
	}
}

func TestConsolidateStickyTermination(t *testing.T) {
	snap := snapshot(
		dataset.Record{ID: "a", ObservedAt: day(1), Cohort: "1", Levels: []string{"C"}, Status: StatusActive},
		dataset.Record{ID: "a", ObservedAt: day(2), Cohort: "1", Levels: []string{"C"}, Status: StatusTerminated},
		dataset.Record{ID: "a", ObservedAt: day(3), Cohort: "1", Levels: []string{"C"}, Status: StatusActive},
	)
	res := Consolidate(snap)
	if !res.Profiles[0].Terminated {
		t.Fatalf("termination must be sticky once observed")
	}
}

func TestConsolidateFirstCohortUnknownTimestampSortsFirst(t *testing.T) {
	// The un-timestamped record precedes every dated one, so its cohort wins.
	snap := snapshot(
		dataset.Record{ID: "a", ObservedAt: day(1), Cohort: "5", Levels: []string{"C"}, Status: StatusActive},
		dataset.Record{ID: "a", Cohort: "4", Levels: []string{"C"}, Status: StatusActive},
	)
	res := Consolidate(snap)
	p := res.Profiles[0]
	if p.Cohort != "4" {
		t.Fatalf("cohort = %q, want first-sorted %q", p.Cohort, "4")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "distinct cohort") {
		t.Fatalf("cohort disagreement must be reported: %v", res.Warnings)
	}
}

func TestConsolidateMissingAttainment(t *testing.T) {
	snap := snapshot(
		dataset.Record{ID: "a", ObservedAt: day(1), Cohort: "1", Levels: []string{""}, Status: StatusActive},
		dataset.Record{ID: "a", ObservedAt: day(2), Cohort: "1", Levels: []string{""}, Status: StatusActive},
	)
	res := Consolidate(snap)
	if got := res.Profiles[0].Levels[0]; got != LevelNone {
		t.Fatalf("all-missing track must stay missing, got %q", got)
	}
}

func TestConsolidateSingleRecord(t *testing.T) {
	snap := snapshot(
		dataset.Record{ID: "a", ObservedAt: day(1), Cohort: "3", MarketBackground: true, Levels: []string{"D"}, Status: StatusTerminated},
	)
	res := Consolidate(snap)
	p := res.Profiles[0]
	if p.Cohort != "3" || !p.MarketBackground || p.Levels[0] != LevelD || !p.Terminated {
		t.Fatalf("single record must map through unchanged: %+v", p)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestLevelRanking(t *testing.T) {
	if !LevelA.Better(LevelB) || LevelD.Better(LevelA) {
		t.Fatalf("known ranks out of order")
	}
	// Letters outside the known alphabet are valid categories but never
	// outrank a known tier.
	if Level("E").Better(LevelD) {
		t.Fatalf("unknown letter must not outrank a known tier")
	}
	if !Level("E").Better(LevelNone) {
		t.Fatalf("any observed letter must outrank a missing value")
	}
	if ParseLevel(" a ") != LevelA {
		t.Fatalf("ParseLevel must normalize case and spacing")
	}
}
