package dataset

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Mapping names the columns the loader expects in the uploaded dataset.
// Tracks lists one column per attainment track (e.g. AuC tier, revenue tier).
type Mapping struct {
	ID               string
	ObservedAt       string
	Cohort           string
	MarketBackground string
	Status           string
	Tracks           []string
}

// DefaultMapping returns the column names of the master export.
func DefaultMapping() Mapping {
	return Mapping{
		ID:               "Email",
		ObservedAt:       "Date",
		Cohort:           "Cohort",
		MarketBackground: "MarketBackground",
		Status:           "Status",
		Tracks:           []string{"AUCTier", "RevenueTier"},
	}
}

// Record is one per-consultant observation. ObservedAt is the zero time when
// the source value was absent or unparseable; Levels is parallel to the
// mapping's Tracks, with "" meaning the track value was missing on this row.
type Record struct {
	ID               string
	ObservedAt       time.Time
	Cohort           string
	MarketBackground bool
	Levels           []string
	Status           string
}

// ObservedAtKnown reports whether the row carried a usable timestamp.
func (r Record) ObservedAtKnown() bool { return !r.ObservedAt.IsZero() }

// Snapshot is one fully-loaded dataset: the raw rows plus a content
// fingerprint used as the consolidation cache key.
type Snapshot struct {
	Name          string
	Rows          []Record
	Tracks        []string
	Fingerprint   string
	ParseFailures int
}

// SchemaError reports required columns missing from the dataset header.
// It is fatal for the whole batch.
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", e.File, strings.Join(e.Missing, ", "))
}

// LoadCSV reads a delimited dataset from path. If delimiter is 0 it is
// sniffed from the file extension. Rows with unparseable timestamps are kept
// with an unknown timestamp and counted in ParseFailures; a missing required
// column aborts the load with a *SchemaError.
func LoadCSV(path string, m Mapping, delimiter rune) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	if delimiter == 0 {
		delimiter = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delimiter

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{File: filepath.Base(path), Missing: requiredColumns(m)}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := func(name string) (int, bool) {
		i, ok := idx[strings.ToLower(name)]
		return i, ok
	}
	var missing []string
	for _, name := range requiredColumns(m) {
		if _, ok := col(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{File: filepath.Base(path), Missing: missing}
	}

	snap := &Snapshot{Name: filepath.Base(path), Tracks: append([]string(nil), m.Tracks...)}
	field := func(rec []string, name string) string {
		i, _ := col(name)
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	row := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		out := Record{
			ID:               field(rec, m.ID),
			Cohort:           field(rec, m.Cohort),
			MarketBackground: parseFlag(field(rec, m.MarketBackground)),
			Status:           field(rec, m.Status),
		}
		if out.ID == "" {
			continue
		}
		if raw := field(rec, m.ObservedAt); raw != "" {
			if t, ok := parseTimeMaybe(raw); ok {
				out.ObservedAt = t
			} else {
				snap.ParseFailures++
			}
		}
		out.Levels = make([]string, len(m.Tracks))
		for i, track := range m.Tracks {
			out.Levels[i] = field(rec, track)
		}
		snap.Rows = append(snap.Rows, out)
	}
	snap.Fingerprint = fingerprint(snap)
	return snap, nil
}

func requiredColumns(m Mapping) []string {
	cols := []string{m.ID, m.ObservedAt, m.Cohort, m.MarketBackground, m.Status}
	return append(cols, m.Tracks...)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "sim", "true", "1", "y":
		return true
	}
	return false
}

// fingerprint hashes the normalized rows so that identical uploads share one
// consolidation cache entry regardless of file name or on-disk identity.
func fingerprint(s *Snapshot) string {
	h := sha256.New()
	io.WriteString(h, strings.Join(s.Tracks, "\x1f"))
	io.WriteString(h, "\n")
	for _, r := range s.Rows {
		ts := "unknown"
		if r.ObservedAtKnown() {
			ts = r.ObservedAt.UTC().Format(time.RFC3339)
		}
		fields := []string{r.ID, ts, r.Cohort, fmt.Sprintf("%t", r.MarketBackground), r.Status}
		fields = append(fields, r.Levels...)
		io.WriteString(h, strings.Join(fields, "\x1f"))
		io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil))
}
