package profile

import "github.com/LumeAnalytics/safralens-cli/internal/dataset"

// Cache memoizes the last consolidation result by snapshot fingerprint, so
// re-running metrics against the same upload (e.g. with a different cohort
// selection) skips the consolidation pass. It holds a single entry: a new
// fingerprint replaces the old one. Process-local, never persisted, and not
// safe for concurrent use (the pipeline has no concurrent writers).
type Cache struct {
	fingerprint string
	result      Result
}

// Consolidate returns the cached result when the snapshot fingerprint matches
// the last call, consolidating and storing otherwise.
func (c *Cache) Consolidate(snap *dataset.Snapshot) Result {
	if c.fingerprint != "" && c.fingerprint == snap.Fingerprint {
		return c.result
	}
	c.result = Consolidate(snap)
	c.fingerprint = snap.Fingerprint
	return c.result
}

// Cached reports whether the given fingerprint would be served from cache.
func (c *Cache) Cached(fingerprint string) bool {
	return c.fingerprint != "" && c.fingerprint == fingerprint
}
