package profile

import "strings"

// Level is an ordinal attainment tier. "Best" is decided by an explicit rank
// table rather than by comparing the letters themselves, so the alphabet can
// grow past single letters without breaking apex selection.
type Level string

const (
	LevelA Level = "A"
	LevelB Level = "B"
	LevelC Level = "C"
	LevelD Level = "D"

	// LevelNone marks a consultant whose records never carried a value for
	// the track. It counts as its own category downstream.
	LevelNone Level = ""
)

var levelRank = map[Level]int{
	LevelA: 0,
	LevelB: 1,
	LevelC: 2,
	LevelD: 3,
}

// Letters outside the table share one rank past the known tiers; a missing
// value ranks after everything.
const (
	rankUnknown = 4
	rankNone    = 5
)

// Rank orders levels best-first. Letters outside the known alphabet are valid
// categories but rank after every known tier; a missing value ranks last.
func (l Level) Rank() int {
	if l == LevelNone {
		return rankNone
	}
	if r, ok := levelRank[l]; ok {
		return r
	}
	return rankUnknown
}

// Better reports whether l outranks other. Unknown letters with equal rank
// fall back to string order so apex selection stays deterministic.
func (l Level) Better(other Level) bool {
	lr, or := l.Rank(), other.Rank()
	if lr != or {
		return lr < or
	}
	return l < other
}

// ParseLevel normalizes a raw cell value to a Level.
func ParseLevel(s string) Level {
	return Level(strings.ToUpper(strings.TrimSpace(s)))
}

// KnownLevels is the render order for the known alphabet. Counting never
// assumes this set is closed; it only fixes presentation order.
func KnownLevels() []Level {
	return []Level{LevelA, LevelB, LevelC, LevelD}
}
