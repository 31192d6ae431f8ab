// Package history persists an append-only sequence of past trust score
// computations and derives a trend from it. Entries are immutable once
// appended; the store never edits or reorders prior entries.
package history

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultPath is where the history ledger lives unless configured otherwise.
const DefaultPath = ".isl-gate/trust-history.json"

// TrendTolerance is the minimum mean difference, in score points, before a
// history reads as improving or declining rather than stable.
const TrendTolerance = 1.0

var (
	// ErrLockTimeout is returned when the ledger lock cannot be acquired.
	ErrLockTimeout = errors.New("history: timed out waiting for ledger lock")
)

// Counts is the pass/fail tally summarized into an entry.
type Counts struct {
	Pass int `json:"pass"`
	Fail int `json:"fail"`
}

// Entry is one recorded score computation. Immutable after append.
type Entry struct {
	Score      int    `json:"score"`
	Verdict    string `json:"verdict"`
	Counts     Counts `json:"counts"`
	Timestamp  string `json:"timestamp"`
	CommitHash string `json:"commitHash,omitempty"`
}

// History is the ordered entry list, oldest-first as stored on disk.
// Renderers display newest-first.
type History struct {
	Entries []Entry `json:"entries"`
}

// Newest returns entries in display order, newest-first.
func (h History) Newest() []Entry {
	out := make([]Entry, len(h.Entries))
	for i, e := range h.Entries {
		out[len(h.Entries)-1-i] = e
	}
	return out
}

// Ledger is the append-only history store contract.
type Ledger interface {
	Append(ctx context.Context, entry Entry) error
	Load(ctx context.Context) (History, error)
}

// Trend is the direction of score change over recent history.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// ComputeTrend compares the mean of the most recent min(5, n/2) entries
// against the mean of the preceding equal-sized window. Differences within
// tolerance read as stable; a non-positive tolerance selects
// TrendTolerance. Fewer than two entries is stable by definition.
func ComputeTrend(h History, tolerance float64) Trend {
	if tolerance <= 0 {
		tolerance = TrendTolerance
	}

	n := len(h.Entries)
	window := n / 2
	if window > 5 {
		window = 5
	}
	if window < 1 {
		return TrendStable
	}

	recent := mean(h.Entries[n-window:])
	prior := mean(h.Entries[n-2*window : n-window])

	switch {
	case recent-prior > tolerance:
		return TrendImproving
	case prior-recent > tolerance:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Score
	}
	return float64(sum) / float64(len(entries))
}

// NewEntry builds an entry stamped with the given clock time in RFC 3339.
func NewEntry(score int, verdict string, counts Counts, commitHash string, now time.Time) Entry {
	return Entry{
		Score:      score,
		Verdict:    verdict,
		Counts:     counts,
		Timestamp:  now.UTC().Format(time.RFC3339),
		CommitHash: commitHash,
	}
}

// Open selects a ledger backend by path shape: paths ending in .db open the
// sqlite store, everything else the JSON file store.
func Open(path string) (Ledger, error) {
	if strings.HasSuffix(path, ".db") {
		return OpenSQLStore(path)
	}
	return NewFileStore(path), nil
}
