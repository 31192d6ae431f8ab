// Package score computes the weighted trust score from normalized clause
// results. Scoring is pure: same clauses and config always produce the same
// result, and nothing here touches disk or logs.
package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/isl-gate/trustcore/pkg/clause"
)

var (
	// ErrNegativeWeight is returned when any configured weight is below zero.
	ErrNegativeWeight = errors.New("score: category weight must be non-negative")
	// ErrZeroTotalWeight is returned when the effective weight table sums to zero.
	ErrZeroTotalWeight = errors.New("score: weight table sums to zero")
)

// DefaultPartialCredit is the fraction of a pass credited to a partial
// clause.
const DefaultPartialCredit = 0.5

// DefaultWeights is the built-in weight table. Entries sum to 100.
// Categories absent from a caller-supplied table fall back to these values.
func DefaultWeights() map[clause.Category]int {
	return map[clause.Category]int{
		clause.CategoryPreconditions:  25,
		clause.CategoryPostconditions: 25,
		clause.CategoryInvariants:     20,
		clause.CategoryTemporal:       10,
		clause.CategoryChaos:          10,
		clause.CategoryCoverage:       10,
	}
}

// Config controls score computation.
type Config struct {
	// Weights maps categories to relative weight. Missing categories use
	// DefaultWeights. Negative entries are a configuration error.
	Weights map[clause.Category]int

	// UnknownPenalty is the fraction of a pass credited to an unknown
	// clause, in [0,1]. 0 means no credit, 1 treats unknown as pass.
	UnknownPenalty float64

	// PartialCredit is the fraction of a pass credited to a partial
	// clause. Nil selects DefaultPartialCredit; an explicit 0 means
	// partial clauses earn nothing.
	PartialCredit *float64
}

// effectiveWeights merges cfg.Weights over the defaults and validates.
func (c Config) effectiveWeights() (map[clause.Category]int, error) {
	weights := DefaultWeights()
	for cat, w := range c.Weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: %s=%d", ErrNegativeWeight, cat, w)
		}
		if cat.Valid() {
			weights[cat] = w
		}
	}

	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return nil, ErrZeroTotalWeight
	}
	return weights, nil
}

func (c Config) partialCredit() float64 {
	if c.PartialCredit == nil {
		return DefaultPartialCredit
	}
	return *c.PartialCredit
}

// CategoryBreakdown records how one category scored, for audit.
type CategoryBreakdown struct {
	Score  int                 `json:"score"`
	Weight int                 `json:"weight"`
	Counts clause.StatusCounts `json:"counts"`
}

// Result is the outcome of a score computation.
type Result struct {
	// Score is the weighted trust score in [0,100].
	Score int `json:"score"`

	// Breakdown holds per-category scores and raw counts. Only categories
	// with at least one clause appear.
	Breakdown map[clause.Category]CategoryBreakdown `json:"breakdown"`

	// Counts tallies all clauses regardless of category.
	Counts clause.StatusCounts `json:"counts"`
}

// Compute calculates the weighted trust score over clauses.
//
// Each category with evidence scores 100 * (pass + partial*credit +
// unknown*penalty) / total, clamped to [0,100]. Categories with no clauses
// are excluded entirely: the weighted average runs over present categories
// only, which redistributes absent weight proportionally. Zero clauses
// overall scores 0 - no evidence is never success.
func Compute(clauses []clause.Result, cfg Config) (Result, error) {
	weights, err := cfg.effectiveWeights()
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Breakdown: make(map[clause.Category]CategoryBreakdown),
		Counts:    clause.Count(clauses),
	}
	if len(clauses) == 0 {
		return result, nil
	}

	credit := cfg.partialCredit()
	groups := clause.GroupByCategory(clauses)

	weightedSum := 0.0
	weightTotal := 0
	for cat, group := range groups {
		counts := clause.Count(group)
		raw := float64(counts.Pass) +
			float64(counts.Partial)*credit +
			float64(counts.Unknown)*cfg.UnknownPenalty
		categoryScore := clampScore(100 * raw / float64(counts.Total()))

		weight := weights[cat]
		result.Breakdown[cat] = CategoryBreakdown{
			Score:  int(math.Round(categoryScore)),
			Weight: weight,
			Counts: counts,
		}

		weightedSum += categoryScore * float64(weight)
		weightTotal += weight
	}

	if weightTotal > 0 {
		result.Score = int(math.Round(clampScore(weightedSum / float64(weightTotal))))
	}
	return result, nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
