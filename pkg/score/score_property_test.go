//go:build property
// +build property

// Property-based tests for score range and monotonicity.
package score_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/isl-gate/trustcore/pkg/clause"
	"github.com/isl-gate/trustcore/pkg/score"
)

var allStatuses = []clause.Status{
	clause.StatusPass, clause.StatusFail, clause.StatusPartial, clause.StatusUnknown,
}

func genClauses() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, len(allStatuses)*len(clause.Categories())-1)).
		Map(func(codes []int) []clause.Result {
			cats := clause.Categories()
			clauses := make([]clause.Result, 0, len(codes))
			for _, code := range codes {
				clauses = append(clauses, clause.Result{
					Category: cats[code/len(allStatuses)],
					Status:   allStatuses[code%len(allStatuses)],
				})
			}
			return clauses
		})
}

// TestScoreRange verifies Compute stays in [0,100] for any clause list and
// any non-degenerate penalty.
func TestScoreRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("score is always in [0,100]", prop.ForAll(
		func(clauses []clause.Result, penalty float64) bool {
			result, err := score.Compute(clauses, score.Config{UnknownPenalty: penalty})
			if err != nil {
				return false
			}
			return result.Score >= 0 && result.Score <= 100
		},
		genClauses(),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

// TestScoreMonotonicity verifies upgrading any non-pass clause to pass never
// decreases the score.
func TestScoreMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("upgrading a clause to pass never lowers the score", prop.ForAll(
		func(clauses []clause.Result, idx int) bool {
			if len(clauses) == 0 {
				return true
			}
			before, err := score.Compute(clauses, score.Config{})
			if err != nil {
				return false
			}

			upgraded := make([]clause.Result, len(clauses))
			copy(upgraded, clauses)
			upgraded[idx%len(upgraded)].Status = clause.StatusPass

			after, err := score.Compute(upgraded, score.Config{})
			if err != nil {
				return false
			}
			return after.Score >= before.Score
		},
		genClauses(),
		gen.IntRange(0, 1<<20),
	))

	properties.TestingRun(t)
}
