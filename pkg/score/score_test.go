package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isl-gate/trustcore/pkg/clause"
)

func mkClause(cat clause.Category, status clause.Status) clause.Result {
	return clause.Result{Category: cat, Status: status, Confidence: clause.ConfidenceDefault}
}

func TestCompute_WeightOverrideScenario(t *testing.T) {
	// 2 preconditions (1 pass, 1 fail), 2 postconditions (both pass),
	// equal weights: round(50*0.5 + 100*0.5) = 75.
	clauses := []clause.Result{
		mkClause(clause.CategoryPreconditions, clause.StatusPass),
		mkClause(clause.CategoryPreconditions, clause.StatusFail),
		mkClause(clause.CategoryPostconditions, clause.StatusPass),
		mkClause(clause.CategoryPostconditions, clause.StatusPass),
	}
	cfg := Config{Weights: map[clause.Category]int{
		clause.CategoryPreconditions:  50,
		clause.CategoryPostconditions: 50,
		clause.CategoryInvariants:     0,
		clause.CategoryTemporal:       0,
		clause.CategoryChaos:          0,
		clause.CategoryCoverage:       0,
	}}

	result, err := Compute(clauses, cfg)
	require.NoError(t, err)
	assert.Equal(t, 75, result.Score)
	assert.Equal(t, 50, result.Breakdown[clause.CategoryPreconditions].Score)
	assert.Equal(t, 100, result.Breakdown[clause.CategoryPostconditions].Score)
}

func TestCompute_AbsentCategoriesExcluded(t *testing.T) {
	// Only invariants present: its weight carries the whole average, so a
	// fully passing invariants group scores 100 regardless of other weights.
	clauses := []clause.Result{
		mkClause(clause.CategoryInvariants, clause.StatusPass),
		mkClause(clause.CategoryInvariants, clause.StatusPass),
	}
	result, err := Compute(clauses, Config{})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
	require.Len(t, result.Breakdown, 1)
}

func TestCompute_NoClauses(t *testing.T) {
	result, err := Compute(nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Breakdown)
}

func creditOf(v float64) *float64 {
	return &v
}

func TestCompute_PartialCredit(t *testing.T) {
	clauses := []clause.Result{
		mkClause(clause.CategoryInvariants, clause.StatusPartial),
	}
	result, err := Compute(clauses, Config{})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)

	result, err = Compute(clauses, Config{PartialCredit: creditOf(0.25)})
	require.NoError(t, err)
	assert.Equal(t, 25, result.Score)
}

func TestCompute_ExplicitZeroPartialCredit(t *testing.T) {
	// An explicit 0 means partial clauses earn nothing; it must not
	// silently revert to the default.
	clauses := []clause.Result{
		mkClause(clause.CategoryPreconditions, clause.StatusPartial),
	}
	result, err := Compute(clauses, Config{PartialCredit: creditOf(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.Breakdown[clause.CategoryPreconditions].Score)
}

func TestCompute_UnknownPenalty(t *testing.T) {
	clauses := []clause.Result{
		mkClause(clause.CategoryChaos, clause.StatusUnknown),
		mkClause(clause.CategoryChaos, clause.StatusPass),
	}

	// No credit for unknown.
	result, err := Compute(clauses, Config{})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)

	// Full credit treats unknown as pass.
	result, err = Compute(clauses, Config{UnknownPenalty: 1})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)

	result, err = Compute(clauses, Config{UnknownPenalty: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 75, result.Score)
}

func TestCompute_NegativeWeightRejected(t *testing.T) {
	_, err := Compute(nil, Config{Weights: map[clause.Category]int{
		clause.CategoryChaos: -1,
	}})
	assert.ErrorIs(t, err, ErrNegativeWeight)
}

func TestCompute_ZeroSumWeightsRejected(t *testing.T) {
	weights := make(map[clause.Category]int)
	for _, cat := range clause.Categories() {
		weights[cat] = 0
	}
	_, err := Compute(nil, Config{Weights: weights})
	assert.ErrorIs(t, err, ErrZeroTotalWeight)
}

func TestCompute_UnknownCategoryNameIgnoredInWeights(t *testing.T) {
	// Invalid category keys in the weight table must not disturb defaults.
	clauses := []clause.Result{
		mkClause(clause.CategoryInvariants, clause.StatusPass),
	}
	result, err := Compute(clauses, Config{Weights: map[clause.Category]int{
		clause.Category("nonsense"): 90,
	}})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
}

func TestCompute_MonotonicUnderUpgrade(t *testing.T) {
	// Replacing a fail with a pass in the same category never lowers the score.
	base := []clause.Result{
		mkClause(clause.CategoryPreconditions, clause.StatusFail),
		mkClause(clause.CategoryPreconditions, clause.StatusPass),
		mkClause(clause.CategoryCoverage, clause.StatusUnknown),
	}
	before, err := Compute(base, Config{})
	require.NoError(t, err)

	upgraded := make([]clause.Result, len(base))
	copy(upgraded, base)
	upgraded[0].Status = clause.StatusPass
	after, err := Compute(upgraded, Config{})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, after.Score, before.Score)
}
