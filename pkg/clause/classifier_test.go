package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Categories(t *testing.T) {
	cases := []struct {
		raw  string
		want Category
	}{
		{"precondition", CategoryPreconditions},
		{"Preconditions", CategoryPreconditions},
		{"API preconditions block", CategoryPreconditions},
		{"postcondition", CategoryPostconditions},
		{"invariant", CategoryInvariants},
		{"state-invariant", CategoryInvariants},
		{"temporal", CategoryTemporal},
		{"chaos", CategoryChaos},
		{"coverage", CategoryCoverage},
		{"unit-test", CategoryCoverage},
		{"integration tests", CategoryCoverage},
	}

	for _, tc := range cases {
		got := Classify("c1", tc.raw, "pass", "")
		assert.Equal(t, tc.want, got.Category, "raw category %q", tc.raw)
	}
}

func TestClassify_UnmatchedCategoryFallsBackToPostconditions(t *testing.T) {
	// Unrecognized categories land in postconditions. This is documented
	// upstream-compat behavior and must not change silently.
	for _, raw := range []string{"", "security", "performance", "???"} {
		got := Classify("c1", raw, "pass", "")
		assert.Equal(t, FallbackCategory, got.Category, "raw category %q", raw)
		assert.Equal(t, CategoryPostconditions, got.Category)
	}
}

func TestClassify_Statuses(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"pass", StatusPass},
		{"passed", StatusPass},
		{"PASS", StatusPass},
		{"fail", StatusFail},
		{"failed", StatusFail},
		{"partial", StatusPartial},
		{"skip", StatusUnknown},
		{"skipped", StatusUnknown},
		{"", StatusUnknown},
		{"errored", StatusUnknown},
		{"timeout", StatusUnknown},
	}

	for _, tc := range cases {
		got := Classify("c1", "invariant", tc.raw, "")
		assert.Equal(t, tc.want, got.Status, "raw status %q", tc.raw)
	}
}

func TestClassify_Confidence(t *testing.T) {
	assert.Equal(t, ConfidenceCritical, Classify("c1", "invariant", "pass", "critical").Confidence)
	assert.Equal(t, ConfidenceHigh, Classify("c1", "invariant", "pass", "HIGH").Confidence)
	assert.Equal(t, ConfidenceDefault, Classify("c1", "invariant", "pass", "low").Confidence)
	assert.Equal(t, ConfidenceDefault, Classify("c1", "invariant", "pass", "").Confidence)
}

func TestClassify_IsTotal(t *testing.T) {
	got := Classify("", "", "", "")
	assert.True(t, got.Category.Valid())
	assert.True(t, got.Status.Valid())
	assert.Equal(t, ConfidenceDefault, got.Confidence)
}

func TestCount(t *testing.T) {
	results := []Result{
		{Status: StatusPass},
		{Status: StatusPass},
		{Status: StatusFail},
		{Status: StatusPartial},
		{Status: StatusUnknown},
	}
	counts := Count(results)
	assert.Equal(t, 2, counts.Pass)
	assert.Equal(t, 1, counts.Fail)
	assert.Equal(t, 1, counts.Partial)
	assert.Equal(t, 1, counts.Unknown)
	assert.Equal(t, 5, counts.Total())
}
