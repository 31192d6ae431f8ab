package clause

import "strings"

// categoryRule maps a raw substring to a canonical category. Rules are
// evaluated in order; first match wins.
type categoryRule struct {
	substring string
	category  Category
}

// categoryRules is the complete mapping table. Order is significant:
// "precondition" must be tested before any broader match, and "coverage"
// and "test" both fold into the coverage category.
var categoryRules = []categoryRule{
	{"precondition", CategoryPreconditions},
	{"postcondition", CategoryPostconditions},
	{"invariant", CategoryInvariants},
	{"temporal", CategoryTemporal},
	{"chaos", CategoryChaos},
	{"coverage", CategoryCoverage},
	{"test", CategoryCoverage},
}

// Classify normalizes one raw verification outcome into a canonical Result.
// It is total: any combination of input strings produces a valid Result.
//
// Category matching is case-insensitive substring matching against the rule
// table; a raw category that matches nothing falls back to
// FallbackCategory. That fallback is deliberate upstream-compat behavior,
// not an error.
func Classify(id, rawCategory, rawStatus, impact string) Result {
	return Result{
		ID:         id,
		Category:   classifyCategory(rawCategory),
		Status:     classifyStatus(rawStatus),
		Confidence: classifyConfidence(impact),
	}
}

func classifyCategory(raw string) Category {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, rule := range categoryRules {
		if strings.Contains(normalized, rule.substring) {
			return rule.category
		}
	}
	return FallbackCategory
}

func classifyStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pass", "passed":
		return StatusPass
	case "fail", "failed":
		return StatusFail
	case "partial":
		return StatusPartial
	case "skip", "skipped":
		return StatusUnknown
	default:
		return StatusUnknown
	}
}

func classifyConfidence(impact string) int {
	switch strings.ToLower(strings.TrimSpace(impact)) {
	case "critical":
		return ConfidenceCritical
	case "high":
		return ConfidenceHigh
	default:
		return ConfidenceDefault
	}
}
