// Package clause defines the canonical clause model shared by the scoring
// pipeline. Raw results from the verification engine arrive as loose strings
// and are normalized here into closed category/status enums before any
// scoring or verdict logic sees them.
package clause

// Category identifies which verification dimension a clause belongs to.
// The set is closed; nothing downstream accepts a category outside it.
type Category string

const (
	CategoryPreconditions  Category = "preconditions"
	CategoryPostconditions Category = "postconditions"
	CategoryInvariants     Category = "invariants"
	CategoryTemporal       Category = "temporal"
	CategoryChaos          Category = "chaos"
	CategoryCoverage       Category = "coverage"
)

// FallbackCategory is where unrecognized raw categories land. Upstream
// engines emit free-form category strings; anything we cannot match is
// scored as a postcondition rather than rejected.
const FallbackCategory = CategoryPostconditions

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryPreconditions,
		CategoryPostconditions,
		CategoryInvariants,
		CategoryTemporal,
		CategoryChaos,
		CategoryCoverage,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryPreconditions, CategoryPostconditions, CategoryInvariants,
		CategoryTemporal, CategoryChaos, CategoryCoverage:
		return true
	}
	return false
}

// Status is the outcome of a single clause verification.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusPartial Status = "partial"
	StatusUnknown Status = "unknown"
)

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusPartial, StatusUnknown:
		return true
	}
	return false
}

// Confidence levels assigned from the upstream impact annotation.
const (
	ConfidenceCritical = 100
	ConfidenceHigh     = 80
	ConfidenceDefault  = 60
)

// Result is one normalized verification outcome. Results are produced per
// run and discarded after scoring; they are never persisted.
type Result struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	Confidence  int      `json:"confidence"`
	Description string   `json:"description,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// StatusCounts tallies clause outcomes.
type StatusCounts struct {
	Pass    int `json:"pass"`
	Fail    int `json:"fail"`
	Partial int `json:"partial"`
	Unknown int `json:"unknown"`
}

// Total returns the number of counted clauses.
func (c StatusCounts) Total() int {
	return c.Pass + c.Fail + c.Partial + c.Unknown
}

// Add increments the counter matching status.
func (c *StatusCounts) Add(status Status) {
	switch status {
	case StatusPass:
		c.Pass++
	case StatusFail:
		c.Fail++
	case StatusPartial:
		c.Partial++
	default:
		c.Unknown++
	}
}

// Count tallies a clause list by status.
func Count(results []Result) StatusCounts {
	var counts StatusCounts
	for _, r := range results {
		counts.Add(r.Status)
	}
	return counts
}

// GroupByCategory buckets results by their category.
func GroupByCategory(results []Result) map[Category][]Result {
	groups := make(map[Category][]Result)
	for _, r := range results {
		groups[r.Category] = append(groups[r.Category], r)
	}
	return groups
}
