// Package report assembles scoring and verification outputs into a
// structured, renderable TrustReport. Rendering is strictly separated from
// computation: every renderer is a pure function over an immutable result.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/isl-gate/trustcore/pkg/clause"
	"github.com/isl-gate/trustcore/pkg/history"
	"github.com/isl-gate/trustcore/pkg/score"
	"github.com/isl-gate/trustcore/pkg/verdict"
)

// TrustReport is the machine-readable form of one scoring run.
type TrustReport struct {
	ReportID      string                                 `json:"reportId"`
	GeneratedAt   string                                 `json:"generatedAt"`
	Score         int                                    `json:"score"`
	ShipThreshold int                                    `json:"shipThreshold"`
	Gate          verdict.Gate                           `json:"gate"`
	Proof         verdict.Proof                          `json:"proof"`
	Passed        bool                                   `json:"passed"`
	Breakdown     map[clause.Category]score.CategoryBreakdown `json:"breakdown"`
	Counts        clause.StatusCounts                    `json:"counts"`
	Trend         history.Trend                          `json:"trend,omitempty"`
}

// Build assembles a TrustReport from the pipeline outputs. trend may be
// empty when no history was consulted.
func Build(result score.Result, decision verdict.Decision, shipThreshold int, trend history.Trend, now time.Time) TrustReport {
	return TrustReport{
		ReportID:      uuid.New().String(),
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Score:         result.Score,
		ShipThreshold: shipThreshold,
		Gate:          decision.Gate,
		Proof:         decision.Proof,
		Passed:        decision.Passed(),
		Breakdown:     result.Breakdown,
		Counts:        result.Counts,
		Trend:         trend,
	}
}

// HistoryEntry summarizes the report into one append-only history record.
func (r TrustReport) HistoryEntry(commitHash string, now time.Time) history.Entry {
	return history.NewEntry(r.Score, string(r.Gate), history.Counts{
		Pass: r.Counts.Pass,
		Fail: r.Counts.Fail,
	}, commitHash, now)
}
