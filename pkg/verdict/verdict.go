// Package verdict maps a trust score and clause composition onto the closed
// verdict state machine. Two instantiations of one ordering exist: the
// gate-mode verdict (SHIP/WARN/BLOCK) used for release gating and the
// proof-mode verdict (PROVEN/INCOMPLETE_PROOF/VIOLATED/UNPROVEN) used for
// proof bundles. Decide is total: every input produces exactly one verdict.
package verdict

import "github.com/isl-gate/trustcore/pkg/clause"

// Gate is the release-gating verdict.
type Gate string

const (
	GateShip  Gate = "SHIP"
	GateWarn  Gate = "WARN"
	GateBlock Gate = "BLOCK"
)

// Proof is the proof-mode verdict.
type Proof string

const (
	ProofProven     Proof = "PROVEN"
	ProofIncomplete Proof = "INCOMPLETE_PROOF"
	ProofViolated   Proof = "VIOLATED"
	ProofUnproven   Proof = "UNPROVEN"
)

// Rank orders proof verdicts: complete passing evidence > incomplete
// evidence > failing evidence > no usable evidence.
func (p Proof) Rank() int {
	switch p {
	case ProofProven:
		return 3
	case ProofIncomplete:
		return 2
	case ProofViolated:
		return 1
	default:
		return 0
	}
}

// Rank orders gate verdicts on the same scale as Proof.Rank.
func (g Gate) Rank() int {
	switch g {
	case GateShip:
		return 3
	case GateWarn:
		return 2
	default:
		return 0
	}
}

// Decision pairs the two verdict forms for one evaluation.
type Decision struct {
	Gate  Gate  `json:"gate"`
	Proof Proof `json:"proof"`
}

// Passed reports whether the decision maps to process exit success.
// SHIP and WARN pass; BLOCK fails. Callers that want WARN to fail apply
// their own strict policy on top.
func (d Decision) Passed() bool {
	return d.Gate == GateShip || d.Gate == GateWarn
}

// ExitCode returns the CLI exit code for the decision.
func (d Decision) ExitCode() int {
	if d.Passed() {
		return 0
	}
	return 1
}

// Decide evaluates the verdict rules in order; first match wins.
//
//  1. No clauses at all: UNPROVEN/BLOCK. Absence of evidence never ships.
//  2. Any failing clause: VIOLATED/BLOCK regardless of score. One proven-
//     false clause is an automatic block; the score is informational.
//  3. Score at or above threshold with every clause passing: PROVEN/SHIP.
//  4. Score at or above threshold with unknown or partial clauses left:
//     INCOMPLETE_PROOF/WARN.
//  5. Otherwise (score below threshold, nothing failing):
//     INCOMPLETE_PROOF/BLOCK.
func Decide(score, shipThreshold int, clauses []clause.Result) Decision {
	if len(clauses) == 0 {
		return Decision{Gate: GateBlock, Proof: ProofUnproven}
	}

	counts := clause.Count(clauses)
	if counts.Fail > 0 {
		return Decision{Gate: GateBlock, Proof: ProofViolated}
	}

	if score >= shipThreshold {
		if counts.Unknown == 0 && counts.Partial == 0 {
			return Decision{Gate: GateShip, Proof: ProofProven}
		}
		return Decision{Gate: GateWarn, Proof: ProofIncomplete}
	}

	return Decision{Gate: GateBlock, Proof: ProofIncomplete}
}
