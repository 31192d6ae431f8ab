package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/isl-gate/trustcore/pkg/bundle"
	"github.com/isl-gate/trustcore/pkg/clause"
	"github.com/isl-gate/trustcore/pkg/score"
)

// Format selects a rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ValidFormat reports whether f is a known rendering format.
func ValidFormat(f Format) bool {
	return f == FormatText || f == FormatJSON || f == FormatMarkdown
}

// RenderJSON serializes any result structure verbatim.
func RenderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: encode json: %w", err)
	}
	return string(data), nil
}

// Render renders a TrustReport in the requested format.
func Render(r TrustReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(r)
	case FormatMarkdown:
		return RenderMarkdown(r), nil
	default:
		return RenderText(r), nil
	}
}

// RenderText produces the human-readable report.
func RenderText(r TrustReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trust Score: %d/100 (ship threshold %d)\n", r.Score, r.ShipThreshold)
	fmt.Fprintf(&b, "Verdict: %s (%s)\n", r.Gate, r.Proof)
	fmt.Fprintf(&b, "Clauses: %d pass, %d fail, %d partial, %d unknown\n",
		r.Counts.Pass, r.Counts.Fail, r.Counts.Partial, r.Counts.Unknown)
	if r.Trend != "" {
		fmt.Fprintf(&b, "Trend: %s\n", r.Trend)
	}

	if len(r.Breakdown) > 0 {
		b.WriteString("\nPer-category breakdown:\n")
		for _, cat := range sortedCategories(r.Breakdown) {
			cb := r.Breakdown[cat]
			fmt.Fprintf(&b, "  %-15s %3d  (weight %d: %d pass, %d fail, %d partial, %d unknown)\n",
				cat, cb.Score, cb.Weight,
				cb.Counts.Pass, cb.Counts.Fail, cb.Counts.Partial, cb.Counts.Unknown)
		}
	}
	return b.String()
}

// RenderMarkdown produces the sectioned markdown report.
func RenderMarkdown(r TrustReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Trust Report\n\n")
	fmt.Fprintf(&b, "## Verdict: %s\n\n", r.Gate)
	fmt.Fprintf(&b, "- **Score**: %d/100 (ship threshold %d)\n", r.Score, r.ShipThreshold)
	fmt.Fprintf(&b, "- **Proof**: %s\n", r.Proof)
	fmt.Fprintf(&b, "- **Passed**: %t\n", r.Passed)
	if r.Trend != "" {
		fmt.Fprintf(&b, "- **Trend**: %s\n", r.Trend)
	}
	fmt.Fprintf(&b, "- **Generated**: %s\n", r.GeneratedAt)

	if len(r.Breakdown) > 0 {
		b.WriteString("\n## Breakdown\n\n")
		b.WriteString("| Category | Score | Weight | Pass | Fail | Partial | Unknown |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, cat := range sortedCategories(r.Breakdown) {
			cb := r.Breakdown[cat]
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d | %d |\n",
				cat, cb.Score, cb.Weight,
				cb.Counts.Pass, cb.Counts.Fail, cb.Counts.Partial, cb.Counts.Unknown)
		}
	}
	return b.String()
}

// RenderBundle renders a bundle verification result in the requested format.
func RenderBundle(res bundle.Result, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(res)
	case FormatMarkdown:
		return RenderBundleMarkdown(res), nil
	default:
		return RenderBundleText(res), nil
	}
}

// RenderBundleText produces the human-readable verification summary.
func RenderBundleText(res bundle.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bundle verification: %s\n", verdictWord(res.Valid))
	fmt.Fprintf(&b, "Files intact: %t\n", res.FilesIntact)
	fmt.Fprintf(&b, "Signature: %s\n", res.SignatureStatus)
	for _, p := range res.ModifiedFiles {
		fmt.Fprintf(&b, "  modified: %s\n", p)
	}
	for _, p := range res.MissingFiles {
		fmt.Fprintf(&b, "  missing:  %s\n", p)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e)
	}
	return b.String()
}

// RenderBundleMarkdown produces the sectioned markdown verification report
// with a status heading, integrity table, and bundle metadata.
func RenderBundleMarkdown(res bundle.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Proof Bundle Verification\n\n")
	fmt.Fprintf(&b, "## Status: %s\n\n", strings.ToUpper(verdictWord(res.Valid)))
	fmt.Fprintf(&b, "- **Files intact**: %t\n", res.FilesIntact)
	fmt.Fprintf(&b, "- **Signature**: %s\n", res.SignatureStatus)

	if res.Manifest != nil {
		b.WriteString("\n## Bundle\n\n")
		fmt.Fprintf(&b, "- **ID**: %s\n", res.Manifest.ID)
		fmt.Fprintf(&b, "- **Project**: %s\n", res.Manifest.Project.Name)
		fmt.Fprintf(&b, "- **Exported**: %s\n", res.Manifest.Timestamp)
		fmt.Fprintf(&b, "- **Verdict**: %s\n", res.Manifest.Verdict)
		fmt.Fprintf(&b, "- **Files**: %d\n", len(res.Manifest.Files))

		b.WriteString("\n## Integrity\n\n")
		b.WriteString("| File | Status |\n|---|---|\n")
		modified := toSet(res.ModifiedFiles)
		missing := toSet(res.MissingFiles)
		for _, f := range res.Manifest.Files {
			status := "intact"
			if modified[f.Path] {
				status = "modified"
			} else if missing[f.Path] {
				status = "missing"
			}
			fmt.Fprintf(&b, "| %s | %s |\n", f.Path, status)
		}
	}

	if len(res.Errors) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}

func verdictWord(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}

func toSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}

// sortedCategories returns the breakdown's categories in display order,
// with any unrecognized stragglers sorted after the known ones.
func sortedCategories(breakdown map[clause.Category]score.CategoryBreakdown) []clause.Category {
	cats := make([]clause.Category, 0, len(breakdown))
	seen := make(map[clause.Category]bool, len(breakdown))
	for _, cat := range clause.Categories() {
		if _, ok := breakdown[cat]; ok {
			cats = append(cats, cat)
			seen[cat] = true
		}
	}
	var rest []clause.Category
	for cat := range breakdown {
		if !seen[cat] {
			rest = append(rest, cat)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(cats, rest...)
}
