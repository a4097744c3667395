// Package contracts defines the data structures shared between the regression
// checker, the build history stores and the agents.
package contracts

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Outcome is the final result of a build as reported by the CI host.
type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeFailure  Outcome = "FAILURE"
	OutcomeUnstable Outcome = "UNSTABLE"
	OutcomeAborted  Outcome = "ABORTED"
	OutcomeNotBuilt Outcome = "NOT_BUILT"
)

// ParseOutcome converts a case-insensitive outcome name to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(strings.ToUpper(strings.TrimSpace(s))); o {
	case OutcomeSuccess, OutcomeFailure, OutcomeUnstable, OutcomeAborted, OutcomeNotBuilt:
		return o, nil
	}
	return "", fmt.Errorf("unknown build outcome %q", s)
}

// CheckKind identifies one metric the regression checker can compare.
type CheckKind string

const (
	KindPMD            CheckKind = "pmd"
	KindFindBugs       CheckKind = "findbugs"
	KindCheckstyle     CheckKind = "checkstyle"
	KindBranchCoverage CheckKind = "branch-coverage"
	KindLineCoverage   CheckKind = "line-coverage"
)

// WarningKinds lists the static-analysis kinds in evaluation order.
var WarningKinds = []CheckKind{KindPMD, KindFindBugs, KindCheckstyle}

// CoverageKinds lists the coverage kinds in evaluation order.
var CoverageKinds = []CheckKind{KindBranchCoverage, KindLineCoverage}

// IsCoverage reports whether the kind is evaluated with the coverage policy.
func (k CheckKind) IsCoverage() bool {
	return k == KindBranchCoverage || k == KindLineCoverage
}

// Metric returns the coverage metric a coverage kind reads.
func (k CheckKind) Metric() CoverageMetric {
	if k == KindBranchCoverage {
		return MetricBranch
	}
	return MetricLine
}

// DisplayName is the human-readable name of the tool result for a kind.
func (k CheckKind) DisplayName() string {
	switch k {
	case KindPMD:
		return "PMD Warnings"
	case KindFindBugs:
		return "FindBugs Warnings"
	case KindCheckstyle:
		return "Checkstyle Warnings"
	case KindBranchCoverage:
		return "Branch Coverage"
	case KindLineCoverage:
		return "Line Coverage"
	}
	return string(k)
}

// CoverageMetric identifies one percentage inside a coverage summary.
type CoverageMetric string

const (
	MetricLine   CoverageMetric = "line"
	MetricBranch CoverageMetric = "branch"
)

// WarningSummary is the result of one static-analysis tool for a build.
type WarningSummary struct {
	Count int `json:"count"`
}

// CoverageSummary holds coverage percentages (0-100) for a build.
type CoverageSummary struct {
	Percentages map[CoverageMetric]float64 `json:"percentages"`
}

// Percentage returns the value for a metric. Non-finite values count as missing.
func (c *CoverageSummary) Percentage(m CoverageMetric) (float64, bool) {
	if c == nil {
		return 0, false
	}
	v, ok := c.Percentages[m]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// BuildRecord is an immutable snapshot of one completed build in a project's
// history. Earlier builds are reached through a history lookup by number, never
// through a pointer held by the record.
type BuildRecord struct {
	Project     string                       `json:"project"`
	Number      int                          `json:"number"`
	Outcome     Outcome                      `json:"outcome"`
	URL         string                       `json:"url,omitempty"`
	CompletedAt time.Time                    `json:"completed_at"`
	Warnings    map[CheckKind]WarningSummary `json:"warnings,omitempty"`
	Coverage    *CoverageSummary             `json:"coverage,omitempty"`
}

// Warning returns the summary attached for a static-analysis kind.
func (b BuildRecord) Warning(kind CheckKind) (WarningSummary, bool) {
	w, ok := b.Warnings[kind]
	return w, ok
}

// SetWarnings attaches a warning count for kind.
func (b *BuildRecord) SetWarnings(kind CheckKind, count int) {
	if b.Warnings == nil {
		b.Warnings = make(map[CheckKind]WarningSummary)
	}
	b.Warnings[kind] = WarningSummary{Count: count}
}

// SetCoverage attaches a coverage percentage for metric.
func (b *BuildRecord) SetCoverage(metric CoverageMetric, pct float64) {
	if b.Coverage == nil {
		b.Coverage = &CoverageSummary{}
	}
	if b.Coverage.Percentages == nil {
		b.Coverage.Percentages = make(map[CoverageMetric]float64)
	}
	b.Coverage.Percentages[metric] = pct
}
