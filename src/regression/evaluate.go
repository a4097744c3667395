package regression

import (
	"fmt"
	"strconv"

	"regcheck/src/contracts"
)

// Compare applies the policy for current.Kind and returns a finding when the
// current value is worse than the baseline. ok is false when nothing changed
// for the worse.
func Compare(current, baseline Value, baselineNumber int, checks contracts.CheckConfiguration) (contracts.Finding, bool) {
	if current.Kind.IsCoverage() {
		return compareCoverage(current, baseline, baselineNumber, checks)
	}
	return compareWarnings(current, baseline, baselineNumber)
}

func compareWarnings(current, baseline Value, baselineNumber int) (contracts.Finding, bool) {
	delta := current.Count - baseline.Count
	if delta <= 0 {
		return contracts.Finding{}, false
	}

	return contracts.Finding{
		Kind:      current.Kind,
		Regressed: true,
		Message: fmt.Sprintf(
			"Regressions detected in %s. Compared to the current base line at build #%d, %d new warnings found",
			current.Kind.DisplayName(), baselineNumber, delta),
		BaselineNumber: intPtr(baselineNumber),
		Current:        float64(current.Count),
		Baseline:       float64(baseline.Count),
		Delta:          float64(delta),
	}, true
}

// compareCoverage uses delta = baseline - current, so a positive delta is a
// drop. A drop while the current value is above the threshold is reported
// but does not regress.
func compareCoverage(current, baseline Value, baselineNumber int, checks contracts.CheckConfiguration) (contracts.Finding, bool) {
	delta := baseline.Percentage - current.Percentage
	if delta <= checks.Tolerance() {
		return contracts.Finding{}, false
	}

	f := contracts.Finding{
		Kind:      current.Kind,
		Regressed: true,
		Message: fmt.Sprintf(
			"Regressions detected in Coverage Report. Compared to the current base line at build #%d, still %s increased %sneeded",
			baselineNumber, FormatPercent(delta), coverageLabel(current.Kind)),
		BaselineNumber: intPtr(baselineNumber),
		Current:        current.Percentage,
		Baseline:       baseline.Percentage,
		Delta:          delta,
	}

	threshold := checks.Threshold()
	if current.Percentage > threshold {
		f.Regressed = false
		f.Note = fmt.Sprintf(
			"Lower coverage than buildnumber: %d, but above threshold: %s so not failing build!",
			baselineNumber, strconv.FormatFloat(threshold, 'f', -1, 64))
	}
	return f, true
}

// FormatPercent renders percentage points with one decimal, e.g. "2.3%".
func FormatPercent(points float64) string {
	return strconv.FormatFloat(points, 'f', 1, 64) + "%"
}

func coverageLabel(kind contracts.CheckKind) string {
	switch kind {
	case contracts.KindBranchCoverage:
		return "branchcoverage "
	case contracts.KindLineCoverage:
		return "linecoverage "
	}
	return "coverage "
}

func intPtr(n int) *int {
	return &n
}
