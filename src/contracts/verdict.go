package contracts

// DefaultCoverageThreshold is the coverage percentage above which a coverage
// drop is reported but does not fail the build.
const DefaultCoverageThreshold = 85.0

// CheckConfiguration selects which checks run for one evaluation.
type CheckConfiguration struct {
	PMD        bool `json:"pmd" mapstructure:"pmd"`
	FindBugs   bool `json:"findbugs" mapstructure:"findbugs"`
	Checkstyle bool `json:"checkstyle" mapstructure:"checkstyle"`
	Coverage   bool `json:"coverage" mapstructure:"coverage"`

	// CoverageThreshold exempts drops when the current percentage is above it.
	CoverageThreshold float64 `json:"coverage_threshold" mapstructure:"coverage_threshold"`
	// CoverageTolerance is the largest drop, in percentage points, that is
	// still treated as no change. Zero keeps the strict comparison.
	CoverageTolerance float64 `json:"coverage_tolerance" mapstructure:"coverage_tolerance"`
}

// DefaultCheckConfiguration enables every check with the stock threshold.
func DefaultCheckConfiguration() CheckConfiguration {
	return CheckConfiguration{
		PMD:               true,
		FindBugs:          true,
		Checkstyle:        true,
		Coverage:          true,
		CoverageThreshold: DefaultCoverageThreshold,
	}
}

// Threshold returns the coverage threshold, falling back to the default when
// none is configured.
func (c CheckConfiguration) Threshold() float64 {
	if c.CoverageThreshold <= 0 {
		return DefaultCoverageThreshold
	}
	return c.CoverageThreshold
}

// Tolerance returns the configured coverage tolerance, never negative.
func (c CheckConfiguration) Tolerance() float64 {
	if c.CoverageTolerance < 0 {
		return 0
	}
	return c.CoverageTolerance
}

// Enabled reports whether kind takes part in the evaluation.
func (c CheckConfiguration) Enabled(kind CheckKind) bool {
	switch kind {
	case KindPMD:
		return c.PMD
	case KindFindBugs:
		return c.FindBugs
	case KindCheckstyle:
		return c.Checkstyle
	case KindBranchCoverage, KindLineCoverage:
		return c.Coverage
	}
	return false
}

// EnabledKinds returns the enabled kinds in evaluation order: warning checks
// first, then coverage metrics.
func (c CheckConfiguration) EnabledKinds() []CheckKind {
	var kinds []CheckKind
	for _, k := range WarningKinds {
		if c.Enabled(k) {
			kinds = append(kinds, k)
		}
	}
	for _, k := range CoverageKinds {
		if c.Enabled(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Finding is the result of one check that saw a worse value than the baseline.
type Finding struct {
	Kind      CheckKind `json:"kind"`
	Regressed bool      `json:"regressed"`
	Message   string    `json:"message"`
	// Note is an extra informational line, set when a coverage drop is exempt.
	Note           string  `json:"note,omitempty"`
	BaselineNumber *int    `json:"baseline_number,omitempty"`
	Current        float64 `json:"current"`
	Baseline       float64 `json:"baseline"`
	Delta          float64 `json:"delta"`
}

// Verdict aggregates all findings for one evaluated build.
type Verdict struct {
	Project         string    `json:"project"`
	Number          int       `json:"number"`
	BuildShouldFail bool      `json:"build_should_fail"`
	Findings        []Finding `json:"findings"`
	LogLines        []string  `json:"log_lines"`
}

// Regressions returns only the findings that fail the build.
func (v Verdict) Regressions() []Finding {
	var out []Finding
	for _, f := range v.Findings {
		if f.Regressed {
			out = append(out, f)
		}
	}
	return out
}
