package regression

import (
	"regcheck/src/contracts"
	"regcheck/src/logger"
)

// Checker runs every enabled check against one build and its baseline.
type Checker struct {
	checks contracts.CheckConfiguration
	logger logger.Logger
}

// NewChecker creates a checker. A nil logger discards debug output.
func NewChecker(checks contracts.CheckConfiguration, log logger.Logger) *Checker {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Checker{checks: checks, logger: log}
}

// Evaluate compares build against the nearest successful build in h. Every
// enabled check runs; a missing baseline or summary only skips that check.
func (c *Checker) Evaluate(h History, build contracts.BuildRecord) contracts.Verdict {
	locator := NewLocator(h, build)
	report := NewReport(build)

	kinds := c.checks.EnabledKinds()
	if len(kinds) == 0 {
		c.logger.Debug("build %s#%d: no checks enabled", build.Project, build.Number)
	}

	for _, kind := range kinds {
		current, ok := Extract(build, kind)
		if !ok {
			c.logger.Debug("build %s#%d: no %s data, skipping", build.Project, build.Number, kind)
			continue
		}

		baseline, ok := locator.Baseline()
		if !ok {
			c.logger.Debug("build %s#%d: no successful baseline, skipping %s", build.Project, build.Number, kind)
			continue
		}

		previous, ok := Extract(baseline, kind)
		if !ok {
			c.logger.Debug("build %s#%d: baseline #%d has no %s data, skipping",
				build.Project, build.Number, baseline.Number, kind)
			continue
		}

		finding, ok := Compare(current, previous, baseline.Number, c.checks)
		if !ok {
			continue
		}
		report.Add(finding)
	}

	verdict := report.Verdict()
	c.logger.Debug("build %s#%d: %d findings, fail=%v",
		build.Project, build.Number, len(verdict.Findings), verdict.BuildShouldFail)
	return verdict
}

// Evaluate is a convenience wrapper around a silent Checker.
func Evaluate(h History, build contracts.BuildRecord, checks contracts.CheckConfiguration) contracts.Verdict {
	return NewChecker(checks, nil).Evaluate(h, build)
}
