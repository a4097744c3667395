package regression

import "regcheck/src/contracts"

// Report collects findings in evaluation order.
type Report struct {
	project  string
	number   int
	findings []contracts.Finding
}

// NewReport starts an empty report for one build.
func NewReport(build contracts.BuildRecord) *Report {
	return &Report{project: build.Project, number: build.Number}
}

// Add appends a finding.
func (r *Report) Add(f contracts.Finding) {
	r.findings = append(r.findings, f)
}

// LogLines returns each finding's message followed by its note, if any.
func (r *Report) LogLines() []string {
	lines := make([]string, 0, len(r.findings))
	for _, f := range r.findings {
		lines = append(lines, f.Message)
		if f.Note != "" {
			lines = append(lines, f.Note)
		}
	}
	return lines
}

// Verdict builds the aggregate result. The build fails iff any finding regressed.
func (r *Report) Verdict() contracts.Verdict {
	findings := make([]contracts.Finding, len(r.findings))
	copy(findings, r.findings)

	fail := false
	for _, f := range findings {
		if f.Regressed {
			fail = true
			break
		}
	}

	return contracts.Verdict{
		Project:         r.project,
		Number:          r.number,
		BuildShouldFail: fail,
		Findings:        findings,
		LogLines:        r.LogLines(),
	}
}
