// Package mcp exposes regression evaluation and build history as MCP tools.
package mcp

import (
	"time"

	"regcheck/src/contracts"
)

// EvaluateOutput is the evaluate_build response.
type EvaluateOutput struct {
	Project         string              `json:"project"`
	Number          int                 `json:"number"`
	BuildURL        string              `json:"build_url,omitempty"`
	BuildShouldFail bool                `json:"build_should_fail"`
	LogLines        []string            `json:"log_lines"`
	Findings        []contracts.Finding `json:"findings"`
}

// HistoryEntry is one build in a get_build_history response.
type HistoryEntry struct {
	Number      int                                              `json:"number"`
	Outcome     contracts.Outcome                                `json:"outcome"`
	URL         string                                           `json:"url,omitempty"`
	CompletedAt time.Time                                        `json:"completed_at"`
	Warnings    map[contracts.CheckKind]contracts.WarningSummary `json:"warnings,omitempty"`
	Coverage    map[contracts.CoverageMetric]float64             `json:"coverage,omitempty"`
	// Failed is set when a stored verdict exists for the build.
	Failed *bool `json:"failed,omitempty"`
}

// HistoryOutput is the get_build_history response.
type HistoryOutput struct {
	Project string         `json:"project"`
	Builds  []HistoryEntry `json:"builds"`
}

func newEvaluateOutput(v contracts.Verdict, buildURL string) EvaluateOutput {
	lines := v.LogLines
	if lines == nil {
		lines = []string{}
	}
	findings := v.Findings
	if findings == nil {
		findings = []contracts.Finding{}
	}
	return EvaluateOutput{
		Project:         v.Project,
		Number:          v.Number,
		BuildURL:        buildURL,
		BuildShouldFail: v.BuildShouldFail,
		LogLines:        lines,
		Findings:        findings,
	}
}
