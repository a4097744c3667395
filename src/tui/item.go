package tui

import (
	"fmt"
	"strings"

	"regcheck/src/contracts"
)

// Item is one stored build in the history list. It implements bubbles/list.Item.
type Item struct {
	Record contracts.BuildRecord
	// Verdict is nil when the build was recorded but never evaluated.
	Verdict *contracts.Verdict
}

// FilterValue is the value used for fuzzy filtering.
func (i Item) FilterValue() string { return i.searchText() }

// Title returns the build number and outcome.
func (i Item) Title() string {
	return fmt.Sprintf("#%d %s", i.Record.Number, i.Record.Outcome)
}

// Description returns the verdict status.
func (i Item) Description() string { return i.Status() }

// Status is "REGRESSED", "OK" or "-" when no verdict exists.
func (i Item) Status() string {
	switch {
	case i.Verdict == nil:
		return "-"
	case i.Verdict.BuildShouldFail:
		return "REGRESSED"
	}
	return "OK"
}

// WarningCount formats the count recorded for kind, or "-".
func (i Item) WarningCount(kind contracts.CheckKind) string {
	if w, ok := i.Record.Warning(kind); ok {
		return fmt.Sprintf("%d", w.Count)
	}
	return "-"
}

// CoverageValue formats a coverage percentage, or "-".
func (i Item) CoverageValue(metric contracts.CoverageMetric) string {
	if v, ok := i.Record.Coverage.Percentage(metric); ok {
		return fmt.Sprintf("%.1f%%", v)
	}
	return "-"
}

func (i Item) searchText() string {
	parts := []string{i.Title(), i.Status(), i.Record.URL}
	if i.Verdict != nil {
		for _, f := range i.Verdict.Findings {
			parts = append(parts, f.Message, f.Note)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
