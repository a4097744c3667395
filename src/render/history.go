package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"regcheck/src/contracts"
	"regcheck/src/store"
)

var historyHeaders = []string{"#", "Outcome", "Verdict", "PMD", "FindBugs", "Checkstyle", "Line", "Branch", "Completed"}

// HistoryRow formats one stored build as table cells, in historyHeaders order.
func HistoryRow(e store.Entry) []string {
	b := e.Build

	verdict := "-"
	if e.Verdict != nil {
		verdict = "OK"
		if e.Verdict.BuildShouldFail {
			verdict = "REGRESSED"
		}
	}

	row := []string{fmt.Sprintf("%d", b.Number), string(b.Outcome), verdict}
	for _, kind := range contracts.WarningKinds {
		cell := "-"
		if w, ok := b.Warning(kind); ok {
			cell = fmt.Sprintf("%d", w.Count)
		}
		row = append(row, cell)
	}
	for _, metric := range []contracts.CoverageMetric{contracts.MetricLine, contracts.MetricBranch} {
		cell := "-"
		if pct, ok := b.Coverage.Percentage(metric); ok {
			cell = fmt.Sprintf("%.1f%%", pct)
		}
		row = append(row, cell)
	}

	completed := "-"
	if !b.CompletedAt.IsZero() {
		completed = b.CompletedAt.Format("2006-01-02 15:04")
	}
	return append(row, completed)
}

// FormatHistory renders stored builds as a bordered table.
func FormatHistory(project string, entries []store.Entry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No builds recorded for %s\n", project)
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = HistoryRow(e)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#5F6368"))).
		Headers(historyHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Inherit(titleStyle)
			case col == 2 && rows[row][col] == "REGRESSED":
				return style.Inherit(failStyle)
			}
			return style
		})

	return titleStyle.Render(project) + "\n" + t.String() + "\n"
}

// WriteHistory renders entries in format to w. The ci format prints the table.
func WriteHistory(w io.Writer, format Format, project string, entries []store.Entry) error {
	if format != JSONFormat {
		_, err := io.WriteString(w, FormatHistory(project, entries))
		return err
	}

	type jsonEntry struct {
		contracts.BuildRecord
		Verdict *contracts.Verdict `json:"verdict,omitempty"`
	}
	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		out[i] = jsonEntry{BuildRecord: e.Build, Verdict: e.Verdict}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
