package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"regcheck/src/contracts"
	"regcheck/src/sanitize"
)

// renderDetail renders the detail content for a build
func (m Model) renderDetail(item Item, maxWidth int) string {
	var content strings.Builder
	title := m.styles.TitleStyle()
	label := m.styles.LabelStyle()

	rec := item.Record
	outcome := lipgloss.NewStyle().Foreground(m.styles.OutcomeColor(rec.Outcome)).Bold(true).Render(string(rec.Outcome))
	fmt.Fprintf(&content, "%s %s\n", title.Render(fmt.Sprintf("Build #%d", rec.Number)), outcome)
	if !rec.CompletedAt.IsZero() {
		fmt.Fprintf(&content, "%s %s\n", label.Render("Completed:"), rec.CompletedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if rec.URL != "" {
		fmt.Fprintln(&content, Wrap(rec.URL, maxWidth))
	}
	fmt.Fprintln(&content)

	fmt.Fprintln(&content, title.Render("Warnings"))
	for _, kind := range contracts.WarningKinds {
		fmt.Fprintf(&content, "  %s %s\n", label.Render(fmt.Sprintf("%-20s", kind.DisplayName()+":")), item.WarningCount(kind))
	}
	fmt.Fprintln(&content)

	fmt.Fprintln(&content, title.Render("Coverage"))
	for _, kind := range contracts.CoverageKinds {
		fmt.Fprintf(&content, "  %s %s\n", label.Render(fmt.Sprintf("%-20s", kind.DisplayName()+":")), item.CoverageValue(kind.Metric()))
	}
	fmt.Fprintln(&content)

	if item.Verdict == nil {
		fmt.Fprintln(&content, label.Faint(true).Render(Wrap(
			fmt.Sprintf("Not evaluated. Run: regcheck evaluate --project %s --number %d", rec.Project, rec.Number), maxWidth)))
		return content.String()
	}

	v := item.Verdict
	status := lipgloss.NewStyle().Foreground(m.styles.PassColor).Bold(true).Render("PASS")
	if v.BuildShouldFail {
		status = lipgloss.NewStyle().Foreground(m.styles.FailColor).Bold(true).Render("FAIL")
	}
	fmt.Fprintf(&content, "%s %s\n", title.Render("Verdict"), status)

	if len(v.Findings) == 0 {
		fmt.Fprintln(&content, label.Render("  No regressions against the baseline."))
	}
	for _, f := range v.Findings {
		color := m.styles.WarnColor
		if f.Regressed {
			color = m.styles.FailColor
		}
		fmt.Fprintln(&content, lipgloss.NewStyle().Foreground(color).Bold(true).Render(f.Kind.DisplayName()))
		fmt.Fprintln(&content, Wrap(sanitize.Clean(f.Message), maxWidth))
		if f.Note != "" {
			fmt.Fprintln(&content, label.Render(Wrap(sanitize.Clean(f.Note), maxWidth)))
		}
	}

	if len(v.LogLines) > 0 {
		fmt.Fprintln(&content)
		fmt.Fprintln(&content, title.Render("Log"))
		for _, line := range v.LogLines {
			fmt.Fprintln(&content, label.Faint(true).Render(Wrap(sanitize.Clean(line), maxWidth)))
		}
	}

	return content.String()
}

// refreshDetail shows the selected build in the viewport.
func (m *Model) refreshDetail() {
	item, ok := m.listView.GetSelectedItem()
	if !ok {
		m.detailViewport.SetContent("")
		m.shown = ""
		return
	}

	key := fmt.Sprintf("%s#%d", item.Record.Project, item.Record.Number)
	if key != m.shown {
		m.detailViewport.GotoTop()
	}
	m.shown = key

	// One column of padding on each side.
	maxWidth := m.detailViewport.Width - 2
	m.detailViewport.SetContent(FitLines(m.renderDetail(item, maxWidth), m.detailViewport.Width))
}

// renderDetailPanel renders the right panel with detail viewport
func (m Model) renderDetailPanel(width, height int) string {
	headerText := " "
	if item, ok := m.listView.GetSelectedItem(); ok {
		headerText = fmt.Sprintf("%s #%d", item.Record.Project, item.Record.Number)
	}
	headerRow := m.styles.TitleStyle().
		Padding(0, 1).
		Render(Truncate(headerText, width-2, true))

	if m.listView.Len() == 0 {
		empty := m.styles.PanelStyle(false).
			Width(width - 2).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(m.styles.TextSecondary).
			Faint(true).
			Render("No builds match")
		return lipgloss.JoinVertical(lipgloss.Left, headerRow, empty)
	}

	body := m.styles.PanelStyle(m.detailFocused).
		Width(width - 2).
		Height(height).
		Render(m.detailViewport.View())
	return lipgloss.JoinVertical(lipgloss.Left, headerRow, body)
}
