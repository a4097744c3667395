package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"regcheck/src/contracts"
)

// Fixed column widths of a history row.
const (
	outcomeWidth  = 9
	statusWidth   = 9
	countWidth    = 5
	coverageWidth = 6
)

// Delegate renders builds as table rows.
type Delegate struct {
	NumberWidth int
	styles      *StyleConfig
}

// NewDelegate creates a delegate with default styles
func NewDelegate() Delegate {
	return NewDelegateWithStyles(DefaultStyles())
}

// NewDelegateWithStyles creates a delegate with custom styles
func NewDelegateWithStyles(styles *StyleConfig) Delegate {
	return Delegate{NumberWidth: 3, styles: styles}
}

// SetNumberWidth sizes the number column for the largest build number.
func (d *Delegate) SetNumberWidth(maxNumber int) {
	d.NumberWidth = len(fmt.Sprintf("#%d", maxNumber))
	if d.NumberWidth < 3 {
		d.NumberWidth = 3
	}
}

// Height returns the height of a list item
func (d Delegate) Height() int { return 1 }

// Spacing returns spacing between items
func (d Delegate) Spacing() int { return 0 }

// Update handles item updates
func (d Delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

// HeaderRow returns the column titles aligned with Row.
func (d Delegate) HeaderRow() string {
	return d.join(
		PadLeft("#", d.NumberWidth),
		TruncateAndPad("Outcome", outcomeWidth, false),
		TruncateAndPad("Verdict", statusWidth, false),
		PadLeft("PMD", countWidth),
		PadLeft("FB", countWidth),
		PadLeft("CS", countWidth),
		PadLeft("Line", coverageWidth),
		PadLeft("Branch", coverageWidth),
	)
}

// Row renders the plain text of one build row.
func (d Delegate) Row(entry Item) string {
	return d.join(
		PadLeft(fmt.Sprintf("#%d", entry.Record.Number), d.NumberWidth),
		TruncateAndPad(string(entry.Record.Outcome), outcomeWidth, false),
		TruncateAndPad(entry.Status(), statusWidth, false),
		PadLeft(entry.WarningCount(contracts.KindPMD), countWidth),
		PadLeft(entry.WarningCount(contracts.KindFindBugs), countWidth),
		PadLeft(entry.WarningCount(contracts.KindCheckstyle), countWidth),
		PadLeft(entry.CoverageValue(contracts.MetricLine), coverageWidth),
		PadLeft(entry.CoverageValue(contracts.MetricBranch), coverageWidth),
	)
}

func (d Delegate) join(cols ...string) string {
	line := cols[0]
	for _, c := range cols[1:] {
		line += " │ " + c
	}
	return line
}

// Render renders a list item
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(Item)
	if !ok {
		return
	}

	line := Truncate(d.Row(entry), m.Width(), false)

	style := lipgloss.NewStyle().Foreground(d.styles.OutcomeColor(entry.Record.Outcome))
	if entry.Verdict != nil && entry.Verdict.BuildShouldFail {
		style = style.Foreground(d.styles.FailColor)
	}
	if index == m.Index() {
		style = style.Bold(true).Background(d.styles.SelectedColor)
	}

	fmt.Fprint(w, style.Render(line))
}
