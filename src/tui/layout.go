package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// panelDimensions holds calculated layout dimensions
type panelDimensions struct {
	availableHeight int
	leftPanelWidth  int
	rightPanelWidth int
}

// calculateDimensions computes panel sizes from the terminal size. Render and
// resize both go through it so they agree.
func (m Model) calculateDimensions() panelDimensions {
	headerHeight := lipgloss.Height(m.header.Render(m.width))
	// header + help line + panel column header row + panel borders
	availableHeight := m.height - headerHeight - 1 - 1 - 2
	if availableHeight < 1 {
		availableHeight = 1
	}

	// Build table (55%) | detail (45%)
	leftPanelWidth := int(float64(m.width) * 0.55)
	rightPanelWidth := m.width - leftPanelWidth

	return panelDimensions{
		availableHeight: availableHeight,
		leftPanelWidth:  leftPanelWidth,
		rightPanelWidth: rightPanelWidth,
	}
}

// View renders the complete TUI layout
func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.header.Render(m.width)

	switch m.status {
	case StatusLoading:
		if len(m.items) == 0 {
			centered := lipgloss.NewStyle().
				Width(m.width).
				Align(lipgloss.Center).
				PaddingTop(2).
				Render(m.progress.View())
			return lipgloss.JoinVertical(lipgloss.Left, header, centered)
		}
	case StatusError:
		errText := lipgloss.NewStyle().
			Foreground(m.styles.FailColor).
			Padding(1, 2).
			Render(Wrap(fmt.Sprintf("Failed to load builds: %v", m.err), m.width-4))
		return lipgloss.JoinVertical(lipgloss.Left, header, errText, m.renderHelpText())
	}

	dims := m.calculateDimensions()
	leftPanel := m.renderListPanel(dims.leftPanelWidth, dims.availableHeight)
	rightPanel := m.renderDetailPanel(dims.rightPanelWidth, dims.availableHeight)
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent, m.renderHelpText())
}

// renderHelpText renders context-aware help text at the bottom
func (m Model) renderHelpText() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.PrimaryBlue).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)
	sep := sepStyle.Render("•")

	var helpText string
	switch {
	case m.searchMode:
		helpText = fmt.Sprintf("%s: Apply %s %s: Clear",
			keyStyle.Render("Enter"), sep, keyStyle.Render("Esc"))
	case m.detailFocused:
		helpText = fmt.Sprintf("%s: Scroll %s %s: Back %s %s: Quit",
			keyStyle.Render("j/k"), sep,
			keyStyle.Render("Esc"), sep,
			keyStyle.Render("q"))
	default:
		helpText = fmt.Sprintf("%s: Nav %s %s: Details %s %s: Filter %s %s: Search %s %s: Reload %s %s: Quit",
			keyStyle.Render("j/k"), sep,
			keyStyle.Render("Enter"), sep,
			keyStyle.Render("Tab"), sep,
			keyStyle.Render("/"), sep,
			keyStyle.Render("r"), sep,
			keyStyle.Render("q"))
	}

	return FitLines(m.styles.HelpStyle().Render(helpText), m.width)
}

// resizeComponents handles window resize events
func (m *Model) resizeComponents() {
	dims := m.calculateDimensions()

	// Panel borders take one column on each side.
	m.listView.SetSize(dims.leftPanelWidth-2, dims.availableHeight)
	m.detailViewport.Width = dims.rightPanelWidth - 2
	m.detailViewport.Height = dims.availableHeight

	m.refreshDetail()
}
