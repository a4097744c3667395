package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderListPanel renders the left panel with the build table
func (m Model) renderListPanel(width, height int) string {
	// List size is set in resizeComponents, not here.
	listPanel := m.styles.PanelStyle(!m.detailFocused).
		Width(width - 2).
		Height(height).
		Render(m.listView.Render())

	headerRow := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Width(width-2).
		Padding(0, 1).
		Render(Truncate(m.listView.GetDelegate().HeaderRow(), width-4, false))

	return lipgloss.JoinVertical(lipgloss.Left, headerRow, listPanel)
}
