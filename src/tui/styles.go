package tui

import (
	"github.com/charmbracelet/lipgloss"

	"regcheck/src/contracts"
)

// StyleConfig holds the colors of the history browser.
type StyleConfig struct {
	PrimaryBlue    lipgloss.Color
	AccentBlue     lipgloss.Color
	DarkBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color

	PassColor    lipgloss.Color
	FailColor    lipgloss.Color
	WarnColor    lipgloss.Color
	NeutralColor lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    lipgloss.Color("#8AB4F8"),
		AccentBlue:     lipgloss.Color("#4285F4"),
		DarkBackground: lipgloss.Color("#1E1E1E"),
		TextPrimary:    lipgloss.Color("#E8EAED"),
		TextSecondary:  lipgloss.Color("#9AA0A6"),
		BorderColor:    lipgloss.Color("#5F6368"),
		SelectedColor:  lipgloss.Color("#303134"),
		PassColor:      lipgloss.Color("#34A853"),
		FailColor:      lipgloss.Color("#EA4335"),
		WarnColor:      lipgloss.Color("#FBBC04"),
		NeutralColor:   lipgloss.Color("#9AA0A6"),
	}
}

// OutcomeColor picks the color a build outcome is drawn in.
func (s *StyleConfig) OutcomeColor(o contracts.Outcome) lipgloss.Color {
	switch o {
	case contracts.OutcomeSuccess:
		return s.PassColor
	case contracts.OutcomeFailure:
		return s.FailColor
	case contracts.OutcomeUnstable:
		return s.WarnColor
	}
	return s.NeutralColor
}

// TitleStyle returns a bold section title style
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true)
}

// LabelStyle renders field names in the detail panel.
func (s *StyleConfig) LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.TextSecondary)
}

// HelpStyle returns a help text lipgloss style using this config
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 2)
}

// PanelStyle returns the bordered container used by both panels.
func (s *StyleConfig) PanelStyle(focused bool) lipgloss.Style {
	border := s.BorderColor
	if focused {
		border = s.AccentBlue
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}
