package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var logo = []string{
	"┬─┐┌─┐┌─┐┌─┐┬ ┬┌─┐┌─┐┬┌─",
	"├┬┘├┤ │ ┬│  ├─┤├┤ │  ├┴┐",
	"┴└─└─┘└─┘└─┘┴ ┴└─┘└─┘┴ ┴",
}

var logoColors = []string{"#5DADE2", "#3498DB", "#2874A6"}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerTickMsg advances the loading spinner.
type SpinnerTickMsg time.Time

// ProgressModel is the loading screen shown until the first builds arrive.
type ProgressModel struct {
	stage        string
	done         bool
	spinnerFrame int
}

// NewProgressModel starts a loading screen for stage.
func NewProgressModel(stage string) ProgressModel {
	return ProgressModel{stage: stage}
}

// SpinnerTick returns a command that sends SpinnerTickMsg after a delay
func SpinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return SpinnerTickMsg(t)
	})
}

// Restart shows the spinner again for a new stage.
func (m ProgressModel) Restart(stage string) (ProgressModel, tea.Cmd) {
	wasDone := m.done
	m.stage = stage
	m.done = false
	if wasDone {
		return m, SpinnerTick()
	}
	return m, nil
}

// Finish stops the spinner.
func (m ProgressModel) Finish() ProgressModel {
	m.done = true
	return m
}

func (m ProgressModel) Update(msg tea.Msg) (ProgressModel, tea.Cmd) {
	if _, ok := msg.(SpinnerTickMsg); ok && !m.done {
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, SpinnerTick()
	}
	return m, nil
}

func (m ProgressModel) View() string {
	lines := make([]string, len(logo))
	for i, line := range logo {
		lines[i] = lipgloss.NewStyle().
			Foreground(lipgloss.Color(logoColors[i%len(logoColors)])).
			Bold(true).
			Render(line)
	}

	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Render(spinnerFrames[m.spinnerFrame])
	stage := m.stage
	if stage == "" {
		stage = "Loading"
	}
	status := fmt.Sprintf("%s %s...", spinner, stage)

	return lipgloss.JoinVertical(lipgloss.Center, strings.Join(lines, "\n"), "", status)
}
