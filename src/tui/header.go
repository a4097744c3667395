package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Filters the header cycles through besides the outcomes present in history.
const (
	FilterAll       = "ALL"
	FilterRegressed = "REGRESSED"
)

// Header is the top status bar.
type Header struct {
	project        string
	buildCount     int
	regressed      int
	selectedFilter string
	filters        []string
	searchQuery    string
	searchMode     bool
	styles         *StyleConfig
}

// NewHeader creates a header for project with custom styles
func NewHeader(project string, styles *StyleConfig) Header {
	return Header{
		project:        project,
		selectedFilter: FilterAll,
		filters:        []string{FilterAll, FilterRegressed},
		styles:         styles,
	}
}

// SetStats updates the counters and the outcomes the filter can select.
func (h *Header) SetStats(builds, regressed int, outcomes []string) {
	h.buildCount = builds
	h.regressed = regressed
	h.filters = append([]string{FilterAll, FilterRegressed}, outcomes...)

	for _, f := range h.filters {
		if f == h.selectedFilter {
			return
		}
	}
	h.selectedFilter = FilterAll
}

// GetFilter returns the current filter
func (h Header) GetFilter() string {
	return h.selectedFilter
}

// CycleFilter moves to the next filter
func (h *Header) CycleFilter() {
	current := 0
	for i, f := range h.filters {
		if f == h.selectedFilter {
			current = i
			break
		}
	}
	h.selectedFilter = h.filters[(current+1)%len(h.filters)]
}

// SetSearch updates the search state
func (h *Header) SetSearch(query string, mode bool) {
	h.searchQuery = query
	h.searchMode = mode
}

// Render renders the header
func (h Header) Render(width int) string {
	section := lipgloss.NewStyle().Foreground(h.styles.PrimaryBlue).Bold(true).Padding(0, 2)

	project := section.Render(h.project)
	stats := section.Render(fmt.Sprintf("%d builds, %d regressed", h.buildCount, h.regressed))
	filter := section.Render(fmt.Sprintf("Filter: %s", h.selectedFilter))

	var searchText string
	switch {
	case h.searchMode:
		searchText = fmt.Sprintf("Search: %s█", h.searchQuery)
	case h.searchQuery != "":
		searchText = fmt.Sprintf("Search: %s", h.searchQuery)
	default:
		searchText = "[/] to search"
	}
	searchStyle := lipgloss.NewStyle().Foreground(h.styles.TextSecondary).Padding(0, 2)
	if h.searchMode {
		searchStyle = searchStyle.Foreground(h.styles.PrimaryBlue)
	}

	content := FitLines(lipgloss.JoinHorizontal(lipgloss.Left, project, stats, filter, searchStyle.Render(searchText)), width)

	return lipgloss.NewStyle().
		Background(h.styles.DarkBackground).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(h.styles.BorderColor).
		Width(width).
		Render(content)
}
