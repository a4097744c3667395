package tui

import (
	"strings"
)

// matchesFilter reports whether item passes the header filter.
func matchesFilter(item Item, filter string) bool {
	switch filter {
	case FilterAll:
		return true
	case FilterRegressed:
		return item.Verdict != nil && item.Verdict.BuildShouldFail
	}
	return string(item.Record.Outcome) == filter
}

// applyFilter narrows the list to builds passing the filter and search query.
func (m *Model) applyFilter() {
	filter := m.header.GetFilter()
	query := strings.ToLower(strings.TrimSpace(m.searchQuery))

	var filtered []Item
	for _, item := range m.items {
		if !matchesFilter(item, filter) {
			continue
		}
		if query != "" && !strings.Contains(item.searchText(), query) {
			continue
		}
		filtered = append(filtered, item)
	}

	m.listView.SetItems(filtered)
	m.refreshDetail()
}
