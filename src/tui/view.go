package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// View manages the list of builds.
type View struct {
	list     list.Model
	delegate *Delegate
}

// NewView creates an empty build list
func NewView(styles *StyleConfig) View {
	delegate := NewDelegateWithStyles(styles)
	l := list.New([]list.Item{}, &delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return View{list: l, delegate: &delegate}
}

// Update handles list navigation
func (v View) Update(msg tea.Msg) (View, tea.Cmd) {
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// SetSize sets the list dimensions
func (v *View) SetSize(width, height int) {
	v.list.SetSize(width, height)
}

// SetItems replaces the visible builds.
func (v *View) SetItems(items []Item) {
	maxNumber := 0
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		if item.Record.Number > maxNumber {
			maxNumber = item.Record.Number
		}
		listItems[i] = item
	}
	v.delegate.SetNumberWidth(maxNumber)
	v.list.SetItems(listItems)
	if v.list.Index() >= len(items) {
		v.list.Select(0)
	}
}

// Len returns the number of visible builds.
func (v View) Len() int {
	return len(v.list.Items())
}

// GetSelectedItem returns the highlighted build
func (v View) GetSelectedItem() (Item, bool) {
	if len(v.list.Items()) == 0 {
		return Item{}, false
	}
	item, ok := v.list.SelectedItem().(Item)
	return item, ok
}

// Render returns the string representation of the view
func (v View) Render() string {
	return v.list.View()
}

// GetDelegate returns the row delegate
func (v View) GetDelegate() *Delegate {
	return v.delegate
}
