// Package tui implements the terminal browser for a project's stored build
// history and verdicts.
package tui

import (
	"context"
	"errors"
	"sort"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"regcheck/src/contracts"
	"regcheck/src/store"
)

// Status of the build loader.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

// Loader fetches the builds to browse.
type Loader func(ctx context.Context) ([]Item, error)

// buildsLoadedMsg delivers the result of a Loader run.
type buildsLoadedMsg struct {
	items []Item
	err   error
}

// StoreLoader reads up to limit builds of project, newest first, together with
// their verdicts.
func StoreLoader(st store.Store, project string, limit int) Loader {
	return func(ctx context.Context) ([]Item, error) {
		entries, err := store.ListEntries(ctx, st, project, limit)
		if err != nil {
			return nil, err
		}

		items := make([]Item, len(entries))
		for i, e := range entries {
			items[i] = Item{Record: e.Build, Verdict: e.Verdict}
		}
		return items, nil
	}
}

// Model is the bubbletea model of the history browser.
type Model struct {
	ctx     context.Context
	load    Loader
	project string

	styles         *StyleConfig
	header         Header
	progress       ProgressModel
	listView       View
	detailViewport viewport.Model

	items         []Item
	searchQuery   string
	searchMode    bool
	detailFocused bool
	// shown identifies the build in the viewport, so scrolling resets on a
	// new selection only.
	shown string

	status Status
	err    error
	width  int
	height int
	ready  bool
}

// NewModel creates a browser for project that loads builds with load.
func NewModel(ctx context.Context, project string, load Loader) Model {
	styles := DefaultStyles()
	return Model{
		ctx:            ctx,
		load:           load,
		project:        project,
		styles:         styles,
		header:         NewHeader(project, styles),
		progress:       NewProgressModel("Loading " + project),
		listView:       NewView(styles),
		detailViewport: viewport.New(0, 0),
		status:         StatusLoading,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), SpinnerTick())
}

func (m Model) loadCmd() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		items, err := load(ctx)
		return buildsLoadedMsg{items: items, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		return m, nil

	case SpinnerTickMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd

	case buildsLoadedMsg:
		m.progress = m.progress.Finish()
		if msg.err != nil {
			m.status = StatusError
			m.err = msg.err
			return m, nil
		}
		m.status = StatusReady
		m.err = nil
		m.setItems(msg.items)
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearch(msg), nil
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		m.detailFocused = false
		return m, nil
	case "enter":
		if m.listView.Len() > 0 {
			m.detailFocused = true
		}
		return m, nil
	case "tab":
		m.header.CycleFilter()
		m.applyFilter()
		return m, nil
	case "/":
		m.searchMode = true
		m.detailFocused = false
		m.header.SetSearch(m.searchQuery, true)
		return m, nil
	case "r":
		m.status = StatusLoading
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Restart("Reloading " + m.project)
		return m, tea.Batch(m.loadCmd(), cmd)
	}

	var cmd tea.Cmd
	if m.detailFocused {
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}
	m.listView, cmd = m.listView.Update(msg)
	m.refreshDetail()
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) Model {
	switch msg.Type {
	case tea.KeyEnter:
		m.searchMode = false
	case tea.KeyEsc:
		m.searchMode = false
		m.searchQuery = ""
	case tea.KeyBackspace:
		if r := []rune(m.searchQuery); len(r) > 0 {
			m.searchQuery = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.searchQuery += " "
	case tea.KeyRunes:
		m.searchQuery += string(msg.Runes)
	default:
		return m
	}
	m.header.SetSearch(m.searchQuery, m.searchMode)
	m.applyFilter()
	return m
}

// setItems replaces the loaded builds, newest first, and refreshes counters.
func (m *Model) setItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Record.Number > items[j].Record.Number
	})
	m.items = items

	regressed := 0
	seen := make(map[contracts.Outcome]bool)
	var outcomes []string
	for _, item := range items {
		if item.Verdict != nil && item.Verdict.BuildShouldFail {
			regressed++
		}
		if !seen[item.Record.Outcome] {
			seen[item.Record.Outcome] = true
			outcomes = append(outcomes, string(item.Record.Outcome))
		}
	}
	sort.Strings(outcomes)
	m.header.SetStats(len(items), regressed, outcomes)

	m.applyFilter()
}

// Start runs the browser until the user quits or ctx is cancelled.
func Start(ctx context.Context, st store.Store, project string, limit int) error {
	p := tea.NewProgram(
		NewModel(ctx, project, StoreLoader(st, project, limit)),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
