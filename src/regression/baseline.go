// Package regression decides whether a completed build got worse than the most
// recent successful build, per static-analysis warning counts and coverage.
package regression

import "regcheck/src/contracts"

// History resolves the build immediately preceding a build number. It is the
// only way the checker moves backwards through a project's builds.
type History interface {
	Previous(number int) (contracts.BuildRecord, bool)
}

// FindBaseline returns the nearest earlier build whose outcome is SUCCESS.
// The walk stops at the history origin, and also when a lookup fails to move
// strictly backwards, so it halts on any History implementation.
func FindBaseline(h History, build contracts.BuildRecord) (contracts.BuildRecord, bool) {
	if h == nil {
		return contracts.BuildRecord{}, false
	}

	number := build.Number
	for {
		prev, ok := h.Previous(number)
		if !ok || prev.Number >= number {
			return contracts.BuildRecord{}, false
		}
		if prev.Outcome == contracts.OutcomeSuccess {
			return prev, true
		}
		number = prev.Number
	}
}

// Locator memoizes the baseline of a single build so every check in one
// evaluation shares one history walk.
type Locator struct {
	history History
	build   contracts.BuildRecord

	done     bool
	baseline contracts.BuildRecord
	found    bool
}

// NewLocator returns a locator for build over h.
func NewLocator(h History, build contracts.BuildRecord) *Locator {
	return &Locator{history: h, build: build}
}

// Baseline returns the cached baseline, walking the history on first use.
func (l *Locator) Baseline() (contracts.BuildRecord, bool) {
	if !l.done {
		l.baseline, l.found = FindBaseline(l.history, l.build)
		l.done = true
	}
	return l.baseline, l.found
}
