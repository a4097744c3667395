// Package history provides an in-memory, read-only view of a project's build
// history that the regression checker walks by build number.
package history

import (
	"sort"

	"regcheck/src/contracts"
)

// Snapshot is an immutable, number-ordered set of builds for one project.
// Lookups go through the index, so records never reference each other.
type Snapshot struct {
	builds []contracts.BuildRecord // ascending by Number, unique
}

// NewSnapshot copies builds into a snapshot. When two records share a number
// the later one in the input wins.
func NewSnapshot(builds []contracts.BuildRecord) *Snapshot {
	byNumber := make(map[int]contracts.BuildRecord, len(builds))
	for _, b := range builds {
		byNumber[b.Number] = b
	}

	sorted := make([]contracts.BuildRecord, 0, len(byNumber))
	for _, b := range byNumber {
		sorted = append(sorted, b)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	return &Snapshot{builds: sorted}
}

// Previous returns the build immediately before number, if any.
func (s *Snapshot) Previous(number int) (contracts.BuildRecord, bool) {
	idx := s.search(number)
	if idx == 0 {
		return contracts.BuildRecord{}, false
	}
	return s.builds[idx-1], true
}

// Len returns the number of builds in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.builds)
}

// search returns the index of the first build with Number >= number.
func (s *Snapshot) search(number int) int {
	return sort.Search(len(s.builds), func(i int) bool {
		return s.builds[i].Number >= number
	})
}
