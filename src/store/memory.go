package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"regcheck/src/contracts"
)

type buildKey struct {
	project string
	number  int
}

// MemoryStore is an in-memory implementation of Store.
// Useful for testing and one-shot evaluations.
type MemoryStore struct {
	mu       sync.RWMutex
	builds   map[buildKey]contracts.BuildRecord
	verdicts map[buildKey]contracts.Verdict
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		builds:   make(map[buildKey]contracts.BuildRecord),
		verdicts: make(map[buildKey]contracts.Verdict),
	}
}

// SaveBuild inserts or replaces a build record.
func (s *MemoryStore) SaveBuild(ctx context.Context, build contracts.BuildRecord) error {
	if build.Project == "" {
		return fmt.Errorf("build has no project")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.builds[buildKey{build.Project, build.Number}] = cloneBuild(build)
	return nil
}

// GetBuild returns one build.
func (s *MemoryStore) GetBuild(ctx context.Context, project string, number int) (*contracts.BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.builds[buildKey{project, number}]
	if !exists {
		return nil, fmt.Errorf("build %s#%d: %w", project, number, ErrNotFound)
	}

	// Return a copy
	out := cloneBuild(b)
	return &out, nil
}

// ListBuilds returns builds below before, newest first.
func (s *MemoryStore) ListBuilds(ctx context.Context, project string, before, limit int) ([]contracts.BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []contracts.BuildRecord
	for k, b := range s.builds {
		if k.project != project {
			continue
		}
		if before > 0 && k.number >= before {
			continue
		}
		out = append(out, cloneBuild(b))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveVerdict inserts or replaces the verdict for a build.
func (s *MemoryStore) SaveVerdict(ctx context.Context, verdict contracts.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.verdicts[buildKey{verdict.Project, verdict.Number}] = verdict
	return nil
}

// GetVerdict returns the verdict of one build.
func (s *MemoryStore) GetVerdict(ctx context.Context, project string, number int) (*contracts.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.verdicts[buildKey{project, number}]
	if !exists {
		return nil, fmt.Errorf("verdict %s#%d: %w", project, number, ErrNotFound)
	}
	return &v, nil
}

// ListProjects returns the known projects, sorted.
func (s *MemoryStore) ListProjects(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for k := range s.builds {
		if !seen[k.project] {
			seen[k.project] = true
			out = append(out, k.project)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Close closes the store (no-op for memory store).
func (s *MemoryStore) Close() error {
	return nil
}

// cloneBuild copies the summary maps so callers cannot alias stored records.
func cloneBuild(b contracts.BuildRecord) contracts.BuildRecord {
	if b.Warnings != nil {
		w := make(map[contracts.CheckKind]contracts.WarningSummary, len(b.Warnings))
		for k, v := range b.Warnings {
			w[k] = v
		}
		b.Warnings = w
	}
	if b.Coverage != nil {
		p := make(map[contracts.CoverageMetric]float64, len(b.Coverage.Percentages))
		for k, v := range b.Coverage.Percentages {
			p[k] = v
		}
		b.Coverage = &contracts.CoverageSummary{Percentages: p}
	}
	return b
}
