// Package store defines the interface for persistent data storage.
package store

import (
	"context"
	"errors"
	"fmt"

	"regcheck/src/config"
	"regcheck/src/contracts"
	"regcheck/src/history"
)

// ErrNotFound is returned when a build or verdict does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for persisting build history and verdicts.
type Store interface {
	// SaveBuild inserts or replaces a build record
	SaveBuild(ctx context.Context, build contracts.BuildRecord) error

	// GetBuild returns one build, or ErrNotFound
	GetBuild(ctx context.Context, project string, number int) (*contracts.BuildRecord, error)

	// ListBuilds returns up to limit builds numbered below before, newest
	// first. before <= 0 means no upper bound, limit <= 0 means no limit.
	ListBuilds(ctx context.Context, project string, before, limit int) ([]contracts.BuildRecord, error)

	// SaveVerdict inserts or replaces the verdict for a build
	SaveVerdict(ctx context.Context, verdict contracts.Verdict) error

	// GetVerdict returns the verdict of one build, or ErrNotFound
	GetVerdict(ctx context.Context, project string, number int) (*contracts.Verdict, error)

	// ListProjects returns every project with at least one build, sorted
	ListProjects(ctx context.Context) ([]string, error)

	// Close closes the store connection
	Close() error
}

// Open creates the store selected by cfg and prepares its schema.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.Path)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// LoadHistory reads the builds before number, page builds at a time, until it
// has passed a successful build or the project has no earlier builds. The
// snapshot therefore always holds the baseline when one exists. page <= 0
// loads the whole history in one query.
func LoadHistory(ctx context.Context, s Store, project string, number, page int) (*history.Snapshot, error) {
	var builds []contracts.BuildRecord
	before := number
	for {
		batch, err := s.ListBuilds(ctx, project, before, page)
		if err != nil {
			return nil, fmt.Errorf("failed to load history for %s#%d: %w", project, number, err)
		}
		builds = append(builds, batch...)

		if page <= 0 || len(batch) < page || hasSuccess(batch) {
			break
		}
		before = batch[len(batch)-1].Number
	}
	return history.NewSnapshot(builds), nil
}

func hasSuccess(builds []contracts.BuildRecord) bool {
	for _, b := range builds {
		if b.Outcome == contracts.OutcomeSuccess {
			return true
		}
	}
	return false
}

// Entry is a stored build together with its verdict, if it was evaluated.
type Entry struct {
	Build   contracts.BuildRecord
	Verdict *contracts.Verdict
}

// ListEntries returns up to limit builds of project, newest first, each with
// its stored verdict.
func ListEntries(ctx context.Context, s Store, project string, limit int) ([]Entry, error) {
	builds, err := s.ListBuilds(ctx, project, 0, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds of %s: %w", project, err)
	}

	entries := make([]Entry, 0, len(builds))
	for _, b := range builds {
		entry := Entry{Build: b}
		v, err := s.GetVerdict(ctx, project, b.Number)
		switch {
		case err == nil:
			entry.Verdict = v
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("failed to load verdict for %s#%d: %w", project, b.Number, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
