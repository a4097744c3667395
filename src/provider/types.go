package provider

import (
	"strings"
	"time"

	"regcheck/src/contracts"
)

// BuildRef identifies a build in a CI system
type BuildRef struct {
	Provider string            // "buildkite" or "github"
	BuildID  string            // Unique build identifier
	Metadata map[string]string // Provider-specific metadata
}

// Build is a finished (or running) CI build, normalised across providers.
type Build struct {
	ID      string
	Number  int
	Project string // stable history key, e.g. "org/pipeline"
	Branch  string
	URL     string
	State   string // provider state, normalised to Buildkite names
	Created time.Time
	// Finished is zero while the build is still running.
	Finished time.Time
	Jobs     []Job
	// Meta carries provider identifiers needed for follow-up calls.
	Meta map[string]string
}

// Outcome maps the provider state onto a build outcome.
func (b *Build) Outcome() contracts.Outcome {
	return MapOutcome(b.State)
}

// Record converts the build into a history record without summaries.
func (b *Build) Record() contracts.BuildRecord {
	return contracts.BuildRecord{
		Project:     b.Project,
		Number:      b.Number,
		Outcome:     b.Outcome(),
		URL:         b.URL,
		CompletedAt: b.Finished,
	}
}

// Job represents a single job within a build
type Job struct {
	ID    string
	Name  string
	State string
}

// Artifact represents a build artifact
type Artifact struct {
	ID          string
	JobID       string
	Path        string
	DownloadURL string
	FileSize    int64
	// Archive is set when the download is a zip of several files.
	Archive bool
}

// MapOutcome converts a normalised provider state to an Outcome. Anything
// that has not finished, or never ran, is NOT_BUILT.
func MapOutcome(state string) contracts.Outcome {
	switch strings.ToLower(state) {
	case "passed", "success":
		return contracts.OutcomeSuccess
	case "failed", "failure", "timed_out", "startup_failure":
		return contracts.OutcomeFailure
	case "canceled", "cancelled", "canceling":
		return contracts.OutcomeAborted
	case "neutral", "action_required", "soft_failed":
		return contracts.OutcomeUnstable
	default:
		return contracts.OutcomeNotBuilt
	}
}
