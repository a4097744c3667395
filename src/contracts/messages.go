package contracts

// EvaluationRequest asks the ingest agent to collect a build from its CI
// provider. Published to: regcheck.requests
// Key: {request_id}
type EvaluationRequest struct {
	RequestID string `json:"request_id"`
	BuildURL  string `json:"build_url"`
	// Checks overrides the ingest agent's configured checks when set.
	Checks    *CheckConfiguration `json:"checks,omitempty"`
	Timestamp string              `json:"timestamp"`
}

// BuildCompleted carries a finished build and its summaries.
// Published to: regcheck.builds.completed
// Key: {project}
type BuildCompleted struct {
	RequestID string              `json:"request_id"`
	Build     BuildRecord         `json:"build"`
	Checks    *CheckConfiguration `json:"checks,omitempty"`
	// History holds earlier builds collected alongside Build. It may be empty
	// when the receiving agent keeps its own history store.
	History []BuildRecord `json:"history,omitempty"`
}

// VerdictMessage is the outcome of one evaluation. Error is set instead of
// Verdict when the build could not be collected or evaluated.
// Published to: regcheck.verdicts
// Key: {project}, or {request_id} for errors
type VerdictMessage struct {
	RequestID string  `json:"request_id"`
	BuildURL  string  `json:"build_url,omitempty"`
	Verdict   Verdict `json:"verdict"`
	Error     string  `json:"error,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// Topic names used by the agents.
const (
	// TopicRequests contains build evaluation requests
	TopicRequests = "regcheck.requests"

	// TopicBuildsCompleted contains collected builds ready for evaluation
	TopicBuildsCompleted = "regcheck.builds.completed"

	// TopicVerdicts contains evaluation verdicts
	TopicVerdicts = "regcheck.verdicts"
)
