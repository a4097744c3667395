package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthFailed     = errors.New("authentication failed")
	ErrBuildNotFound  = errors.New("build not found")
	ErrRateLimited    = errors.New("rate limited")
	ErrNetworkTimeout = errors.New("network timeout")
)

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// StatusError classifies a failed API response so callers can match it with
// errors.Is.
func StatusError(status int, body string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", ErrAuthFailed, status, body)
	case http.StatusNotFound:
		return fmt.Errorf("%w: status %d: %s", ErrBuildNotFound, status, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", ErrRateLimited, status, body)
	}
	return fmt.Errorf("API request failed with status %d: %s", status, body)
}

// WrapError converts API errors to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrInvalidURL):
		return &UserError{
			Message: "Invalid build URL",
			Hint:    "Supported formats:\n  - https://buildkite.com/org/pipeline/builds/123\n  - https://github.com/owner/repo/actions/runs/456",
			Err:     err,
		}
	case errors.Is(err, ErrAuthFailed):
		return &UserError{
			Message: "Authentication failed",
			Hint:    "Check that your API token can read builds and artifacts.\n  - Buildkite: Set BUILDKITE_API_TOKEN\n  - GitHub: Set GITHUB_TOKEN",
			Err:     err,
		}
	case errors.Is(err, ErrBuildNotFound):
		return &UserError{
			Message: "Build not found",
			Hint:    "Check that the build URL is correct and you have access to the repository.",
			Err:     err,
		}
	case errors.Is(err, ErrRateLimited):
		return &UserError{
			Message: "CI provider rate limit reached",
			Hint:    "Wait a few minutes, or lower history.depth to fetch fewer builds.",
			Err:     err,
		}
	case errors.Is(err, ErrProviderUnknown):
		return &UserError{
			Message: "No provider registered for this build",
			Hint:    "Supported providers: buildkite, github.",
			Err:     err,
		}
	}

	return err
}
