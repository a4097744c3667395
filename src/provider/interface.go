package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

var (
	ErrInvalidURL      = errors.New("invalid build URL")
	ErrProviderUnknown = errors.New("unknown CI provider")
)

// Provider defines the interface for CI/CD platform integrations
type Provider interface {
	// Name returns the provider name (e.g., "buildkite", "github")
	Name() string

	// ParseURL extracts build reference from URL
	ParseURL(url string) (*BuildRef, error)

	// FetchBuild retrieves build metadata and jobs
	FetchBuild(ctx context.Context, ref *BuildRef) (*Build, error)

	// FetchHistory returns up to limit finished builds of the same project
	// and branch numbered below build, newest first
	FetchHistory(ctx context.Context, build *Build, limit int) ([]Build, error)

	// FetchArtifacts retrieves the artifacts attached to a build
	FetchArtifacts(ctx context.Context, build *Build) ([]Artifact, error)

	// DownloadArtifact downloads artifact content as path -> bytes. Archives
	// are expanded.
	DownloadArtifact(ctx context.Context, artifact Artifact) (map[string][]byte, error)
}

// Factory creates a provider authenticated with token.
type Factory func(token string) Provider

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// RegisterProvider makes a provider available by name. Providers register
// themselves from init.
func RegisterProvider(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Registered returns the registered provider names, sorted.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	buildkiteURLPattern = regexp.MustCompile(`^https://buildkite\.com/([^/]+)/([^/]+)/builds/(\d+)`)
	githubURLPattern    = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/actions/runs/(\d+)`)
)

// ParseURL detects provider and parses build reference from URL
func ParseURL(url string) (*BuildRef, error) {
	// Try Buildkite pattern
	if matches := buildkiteURLPattern.FindStringSubmatch(url); matches != nil {
		return &BuildRef{
			Provider: "buildkite",
			BuildID:  matches[3],
			Metadata: map[string]string{
				"org":      matches[1],
				"pipeline": matches[2],
			},
		}, nil
	}

	// Try GitHub Actions pattern
	if matches := githubURLPattern.FindStringSubmatch(url); matches != nil {
		return &BuildRef{
			Provider: "github",
			BuildID:  matches[3],
			Metadata: map[string]string{
				"owner": matches[1],
				"repo":  matches[2],
			},
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrInvalidURL, url)
}

// GetProvider returns the registered provider for ref, authenticated with token.
func GetProvider(ref *BuildRef, token string) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[ref.Provider]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnknown, ref.Provider)
	}
	return factory(token), nil
}
