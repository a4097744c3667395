package buildkite

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"regcheck/src/provider"
)

func init() {
	// Register the Buildkite provider factory
	provider.RegisterProvider("buildkite", func(token string) provider.Provider {
		return NewProvider(token)
	})
}

// Provider implements provider.Provider for Buildkite
type Provider struct {
	client *Client
}

// NewProvider creates a Buildkite provider with API token
func NewProvider(token string) *Provider {
	return &Provider{client: NewClient(token)}
}

// NewProviderWithClient wraps an existing client.
func NewProviderWithClient(client *Client) *Provider {
	return &Provider{client: client}
}

// Name returns "buildkite"
func (p *Provider) Name() string {
	return "buildkite"
}

// ParseURL delegates to provider.ParseURL
func (p *Provider) ParseURL(url string) (*provider.BuildRef, error) {
	return provider.ParseURL(url)
}

// FetchBuild retrieves build metadata using Buildkite API
func (p *Provider) FetchBuild(ctx context.Context, ref *provider.BuildRef) (*provider.Build, error) {
	org := ref.Metadata["org"]
	pipeline := ref.Metadata["pipeline"]

	bkBuild, err := p.client.GetBuild(ctx, org, pipeline, ref.BuildID)
	if err != nil {
		return nil, err
	}

	build := convertBuild(org, pipeline, *bkBuild)
	return &build, nil
}

// FetchHistory pages backwards through the pipeline until limit finished
// builds older than build are found or the pipeline runs out.
func (p *Provider) FetchHistory(ctx context.Context, build *provider.Build, limit int) ([]provider.Build, error) {
	org, pipeline := build.Meta["org"], build.Meta["pipeline"]
	if org == "" || pipeline == "" {
		return nil, fmt.Errorf("build %s has no Buildkite pipeline metadata", build.ID)
	}

	var history []provider.Build
	for page := 1; limit <= 0 || len(history) < limit; page++ {
		builds, err := p.client.ListBuilds(ctx, org, pipeline, build.Branch, page, maxPerPage)
		if err != nil {
			return nil, err
		}

		for _, b := range builds {
			if b.Number >= build.Number || b.FinishedAt == nil {
				continue
			}
			history = append(history, convertBuild(org, pipeline, b))
			if limit > 0 && len(history) == limit {
				break
			}
		}

		if len(builds) < maxPerPage {
			break
		}
	}
	return history, nil
}

// FetchArtifacts retrieves artifacts of every job in the build
func (p *Provider) FetchArtifacts(ctx context.Context, build *provider.Build) ([]provider.Artifact, error) {
	bkArtifacts, err := p.client.GetBuildArtifacts(ctx, build.Meta["org"], build.Meta["pipeline"], build.Number)
	if err != nil {
		return nil, err
	}

	artifacts := make([]provider.Artifact, 0, len(bkArtifacts))
	for _, bkArt := range bkArtifacts {
		artifacts = append(artifacts, provider.Artifact{
			ID:          bkArt.ID,
			JobID:       bkArt.JobID,
			Path:        bkArt.Path,
			DownloadURL: bkArt.DownloadURL,
			FileSize:    bkArt.FileSize,
		})
	}
	return artifacts, nil
}

// DownloadArtifact downloads artifact content keyed by its upload path
func (p *Provider) DownloadArtifact(ctx context.Context, artifact provider.Artifact) (map[string][]byte, error) {
	data, err := p.client.DownloadArtifact(ctx, artifact.DownloadURL)
	if err != nil {
		return nil, err
	}
	return map[string][]byte{artifact.Path: data}, nil
}

func convertBuild(org, pipeline string, b Build) provider.Build {
	var finished time.Time
	if b.FinishedAt != nil {
		finished = *b.FinishedAt
	}

	jobs := make([]provider.Job, 0, len(b.Jobs))
	for _, j := range b.Jobs {
		jobs = append(jobs, provider.Job{ID: j.ID, Name: j.Name, State: j.State})
	}

	return provider.Build{
		ID:       b.ID,
		Number:   b.Number,
		Project:  org + "/" + pipeline,
		Branch:   b.Branch,
		URL:      b.WebURL,
		State:    b.State,
		Created:  b.CreatedAt,
		Finished: finished,
		Jobs:     jobs,
		Meta: map[string]string{
			"org":      org,
			"pipeline": pipeline,
			"number":   strconv.Itoa(b.Number),
		},
	}
}
