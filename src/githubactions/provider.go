package githubactions

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"regcheck/src/provider"
)

func init() {
	// Register the GitHub Actions provider factory
	provider.RegisterProvider("github", func(token string) provider.Provider {
		return NewProvider(token)
	})
}

// Provider implements provider.Provider for GitHub Actions. Builds of one
// workflow file form a project; the run number is the build number.
type Provider struct {
	client *Client
}

// NewProvider creates a GitHub Actions provider with API token
func NewProvider(token string) *Provider {
	return &Provider{client: NewClient(token)}
}

// NewProviderWithClient wraps an existing client.
func NewProviderWithClient(client *Client) *Provider {
	return &Provider{client: client}
}

// Name returns "github"
func (p *Provider) Name() string {
	return "github"
}

// ParseURL delegates to provider.ParseURL
func (p *Provider) ParseURL(url string) (*provider.BuildRef, error) {
	return provider.ParseURL(url)
}

// FetchBuild retrieves workflow run metadata using GitHub API
func (p *Provider) FetchBuild(ctx context.Context, ref *provider.BuildRef) (*provider.Build, error) {
	owner := ref.Metadata["owner"]
	repo := ref.Metadata["repo"]

	run, err := p.client.GetWorkflowRun(ctx, owner, repo, ref.BuildID)
	if err != nil {
		return nil, err
	}

	jobs, err := p.client.GetWorkflowJobs(ctx, owner, repo, ref.BuildID)
	if err != nil {
		return nil, err
	}

	build := convertRun(owner, repo, *run)
	build.Jobs = make([]provider.Job, 0, len(jobs))
	for _, j := range jobs {
		build.Jobs = append(build.Jobs, provider.Job{
			ID:    strconv.FormatInt(j.ID, 10),
			Name:  j.Name,
			State: mapGitHubStatus(j.Status, j.Conclusion),
		})
	}
	return &build, nil
}

// FetchHistory lists completed runs of the same workflow and branch with a
// lower run number, newest first.
func (p *Provider) FetchHistory(ctx context.Context, build *provider.Build, limit int) ([]provider.Build, error) {
	owner, repo := build.Meta["owner"], build.Meta["repo"]
	workflowID, err := strconv.ParseInt(build.Meta["workflow_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("build %s has no workflow id: %w", build.ID, err)
	}

	var history []provider.Build
	for page := 1; limit <= 0 || len(history) < limit; page++ {
		runs, err := p.client.ListWorkflowRuns(ctx, owner, repo, workflowID, build.Branch, page)
		if err != nil {
			return nil, err
		}

		for _, run := range runs {
			if run.RunNumber >= build.Number || !run.Completed() {
				continue
			}
			history = append(history, convertRun(owner, repo, run))
			if limit > 0 && len(history) == limit {
				break
			}
		}

		if len(runs) < perPage {
			break
		}
	}
	return history, nil
}

// FetchArtifacts lists the run's unexpired artifacts. Each one downloads as a
// zip archive.
func (p *Provider) FetchArtifacts(ctx context.Context, build *provider.Build) ([]provider.Artifact, error) {
	ghArtifacts, err := p.client.GetArtifacts(ctx, build.Meta["owner"], build.Meta["repo"], build.ID)
	if err != nil {
		return nil, err
	}

	artifacts := make([]provider.Artifact, 0, len(ghArtifacts))
	for _, a := range ghArtifacts {
		if a.Expired {
			continue
		}
		artifacts = append(artifacts, provider.Artifact{
			ID:          strconv.FormatInt(a.ID, 10),
			Path:        a.Name,
			DownloadURL: a.ArchiveDownloadURL,
			FileSize:    a.SizeInBytes,
			Archive:     true,
		})
	}
	return artifacts, nil
}

// DownloadArtifact downloads and expands an artifact. Files are keyed under
// the artifact name so that equally named reports of two artifacts do not
// collide.
func (p *Provider) DownloadArtifact(ctx context.Context, artifact provider.Artifact) (map[string][]byte, error) {
	files, err := p.client.DownloadArtifact(ctx, artifact.DownloadURL)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(files))
	for name, content := range files {
		out[path.Join(artifact.Path, name)] = content
	}
	return out, nil
}

func convertRun(owner, repo string, run WorkflowRun) provider.Build {
	var finished time.Time
	if run.Completed() {
		finished = run.UpdatedAt
	}

	return provider.Build{
		ID:       strconv.FormatInt(run.ID, 10),
		Number:   run.RunNumber,
		Project:  owner + "/" + repo + "/" + path.Base(run.Path),
		Branch:   run.HeadBranch,
		URL:      run.HTMLURL,
		State:    mapGitHubStatus(run.Status, run.Conclusion),
		Created:  run.CreatedAt,
		Finished: finished,
		Meta: map[string]string{
			"owner":       owner,
			"repo":        repo,
			"workflow_id": strconv.FormatInt(run.WorkflowID, 10),
		},
	}
}

// mapGitHubStatus maps GitHub status/conclusion to Buildkite-like state
func mapGitHubStatus(status, conclusion string) string {
	if status == "completed" {
		switch conclusion {
		case "success":
			return "passed"
		case "failure", "timed_out", "startup_failure":
			return "failed"
		case "cancelled":
			return "canceled"
		default:
			return conclusion
		}
	}
	return status
}
