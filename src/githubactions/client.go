package githubactions

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"time"

	"regcheck/src/provider"
)

var (
	ErrInvalidURL = errors.New("invalid GitHub Actions URL")
)

// APIBaseURL is the public GitHub REST API root.
const APIBaseURL = "https://api.github.com"

// perPage is GitHub's largest page size.
const perPage = 100

var workflowRunURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/actions/runs/(\d+)`)

// Client is a GitHub Actions API client
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new GitHub Actions client
func NewClient(token string) *Client {
	return NewClientWithBaseURL(token, APIBaseURL)
}

// NewClientWithBaseURL creates a client against another API root.
func NewClientWithBaseURL(token, baseURL string) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// ParseWorkflowRunURL extracts owner, repo, and run ID from URL
func ParseWorkflowRunURL(url string) (owner, repo, runID string, err error) {
	matches := workflowRunURLPattern.FindStringSubmatch(url)
	if matches == nil {
		return "", "", "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	return matches[1], matches[2], matches[3], nil
}

func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, provider.StatusError(resp.StatusCode, string(body))
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

// GetWorkflowRun fetches workflow run metadata
func (c *Client) GetWorkflowRun(ctx context.Context, owner, repo, runID string) (*WorkflowRun, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/actions/runs/%s", c.baseURL, owner, repo, runID)

	var run WorkflowRun
	if err := c.getJSON(ctx, u, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListWorkflowRuns fetches one page of a workflow's runs, newest first. An
// empty branch lists runs of every branch.
func (c *Client) ListWorkflowRuns(ctx context.Context, owner, repo string, workflowID int64, branch string, page int) ([]WorkflowRun, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	if branch != "" {
		q.Set("branch", branch)
	}
	u := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%d/runs?%s", c.baseURL, owner, repo, workflowID, q.Encode())

	var runs WorkflowRunsResponse
	if err := c.getJSON(ctx, u, &runs); err != nil {
		return nil, err
	}
	return runs.WorkflowRuns, nil
}

// GetWorkflowJobs fetches jobs for a workflow run (handles pagination)
func (c *Client) GetWorkflowJobs(ctx context.Context, owner, repo, runID string) ([]WorkflowJob, error) {
	var allJobs []WorkflowJob

	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/repos/%s/%s/actions/runs/%s/jobs?per_page=%d&page=%d",
			c.baseURL, owner, repo, runID, perPage, page)

		var jobsResp WorkflowJobsResponse
		if err := c.getJSON(ctx, u, &jobsResp); err != nil {
			return nil, err
		}
		allJobs = append(allJobs, jobsResp.Jobs...)

		if len(allJobs) >= jobsResp.TotalCount || len(jobsResp.Jobs) < perPage {
			return allJobs, nil
		}
	}
}

// GetArtifacts fetches artifacts for a workflow run
func (c *Client) GetArtifacts(ctx context.Context, owner, repo, runID string) ([]Artifact, error) {
	var all []Artifact

	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/repos/%s/%s/actions/runs/%s/artifacts?per_page=%d&page=%d",
			c.baseURL, owner, repo, runID, perPage, page)

		var artifactsResp ArtifactsResponse
		if err := c.getJSON(ctx, u, &artifactsResp); err != nil {
			return nil, err
		}
		all = append(all, artifactsResp.Artifacts...)

		if len(all) >= artifactsResp.TotalCount || len(artifactsResp.Artifacts) < perPage {
			return all, nil
		}
	}
}

// DownloadArtifact downloads an artifact zip and returns its files keyed by
// name inside the archive.
func (c *Client) DownloadArtifact(ctx context.Context, downloadURL string) (map[string][]byte, error) {
	resp, err := c.do(ctx, downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	zipData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return unzip(zipData)
}

func unzip(data []byte) (map[string][]byte, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact archive: %w", err)
	}

	files := make(map[string][]byte)
	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		content, err := readZipFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
		}
		files[path.Clean(file.Name)] = content
	}
	return files, nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
