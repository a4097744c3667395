// Package buildkite provides a client for interacting with the Buildkite API.
package buildkite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"regcheck/src/provider"
)

const (
	// APIBaseURL is the base URL for the Buildkite API.
	APIBaseURL = "https://api.buildkite.com/v2"

	// maxPerPage is the largest page size the builds endpoint accepts.
	maxPerPage = 100
)

// Client is a Buildkite API client.
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
}

// Build represents a Buildkite build.
type Build struct {
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	State      string     `json:"state"`
	Branch     string     `json:"branch"`
	WebURL     string     `json:"web_url"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Jobs       []Job      `json:"jobs"`
}

// Job represents a Buildkite job within a build.
type Job struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	State string `json:"state"`
}

// Artifact represents a build artifact.
type Artifact struct {
	ID          string `json:"id"`
	JobID       string `json:"job_id"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
	FileSize    int64  `json:"file_size"`
	Sha1Sum     string `json:"sha1sum"`
}

// NewClient creates a new Buildkite API client.
func NewClient(apiToken string) *Client {
	return NewClientWithBaseURL(apiToken, APIBaseURL)
}

// NewClientWithBaseURL creates a client against another API root, e.g. a test server.
func NewClientWithBaseURL(apiToken, baseURL string) *Client {
	return &Client{
		apiToken: apiToken,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var buildURLPattern = regexp.MustCompile(`https://buildkite\.com/([^/]+)/([^/]+)/builds/(\d+)`)

// ParseBuildURL extracts the organization, pipeline, and build number from a Buildkite URL.
// Expected format: https://buildkite.com/{org}/{pipeline}/builds/{number}
func ParseBuildURL(buildURL string) (org, pipeline string, buildNumber int, err error) {
	matches := buildURLPattern.FindStringSubmatch(buildURL)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid Buildkite URL format: %s", buildURL)
	}

	buildNumber, err = strconv.Atoi(matches[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid build number in URL: %w", err)
	}
	return matches[1], matches[2], buildNumber, nil
}

// get performs an authenticated GET and decodes a JSON response into out.
func (c *Client) get(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return provider.StatusError(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetBuild fetches a build's metadata from the Buildkite API.
func (c *Client) GetBuild(ctx context.Context, org, pipeline, buildNumber string) (*Build, error) {
	u := fmt.Sprintf("%s/organizations/%s/pipelines/%s/builds/%s", c.baseURL, org, pipeline, buildNumber)

	var build Build
	if err := c.get(ctx, u, &build); err != nil {
		return nil, err
	}
	return &build, nil
}

// ListBuilds fetches one page of a pipeline's builds, newest first. An empty
// branch lists every branch.
func (c *Client) ListBuilds(ctx context.Context, org, pipeline, branch string, page, perPage int) ([]Build, error) {
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if branch != "" {
		q.Set("branch", branch)
	}
	u := fmt.Sprintf("%s/organizations/%s/pipelines/%s/builds?%s", c.baseURL, org, pipeline, q.Encode())

	var builds []Build
	if err := c.get(ctx, u, &builds); err != nil {
		return nil, err
	}
	return builds, nil
}

// GetBuildArtifacts fetches every artifact uploaded by any job of a build.
func (c *Client) GetBuildArtifacts(ctx context.Context, org, pipeline string, buildNumber int) ([]Artifact, error) {
	var all []Artifact
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/organizations/%s/pipelines/%s/builds/%d/artifacts?page=%d&per_page=%d",
			c.baseURL, org, pipeline, buildNumber, page, maxPerPage)

		var artifacts []Artifact
		if err := c.get(ctx, u, &artifacts); err != nil {
			return nil, err
		}
		all = append(all, artifacts...)

		if len(artifacts) < maxPerPage {
			return all, nil
		}
	}
}

// DownloadArtifact downloads the content of an artifact by its download URL.
func (c *Client) DownloadArtifact(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, provider.StatusError(resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact content: %w", err)
	}
	return data, nil
}
