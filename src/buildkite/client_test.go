package buildkite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"regcheck/src/provider"
)

func TestParseBuildURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantOrg      string
		wantPipeline string
		wantNumber   int
		wantErr      bool
	}{
		{
			name:         "valid URL",
			url:          "https://buildkite.com/my-org/my-pipeline/builds/4091",
			wantOrg:      "my-org",
			wantPipeline: "my-pipeline",
			wantNumber:   4091,
		},
		{
			name:    "missing build number",
			url:     "https://buildkite.com/my-org/my-pipeline/builds/",
			wantErr: true,
		},
		{
			name:    "wrong host",
			url:     "https://example.com/builds/123",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org, pipeline, number, err := ParseBuildURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBuildURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if org != tt.wantOrg || pipeline != tt.wantPipeline || number != tt.wantNumber {
				t.Errorf("ParseBuildURL() = %s, %s, %d, want %s, %s, %d",
					org, pipeline, number, tt.wantOrg, tt.wantPipeline, tt.wantNumber)
			}
		})
	}
}

func TestClient_GetBuild(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/organizations/acme/pipelines/api/builds/42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "b-42",
			"number": 42,
			"state": "failed",
			"branch": "main",
			"web_url": "https://buildkite.com/acme/api/builds/42",
			"created_at": "2026-03-01T10:00:00Z",
			"finished_at": "2026-03-01T10:12:00Z",
			"jobs": [{"id": "j1", "name": "test", "type": "script", "state": "failed"}]
		}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-token", server.URL)
	build, err := client.GetBuild(context.Background(), "acme", "api", "42")
	if err != nil {
		t.Fatalf("GetBuild() error = %v", err)
	}
	if build.Number != 42 || build.State != "failed" || build.Branch != "main" {
		t.Errorf("GetBuild() = %+v", build)
	}
	if build.FinishedAt == nil {
		t.Error("FinishedAt not decoded")
	}
}

func TestClient_GetBuild_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"No build found"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-token", server.URL)
	_, err := client.GetBuild(context.Background(), "acme", "api", "1")
	if !errors.Is(err, provider.ErrBuildNotFound) {
		t.Errorf("GetBuild() error = %v, want ErrBuildNotFound", err)
	}
}

func TestClient_ListBuilds_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("branch") != "main" || q.Get("page") != "2" || q.Get("per_page") != "10" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id": "a", "number": 5, "state": "passed"}]`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("t", server.URL)
	builds, err := client.ListBuilds(context.Background(), "acme", "api", "main", 2, 10)
	if err != nil {
		t.Fatalf("ListBuilds() error = %v", err)
	}
	if len(builds) != 1 || builds[0].Number != 5 {
		t.Errorf("ListBuilds() = %+v", builds)
	}
}

func TestClient_DownloadArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<pmd/>"))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("t", server.URL)
	data, err := client.DownloadArtifact(context.Background(), server.URL+"/download")
	if err != nil {
		t.Fatalf("DownloadArtifact() error = %v", err)
	}
	if string(data) != "<pmd/>" {
		t.Errorf("DownloadArtifact() = %q", data)
	}
}
