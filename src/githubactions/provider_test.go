package githubactions

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"regcheck/src/contracts"
	"regcheck/src/provider"
)

func TestGitHubProvider_ParseURL(t *testing.T) {
	p := NewProvider("fake-token")
	if p.Name() != "github" {
		t.Errorf("Name() = %v, want github", p.Name())
	}

	ref, err := p.ParseURL("https://github.com/owner/repo/actions/runs/123456")
	if err != nil {
		t.Fatalf("ParseURL() error = %v", err)
	}
	if ref.Provider != "github" || ref.BuildID != "123456" {
		t.Errorf("ParseURL() = %+v", ref)
	}
	if ref.Metadata["owner"] != "owner" || ref.Metadata["repo"] != "repo" {
		t.Errorf("Metadata = %v", ref.Metadata)
	}
}

func TestMapGitHubStatus(t *testing.T) {
	tests := []struct {
		status     string
		conclusion string
		want       string
		outcome    contracts.Outcome
	}{
		{"completed", "success", "passed", contracts.OutcomeSuccess},
		{"completed", "failure", "failed", contracts.OutcomeFailure},
		{"completed", "timed_out", "failed", contracts.OutcomeFailure},
		{"completed", "cancelled", "canceled", contracts.OutcomeAborted},
		{"completed", "neutral", "neutral", contracts.OutcomeUnstable},
		{"completed", "skipped", "skipped", contracts.OutcomeNotBuilt},
		{"in_progress", "", "in_progress", contracts.OutcomeNotBuilt},
	}

	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.conclusion, func(t *testing.T) {
			got := mapGitHubStatus(tt.status, tt.conclusion)
			if got != tt.want {
				t.Errorf("mapGitHubStatus() = %v, want %v", got, tt.want)
			}
			if o := provider.MapOutcome(got); o != tt.outcome {
				t.Errorf("MapOutcome(%v) = %v, want %v", got, o, tt.outcome)
			}
		})
	}
}

type fakeRun struct {
	id         int
	number     int
	status     string
	conclusion string
}

func workflowServer(t *testing.T, runs []fakeRun) *httptest.Server {
	t.Helper()

	runJSON := func(r fakeRun) string {
		return fmt.Sprintf(`{"id":%d,"workflow_id":77,"path":".github/workflows/ci.yml","head_branch":"main",`+
			`"run_number":%d,"status":%q,"conclusion":%q,"updated_at":"2026-03-01T10:00:00Z"}`,
			r.id, r.number, r.status, r.conclusion)
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/owner/repo/actions/workflows/77/runs":
			parts := make([]string, 0, len(runs))
			for i := len(runs) - 1; i >= 0; i-- {
				parts = append(parts, runJSON(runs[i]))
			}
			fmt.Fprintf(w, `{"total_count":%d,"workflow_runs":[%s]}`, len(runs), strings.Join(parts, ","))
		case strings.HasSuffix(r.URL.Path, "/jobs"):
			w.Write([]byte(`{"total_count":1,"jobs":[{"id":5,"name":"build","status":"completed","conclusion":"success"}]}`))
		case strings.HasSuffix(r.URL.Path, "/artifacts"):
			fmt.Fprintf(w, `{"total_count":2,"artifacts":[`+
				`{"id":1,"name":"reports","archive_download_url":"http://%s/zip/1","expired":false},`+
				`{"id":2,"name":"old","archive_download_url":"http://%s/zip/2","expired":true}]}`, r.Host, r.Host)
		case r.URL.Path == "/zip/1":
			w.Write(zipArchive(t, map[string]string{"pmd.xml": "<pmd/>"}))
		case strings.HasPrefix(r.URL.Path, "/repos/owner/repo/actions/runs/"):
			var id int
			fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/repos/owner/repo/actions/runs/"), "%d", &id)
			for _, run := range runs {
				if run.id == id {
					w.Write([]byte(runJSON(run)))
					return
				}
			}
			http.NotFound(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGitHubProvider_FetchBuildAndHistory(t *testing.T) {
	server := workflowServer(t, []fakeRun{
		{id: 101, number: 1, status: "completed", conclusion: "success"},
		{id: 102, number: 2, status: "completed", conclusion: "failure"},
		{id: 103, number: 3, status: "in_progress"},
		{id: 104, number: 4, status: "completed", conclusion: "success"},
	})
	defer server.Close()

	p := NewProviderWithClient(NewClientWithBaseURL("t", server.URL))
	ctx := context.Background()

	build, err := p.FetchBuild(ctx, &provider.BuildRef{
		Provider: "github",
		BuildID:  "104",
		Metadata: map[string]string{"owner": "owner", "repo": "repo"},
	})
	if err != nil {
		t.Fatalf("FetchBuild() error = %v", err)
	}
	if build.Project != "owner/repo/ci.yml" || build.Number != 4 {
		t.Errorf("FetchBuild() = %+v", build)
	}
	if len(build.Jobs) != 1 || build.Jobs[0].State != "passed" {
		t.Errorf("Jobs = %+v", build.Jobs)
	}
	if build.Finished.IsZero() {
		t.Error("completed run should have a finish time")
	}

	history, err := p.FetchHistory(ctx, build, 0)
	if err != nil {
		t.Fatalf("FetchHistory() error = %v", err)
	}
	if len(history) != 2 || history[0].Number != 2 || history[1].Number != 1 {
		t.Fatalf("FetchHistory() = %+v, want runs 2 and 1", history)
	}
	if history[0].Outcome() != contracts.OutcomeFailure {
		t.Errorf("history[0].Outcome() = %v, want FAILURE", history[0].Outcome())
	}
}

func TestGitHubProvider_FetchHistory_NoWorkflow(t *testing.T) {
	p := NewProvider("t")
	if _, err := p.FetchHistory(context.Background(), &provider.Build{ID: "1"}, 5); err == nil {
		t.Error("FetchHistory() without workflow metadata should fail")
	}
}

func TestGitHubProvider_Artifacts(t *testing.T) {
	server := workflowServer(t, nil)
	defer server.Close()

	p := NewProviderWithClient(NewClientWithBaseURL("t", server.URL))
	ctx := context.Background()
	build := &provider.Build{ID: "104", Meta: map[string]string{"owner": "owner", "repo": "repo"}}

	artifacts, err := p.FetchArtifacts(ctx, build)
	if err != nil {
		t.Fatalf("FetchArtifacts() error = %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].Path != "reports" || !artifacts[0].Archive {
		t.Fatalf("FetchArtifacts() = %+v, want only the unexpired archive", artifacts)
	}

	files, err := p.DownloadArtifact(ctx, artifacts[0])
	if err != nil {
		t.Fatalf("DownloadArtifact() error = %v", err)
	}
	if string(files["reports/pmd.xml"]) != "<pmd/>" {
		t.Errorf("DownloadArtifact() = %v", files)
	}
}
