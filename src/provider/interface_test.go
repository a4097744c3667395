package provider

import (
	"context"
	"errors"
	"testing"

	"regcheck/src/contracts"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantProvider string
		wantBuildID  string
		wantErr      bool
	}{
		{
			name:         "buildkite URL",
			url:          "https://buildkite.com/org/pipeline/builds/123",
			wantProvider: "buildkite",
			wantBuildID:  "123",
		},
		{
			name:         "github actions URL",
			url:          "https://github.com/owner/repo/actions/runs/456",
			wantProvider: "github",
			wantBuildID:  "456",
		},
		{
			name:    "invalid URL",
			url:     "https://example.com/invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidURL) {
					t.Errorf("ParseURL() error = %v, want ErrInvalidURL", err)
				}
				return
			}
			if ref.Provider != tt.wantProvider || ref.BuildID != tt.wantBuildID {
				t.Errorf("ParseURL() = %s/%s, want %s/%s", ref.Provider, ref.BuildID, tt.wantProvider, tt.wantBuildID)
			}
		})
	}
}

type stubProvider struct{ token string }

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) ParseURL(string) (*BuildRef, error) { return nil, nil }
func (s *stubProvider) FetchBuild(context.Context, *BuildRef) (*Build, error) {
	return nil, nil
}
func (s *stubProvider) FetchHistory(context.Context, *Build, int) ([]Build, error) {
	return nil, nil
}
func (s *stubProvider) FetchArtifacts(context.Context, *Build) ([]Artifact, error) {
	return nil, nil
}
func (s *stubProvider) DownloadArtifact(context.Context, Artifact) (map[string][]byte, error) {
	return nil, nil
}

func TestGetProvider(t *testing.T) {
	RegisterProvider("stub", func(token string) Provider { return &stubProvider{token: token} })

	p, err := GetProvider(&BuildRef{Provider: "stub"}, "tok")
	if err != nil {
		t.Fatalf("GetProvider() error = %v", err)
	}
	if got := p.(*stubProvider).token; got != "tok" {
		t.Errorf("factory token = %q, want tok", got)
	}

	found := false
	for _, name := range Registered() {
		if name == "stub" {
			found = true
		}
	}
	if !found {
		t.Errorf("Registered() = %v, want it to include stub", Registered())
	}

	if _, err := GetProvider(&BuildRef{Provider: "jenkins"}, ""); !errors.Is(err, ErrProviderUnknown) {
		t.Errorf("GetProvider(jenkins) error = %v, want ErrProviderUnknown", err)
	}
}

func TestMapOutcome(t *testing.T) {
	tests := map[string]contracts.Outcome{
		"passed":          contracts.OutcomeSuccess,
		"failed":          contracts.OutcomeFailure,
		"timed_out":       contracts.OutcomeFailure,
		"canceled":        contracts.OutcomeAborted,
		"cancelled":       contracts.OutcomeAborted,
		"neutral":         contracts.OutcomeUnstable,
		"action_required": contracts.OutcomeUnstable,
		"skipped":         contracts.OutcomeNotBuilt,
		"not_run":         contracts.OutcomeNotBuilt,
		"running":         contracts.OutcomeNotBuilt,
	}
	for state, want := range tests {
		if got := MapOutcome(state); got != want {
			t.Errorf("MapOutcome(%q) = %v, want %v", state, got, want)
		}
	}
}

func TestBuild_Record(t *testing.T) {
	b := &Build{Project: "org/pipe", Number: 12, State: "passed", URL: "https://ci/12"}

	rec := b.Record()
	if rec.Project != "org/pipe" || rec.Number != 12 || rec.Outcome != contracts.OutcomeSuccess {
		t.Errorf("Record() = %+v", rec)
	}
	if rec.Coverage != nil || rec.Warnings != nil {
		t.Error("Record() should not attach summaries")
	}
}
