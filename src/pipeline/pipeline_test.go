package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"regcheck/src/broker"
	"regcheck/src/config"
	"regcheck/src/contracts"
	"regcheck/src/provider"
	"regcheck/src/store"
)

func TestDetectMode(t *testing.T) {
	tests := []struct {
		name     string
		brokers  string
		expected Mode
	}{
		{name: "no brokers", brokers: "", expected: LocalMode},
		{name: "blank entries", brokers: " , ", expected: LocalMode},
		{name: "one broker", brokers: "localhost:19092", expected: DistributedMode},
		{name: "two brokers", brokers: "broker1:9092,broker2:9092", expected: DistributedMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if mode := DetectMode(config.BrokerConfig{Brokers: tt.brokers}); mode != tt.expected {
				t.Errorf("DetectMode() = %v, want %v", mode, tt.expected)
			}
		})
	}
}

// pmdProvider serves builds whose PMD report holds the given warning counts.
type pmdProvider struct {
	counts []int // index 0 is build #1
}

func (p pmdProvider) build(n int) provider.Build {
	return provider.Build{
		ID:       fmt.Sprint(n),
		Number:   n,
		Project:  "acme/api",
		URL:      fmt.Sprintf("https://ci.example/acme/api/%d", n),
		State:    "passed",
		Finished: time.Date(2026, 3, 1, n, 0, 0, 0, time.UTC),
	}
}

func (p pmdProvider) Name() string { return "pmd" }

func (p pmdProvider) ParseURL(url string) (*provider.BuildRef, error) {
	return &provider.BuildRef{Provider: "pmd", BuildID: url[strings.LastIndex(url, "/")+1:]}, nil
}

func (p pmdProvider) FetchBuild(ctx context.Context, ref *provider.BuildRef) (*provider.Build, error) {
	var n int
	fmt.Sscan(ref.BuildID, &n)
	if n < 1 || n > len(p.counts) {
		return nil, provider.ErrBuildNotFound
	}
	b := p.build(n)
	return &b, nil
}

func (p pmdProvider) FetchHistory(ctx context.Context, build *provider.Build, limit int) ([]provider.Build, error) {
	var out []provider.Build
	for n := build.Number - 1; n >= 1 && (limit <= 0 || len(out) < limit); n-- {
		out = append(out, p.build(n))
	}
	return out, nil
}

func (p pmdProvider) FetchArtifacts(ctx context.Context, build *provider.Build) ([]provider.Artifact, error) {
	return []provider.Artifact{{Path: "pmd.xml", DownloadURL: fmt.Sprint(build.Number)}}, nil
}

func (p pmdProvider) DownloadArtifact(ctx context.Context, a provider.Artifact) (map[string][]byte, error) {
	var n int
	fmt.Sscan(a.DownloadURL, &n)
	var sb strings.Builder
	sb.WriteString(`<pmd><file name="A.java">`)
	for i := 0; i < p.counts[n-1]; i++ {
		sb.WriteString(`<violation beginline="1" rule="R"/>`)
	}
	sb.WriteString(`</file></pmd>`)
	return map[string][]byte{a.Path: []byte(sb.String())}, nil
}

func newLocalPipeline(t *testing.T, counts ...int) *Pipeline {
	t.Helper()

	p := NewWithBroker(broker.NewInMemoryBroker(), store.NewMemoryStore())
	fake := pmdProvider{counts: counts}
	p.StartAgents(Options{
		Resolver: func(buildURL string) (provider.Provider, *provider.BuildRef, error) {
			ref, err := fake.ParseURL(buildURL)
			return fake, ref, err
		},
		Store:  p.Store(),
		Checks: contracts.CheckConfiguration{PMD: true},
		Depth:  10,
	})
	t.Cleanup(func() { p.Close() })

	// Give agents time to subscribe.
	time.Sleep(50 * time.Millisecond)
	return p
}

func TestPipeline_EvaluateEndToEnd(t *testing.T) {
	p := newLocalPipeline(t, 5, 5, 8)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := p.Evaluate(ctx, "https://ci.example/acme/api/3", nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	v := out.Verdict
	if v.Project != "acme/api" || v.Number != 3 || !v.BuildShouldFail {
		t.Fatalf("verdict = %+v", v)
	}
	want := "Regressions detected in PMD Warnings. Compared to the current base line at build #2, 3 new warnings found"
	if len(v.LogLines) != 1 || v.LogLines[0] != want {
		t.Errorf("LogLines = %q, want [%q]", v.LogLines, want)
	}

	// The history was recorded along the way.
	builds, err := p.Store().ListBuilds(ctx, "acme/api", 0, 0)
	if err != nil {
		t.Fatalf("ListBuilds() error = %v", err)
	}
	if len(builds) != 3 {
		t.Errorf("stored %d builds, want 3", len(builds))
	}
}

func TestPipeline_EvaluateReportsCollectionError(t *testing.T) {
	p := newLocalPipeline(t, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := p.Evaluate(ctx, "https://ci.example/acme/api/7", nil)
	if err == nil || !strings.Contains(err.Error(), "build not found") {
		t.Fatalf("Evaluate() error = %v, want build not found", err)
	}
	if out == nil || out.RequestID == "" {
		t.Errorf("Evaluate() message = %+v", out)
	}
}

func TestPipeline_EvaluateHonoursContext(t *testing.T) {
	// No agents: the verdict never comes.
	p := NewWithBroker(broker.NewInMemoryBroker(), nil)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := p.Evaluate(ctx, "https://ci.example/acme/api/1", nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Evaluate() error = %v, want DeadlineExceeded", err)
	}
}

func TestPipeline_EvaluatePublishesChecks(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	p := NewWithBroker(brk, nil)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	requests, _ := brk.Subscribe(ctx, contracts.TopicRequests, "test")

	// No agents: Evaluate waits until ctx ends.
	go p.Evaluate(ctx, "https://buildkite.com/acme/api/builds/1", &contracts.CheckConfiguration{Coverage: true, CoverageThreshold: 70})

	select {
	case msg := <-requests:
		if !strings.HasPrefix(msg.Key, "req-") {
			t.Errorf("Key = %q, want a request id", msg.Key)
		}
		var request contracts.EvaluationRequest
		if err := json.Unmarshal(msg.Value, &request); err != nil {
			t.Fatalf("request is not JSON: %v", err)
		}
		if request.RequestID != msg.Key || request.BuildURL != "https://buildkite.com/acme/api/builds/1" {
			t.Errorf("request = %+v", request)
		}
		if request.Checks == nil || request.Checks.PMD || !request.Checks.Coverage || request.Checks.CoverageThreshold != 70 {
			t.Errorf("Checks = %+v, want coverage only at 70", request.Checks)
		}
	case <-ctx.Done():
		t.Fatal("request not published")
	}
}
