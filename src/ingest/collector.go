package ingest

import (
	"context"
	"fmt"

	"regcheck/src/contracts"
	"regcheck/src/logger"
	"regcheck/src/provider"
	"regcheck/src/summary"
)

// Resolver finds the provider serving a build URL.
type Resolver func(buildURL string) (provider.Provider, *provider.BuildRef, error)

// TokenResolver resolves URLs through the provider registry, authenticating
// each provider with the token returned for its name.
func TokenResolver(token func(name string) string) Resolver {
	return func(buildURL string) (provider.Provider, *provider.BuildRef, error) {
		ref, err := provider.ParseURL(buildURL)
		if err != nil {
			return nil, nil, err
		}
		p, err := provider.GetProvider(ref, token(ref.Provider))
		if err != nil {
			return nil, nil, err
		}
		return p, ref, nil
	}
}

// Collector turns CI builds into build records with their report summaries.
type Collector struct {
	logger logger.Logger
}

// NewCollector creates a collector.
func NewCollector(log logger.Logger) *Collector {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Collector{logger: log}
}

// Collected is one build with the history collected for it.
type Collected struct {
	Build   contracts.BuildRecord
	History []contracts.BuildRecord
}

// CollectURL fetches the build behind buildURL and up to depth earlier builds
// of the same project.
func (c *Collector) CollectURL(ctx context.Context, resolve Resolver, buildURL string, depth int) (*Collected, error) {
	p, ref, err := resolve(buildURL)
	if err != nil {
		return nil, err
	}

	build, err := p.FetchBuild(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch build: %w", err)
	}
	c.logger.Info("[Collector] %s #%d is %s (%d jobs)", build.Project, build.Number, build.State, len(build.Jobs))

	record, err := c.Collect(ctx, p, build)
	if err != nil {
		return nil, err
	}

	history, err := c.CollectHistory(ctx, p, build, depth)
	if err != nil {
		return nil, err
	}
	return &Collected{Build: record, History: history}, nil
}

// Collect downloads a build's reports and returns its record with summaries
// attached.
func (c *Collector) Collect(ctx context.Context, p provider.Provider, build *provider.Build) (contracts.BuildRecord, error) {
	record := build.Record()

	artifacts, err := p.FetchArtifacts(ctx, build)
	if err != nil {
		return record, fmt.Errorf("failed to list artifacts of %s #%d: %w", build.Project, build.Number, err)
	}

	files := make(map[string][]byte)
	for _, artifact := range artifacts {
		if !artifact.Archive {
			if _, ok := summary.Detect(artifact.Path); !ok {
				continue
			}
		}

		content, err := p.DownloadArtifact(ctx, artifact)
		if err != nil {
			return record, fmt.Errorf("failed to download %s: %w", artifact.Path, err)
		}
		for name, data := range content {
			files[name] = data
		}
	}

	used, err := summary.Collect(files, &record)
	if err != nil {
		return record, fmt.Errorf("failed to read reports of %s #%d: %w", build.Project, build.Number, err)
	}
	c.logger.Debug("[Collector] %s #%d: %d of %d artifacts, %d reports",
		build.Project, build.Number, len(files), len(artifacts), len(used))
	return record, nil
}

// CollectHistory collects up to depth earlier finished builds. A history
// build whose reports cannot be read is kept without summaries, so it still
// takes part in the baseline search.
func (c *Collector) CollectHistory(ctx context.Context, p provider.Provider, build *provider.Build, depth int) ([]contracts.BuildRecord, error) {
	builds, err := p.FetchHistory(ctx, build, depth)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	records := make([]contracts.BuildRecord, 0, len(builds))
	for i := range builds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := c.Collect(ctx, p, &builds[i])
		if err != nil {
			c.logger.Error("[Collector] %v", err)
			record = builds[i].Record()
		}
		records = append(records, record)
	}

	c.logger.Info("[Collector] Collected %d earlier builds of %s", len(records), build.Project)
	return records, nil
}
