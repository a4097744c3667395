package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"regcheck/src/contracts"
	"regcheck/src/provider"
	"regcheck/src/regression"
	"regcheck/src/sanitize"
	"regcheck/src/store"
)

const defaultHistoryLimit = 20

// RemoteEvaluator evaluates a build by its CI URL with the given checks.
type RemoteEvaluator interface {
	Evaluate(ctx context.Context, buildURL string, checks *contracts.CheckConfiguration) (*contracts.VerdictMessage, error)
}

// Server is the MCP server for regcheck.
type Server struct {
	mcpServer *server.MCPServer
	store     store.Store
	remote    RemoteEvaluator
	checks    contracts.CheckConfiguration
	depth     int
}

// NewServer creates a new MCP server over st. remote may be nil, in which
// case only stored builds can be evaluated.
func NewServer(st store.Store, remote RemoteEvaluator, checks contracts.CheckConfiguration, depth int) *Server {
	s := server.NewMCPServer(
		"regcheck",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		store:     st,
		remote:    remote,
		checks:    checks,
		depth:     depth,
	}
	srv.registerTools()
	return srv
}

func (s *Server) registerTools() {
	evaluateTool := mcp.NewTool("evaluate_build",
		mcp.WithDescription("Check a build for regressions against the latest successful earlier build of the same project. "+
			"Pass either url (a Buildkite or GitHub Actions build) or project and number (a recorded build). "+
			"Returns whether the build should fail and one log line per regression."),
		mcp.WithString("url",
			mcp.Description("Build URL (Buildkite or GitHub Actions)"),
		),
		mcp.WithString("project",
			mcp.Description("Project of a recorded build"),
		),
		mcp.WithNumber("number",
			mcp.Description("Build number of a recorded build"),
		),
		mcp.WithBoolean("pmd", mcp.Description("Check PMD warnings")),
		mcp.WithBoolean("findbugs", mcp.Description("Check FindBugs warnings")),
		mcp.WithBoolean("checkstyle", mcp.Description("Check Checkstyle warnings")),
		mcp.WithBoolean("coverage", mcp.Description("Check line and branch coverage")),
		mcp.WithNumber("coverage_threshold",
			mcp.Description("Coverage percentage above which drops do not fail the build (default: 85)"),
		),
		mcp.WithNumber("coverage_tolerance",
			mcp.Description("Coverage drops up to this many percentage points count as unchanged (default: 0)"),
		),
	)

	historyTool := mcp.NewTool("get_build_history",
		mcp.WithDescription("List recorded builds of a project, newest first, with their summaries and verdicts."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name, e.g. org/pipeline"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max builds to return (default: 20)"),
		),
	)

	projectsTool := mcp.NewTool("list_projects",
		mcp.WithDescription("List projects with recorded builds."),
	)

	s.mcpServer.AddTool(evaluateTool, s.handleEvaluateBuild)
	s.mcpServer.AddTool(historyTool, s.handleGetBuildHistory)
	s.mcpServer.AddTool(projectsTool, s.handleListProjects)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// checksFor applies per-call overrides to the configured checks.
func (s *Server) checksFor(request mcp.CallToolRequest) contracts.CheckConfiguration {
	checks := s.checks
	args := request.GetArguments()

	for name, field := range map[string]*bool{
		"pmd":        &checks.PMD,
		"findbugs":   &checks.FindBugs,
		"checkstyle": &checks.Checkstyle,
		"coverage":   &checks.Coverage,
	} {
		if v, ok := args[name].(bool); ok {
			*field = v
		}
	}
	if _, ok := args["coverage_threshold"]; ok {
		checks.CoverageThreshold = request.GetFloat("coverage_threshold", checks.CoverageThreshold)
	}
	if _, ok := args["coverage_tolerance"]; ok {
		checks.CoverageTolerance = request.GetFloat("coverage_tolerance", checks.CoverageTolerance)
	}
	return checks
}

func (s *Server) handleEvaluateBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	checks := s.checksFor(request)
	if checks.CoverageThreshold <= 0 || checks.CoverageThreshold > 100 || checks.CoverageTolerance < 0 {
		return mcp.NewToolResultError("coverage_threshold must be above 0 and at most 100, and coverage_tolerance not negative"), nil
	}
	if url := request.GetString("url", ""); url != "" {
		return s.evaluateRemote(ctx, url, checks)
	}

	project := request.GetString("project", "")
	number := request.GetInt("number", 0)
	if project == "" || number <= 0 {
		return mcp.NewToolResultError("either url or project and number are required"), nil
	}

	if s.store == nil {
		return mcp.NewToolResultError("no build store configured"), nil
	}

	build, err := s.store.GetBuild(ctx, project, number)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("build %s #%d is not recorded", project, number)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load build: %v", err)), nil
	}

	h, err := store.LoadHistory(ctx, s.store, project, number, s.depth)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verdict := regression.Evaluate(h, *build, checks)
	return jsonResult(newEvaluateOutput(verdict, build.URL))
}

func (s *Server) evaluateRemote(ctx context.Context, url string, checks contracts.CheckConfiguration) (*mcp.CallToolResult, error) {
	if s.remote == nil {
		return mcp.NewToolResultError("evaluating build URLs is not enabled"), nil
	}
	if _, err := provider.ParseURL(url); err != nil {
		return mcp.NewToolResultError(sanitize.Clean(provider.WrapError(err).Error())), nil
	}

	msg, err := s.remote.Evaluate(ctx, url, &checks)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %s", sanitize.Clean(err.Error()))), nil
	}
	return jsonResult(newEvaluateOutput(msg.Verdict, url))
}

func (s *Server) handleGetBuildHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := request.GetString("project", "")
	if project == "" {
		return mcp.NewToolResultError("project parameter is required"), nil
	}
	if s.store == nil {
		return mcp.NewToolResultError("no build store configured"), nil
	}

	limit := request.GetInt("limit", defaultHistoryLimit)
	entries, err := store.ListEntries(ctx, s.store, project, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := HistoryOutput{Project: project, Builds: make([]HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		b := e.Build
		entry := HistoryEntry{
			Number:      b.Number,
			Outcome:     b.Outcome,
			URL:         b.URL,
			CompletedAt: b.CompletedAt,
			Warnings:    b.Warnings,
		}
		if b.Coverage != nil {
			entry.Coverage = b.Coverage.Percentages
		}
		if e.Verdict != nil {
			failed := e.Verdict.BuildShouldFail
			entry.Failed = &failed
		}
		out.Builds = append(out.Builds, entry)
	}
	return jsonResult(out)
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("no build store configured"), nil
	}
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list projects: %v", err)), nil
	}
	if projects == nil {
		projects = []string{}
	}
	return jsonResult(map[string][]string{"projects": projects})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
