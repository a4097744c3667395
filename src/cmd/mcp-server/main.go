// Package main provides the MCP server entry point for regcheck. The server
// speaks the Model Context Protocol over stdin/stdout, so nothing else may
// write to stdout.
package main

import (
	"context"
	"fmt"
	"os"

	"regcheck/src/config"
	"regcheck/src/logger"
	"regcheck/src/mcp"
	"regcheck/src/pipeline"

	_ "regcheck/src/buildkite"
	_ "regcheck/src/githubactions"
)

func main() {
	v, err := config.NewViper(os.Getenv("REGCHECK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	p, err := pipeline.New(context.Background(), cfg, logger.NewSilentLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	if err := mcp.NewServer(p.Store(), p, cfg.CheckConfig(), cfg.History.Depth).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}
