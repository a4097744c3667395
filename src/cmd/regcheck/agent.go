package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"regcheck/src/broker"
	"regcheck/src/ingest"
	"regcheck/src/mcp"
	"regcheck/src/pipeline"
)

func newAgentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Run the ingest and analyze agents against Redpanda",
		Long: `Consumes evaluation requests from regcheck.requests, collects builds from
their CI provider, evaluates them against the history store and publishes
verdicts to regcheck.verdicts. Runs until interrupted.

Requires broker.brokers (REDPANDA_BROKERS).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgents(cmd.Context(), a)
		},
	}
}

// runAgents blocks until ctx ends.
func runAgents(ctx context.Context, a *app) error {
	if pipeline.DetectMode(a.cfg.Broker) != pipeline.DistributedMode {
		return errors.New("broker.brokers (REDPANDA_BROKERS) is required to run agents")
	}

	brk, err := broker.Open(a.cfg.Broker, a.log)
	if err != nil {
		return fmt.Errorf("failed to create broker: %w", err)
	}
	defer brk.Close()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	a.log.Info("Starting regcheck agents (brokers: %v, store: %s)", a.cfg.Broker.Addresses(), a.cfg.Store.Driver)
	pipeline.Start(ctx, brk, pipeline.Options{
		Resolver: ingest.TokenResolver(a.cfg.ProviderToken),
		Store:    st,
		Checks:   a.cfg.CheckConfig(),
		Depth:    a.cfg.History.Depth,
		Logger:   a.log,
	})

	<-ctx.Done()
	a.log.Info("Shutdown signal received, agents stopped")
	return nil
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve regression checks and build history over MCP (stdio)",
		Long: `Starts a Model Context Protocol server on stdin/stdout with the tools
evaluate_build, get_build_history and list_projects.

Build URLs are evaluated through the agents; recorded builds are evaluated
directly against the history store.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{quietAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.New(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer p.Close()

			return mcp.NewServer(p.Store(), p, a.cfg.CheckConfig(), a.cfg.History.Depth).Run()
		},
	}
}
