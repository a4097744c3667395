// Package main provides the standalone agent binary for distributed mode.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"regcheck/src/broker"
	"regcheck/src/config"
	"regcheck/src/ingest"
	"regcheck/src/logger"
	"regcheck/src/pipeline"
	"regcheck/src/store"

	_ "regcheck/src/buildkite"
	_ "regcheck/src/githubactions"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if pipeline.DetectMode(cfg.Broker) != pipeline.DistributedMode {
		fmt.Fprintln(os.Stderr, "ERROR: REDPANDA_BROKERS environment variable is required for the agent")
		fmt.Fprintln(os.Stderr, "Example: export REDPANDA_BROKERS=localhost:19092")
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info("Starting regcheck agent")
	log.Info("Redpanda brokers: %v", cfg.Broker.Addresses())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	brk, err := broker.Open(cfg.Broker, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create broker: %v\n", err)
		os.Exit(1)
	}
	defer brk.Close()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s store: %v\n", cfg.Store.Driver, err)
		os.Exit(1)
	}
	defer st.Close()

	pipeline.Start(ctx, brk, pipeline.Options{
		Resolver: ingest.TokenResolver(cfg.ProviderToken),
		Store:    st,
		Checks:   cfg.CheckConfig(),
		Depth:    cfg.History.Depth,
		Logger:   log,
	})
	log.Info("Agents started, waiting for evaluation requests...")

	<-ctx.Done()
	log.Info("Shutdown signal received, agent stopped")
}
