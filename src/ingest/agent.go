// Package ingest collects builds and their reports from CI providers and
// hands them to the analyze agent.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"regcheck/src/broker"
	"regcheck/src/contracts"
	"regcheck/src/logger"
)

// Agent consumes evaluation requests and publishes collected builds.
type Agent struct {
	broker    broker.Broker
	collector *Collector
	resolve   Resolver
	checks    contracts.CheckConfiguration
	depth     int
	logger    logger.Logger
}

// NewAgent creates a new ingest agent. Every published build carries checks
// and up to depth earlier builds.
func NewAgent(brk broker.Broker, resolve Resolver, checks contracts.CheckConfiguration, depth int, log logger.Logger) *Agent {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Agent{
		broker:    brk,
		collector: NewCollector(log),
		resolve:   resolve,
		checks:    checks,
		depth:     depth,
		logger:    log,
	}
}

// Run subscribes to regcheck.requests and processes requests until ctx ends.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("[IngestAgent] Starting...")

	msgChan, err := a.broker.Subscribe(ctx, contracts.TopicRequests, "regcheck-ingest")
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicRequests, err)
	}

	a.logger.Info("[IngestAgent] Listening for requests on '%s' topic...", contracts.TopicRequests)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("[IngestAgent] Message channel closed, shutting down")
				return nil
			}
			if err := a.processRequest(ctx, msg); err != nil {
				a.logger.Error("[IngestAgent] Error processing request: %v", err)
			}

		case <-ctx.Done():
			a.logger.Info("[IngestAgent] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

func (a *Agent) processRequest(ctx context.Context, msg broker.Message) error {
	var request contracts.EvaluationRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		return fmt.Errorf("failed to unmarshal request: %w", err)
	}

	a.logger.Info("[IngestAgent] Processing request %s (%s)", request.RequestID, request.BuildURL)

	collected, err := a.collector.CollectURL(ctx, a.resolve, request.BuildURL, a.depth)
	if err != nil {
		a.publishFailure(ctx, request, err)
		return fmt.Errorf("request %s: %w", request.RequestID, err)
	}

	checks := a.checks
	if request.Checks != nil {
		checks = *request.Checks
	}
	completed := contracts.BuildCompleted{
		RequestID: request.RequestID,
		Build:     collected.Build,
		Checks:    &checks,
		History:   collected.History,
	}
	data, err := json.Marshal(completed)
	if err != nil {
		return fmt.Errorf("failed to marshal build: %w", err)
	}

	if err := a.broker.Publish(ctx, contracts.TopicBuildsCompleted, completed.Build.Project, data); err != nil {
		return fmt.Errorf("failed to publish build: %w", err)
	}

	a.logger.Info("[IngestAgent] Published %s #%d with %d earlier builds",
		completed.Build.Project, completed.Build.Number, len(completed.History))
	return nil
}

// publishFailure tells whoever waits on the request that no verdict will come.
func (a *Agent) publishFailure(ctx context.Context, request contracts.EvaluationRequest, cause error) {
	data, err := json.Marshal(contracts.VerdictMessage{
		RequestID: request.RequestID,
		BuildURL:  request.BuildURL,
		Error:     cause.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		a.logger.Error("[IngestAgent] Failed to marshal failure: %v", err)
		return
	}
	if err := a.broker.Publish(ctx, contracts.TopicVerdicts, request.RequestID, data); err != nil {
		a.logger.Error("[IngestAgent] Failed to publish failure: %v", err)
	}
}
