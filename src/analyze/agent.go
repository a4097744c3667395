// Package analyze provides the Analyze Agent. It consumes collected builds,
// evaluates them for regressions and publishes verdicts.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"regcheck/src/broker"
	"regcheck/src/contracts"
	"regcheck/src/logger"
)

// Agent consumes collected builds and publishes verdicts.
type Agent struct {
	broker    broker.Broker
	evaluator *Evaluator
	logger    logger.Logger
}

// NewAgent creates a new analyze agent.
func NewAgent(brk broker.Broker, evaluator *Evaluator, log logger.Logger) *Agent {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Agent{
		broker:    brk,
		evaluator: evaluator,
		logger:    log,
	}
}

// Run subscribes to regcheck.builds.completed and evaluates builds until ctx
// ends.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("[AnalyzeAgent] Starting...")

	msgChan, err := a.broker.Subscribe(ctx, contracts.TopicBuildsCompleted, "regcheck-analyze")
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicBuildsCompleted, err)
	}

	a.logger.Info("[AnalyzeAgent] Listening for builds on '%s' topic...", contracts.TopicBuildsCompleted)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("[AnalyzeAgent] Message channel closed, shutting down")
				return nil
			}
			if err := a.processBuild(ctx, msg); err != nil {
				a.logger.Error("[AnalyzeAgent] Error processing build: %v", err)
			}

		case <-ctx.Done():
			a.logger.Info("[AnalyzeAgent] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

func (a *Agent) processBuild(ctx context.Context, msg broker.Message) error {
	var completed contracts.BuildCompleted
	if err := json.Unmarshal(msg.Value, &completed); err != nil {
		return fmt.Errorf("failed to unmarshal build: %w", err)
	}

	a.logger.Debug("[AnalyzeAgent] Evaluating %s #%d", completed.Build.Project, completed.Build.Number)

	out := contracts.VerdictMessage{
		RequestID: completed.RequestID,
		BuildURL:  completed.Build.URL,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	key := completed.Build.Project

	verdict, evalErr := a.evaluator.Evaluate(ctx, completed)
	if evalErr != nil {
		out.Error = evalErr.Error()
		key = completed.RequestID
	} else {
		out.Verdict = verdict
		for _, line := range verdict.LogLines {
			a.logger.Info("[AnalyzeAgent] %s", line)
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}
	if err := a.broker.Publish(ctx, contracts.TopicVerdicts, key, data); err != nil {
		return fmt.Errorf("failed to publish verdict: %w", err)
	}
	if evalErr != nil {
		return fmt.Errorf("request %s: %w", completed.RequestID, evalErr)
	}

	a.logger.Info("[AnalyzeAgent] %s #%d: %d findings, fail=%v",
		verdict.Project, verdict.Number, len(verdict.Findings), verdict.BuildShouldFail)
	return nil
}
