// Package pipeline wires the ingest and analyze agents together. It is used
// by the CLI, the agent command and the MCP server.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"regcheck/src/analyze"
	"regcheck/src/broker"
	"regcheck/src/config"
	"regcheck/src/contracts"
	"regcheck/src/ingest"
	"regcheck/src/logger"
	"regcheck/src/store"
)

// Mode says where the agents run.
type Mode int

const (
	// LocalMode runs both agents in this process over an in-memory broker.
	LocalMode Mode = iota
	// DistributedMode talks to agents through Redpanda.
	DistributedMode
)

func (m Mode) String() string {
	if m == DistributedMode {
		return "distributed"
	}
	return "local"
}

// DetectMode picks distributed mode when broker addresses are configured.
func DetectMode(cfg config.BrokerConfig) Mode {
	if len(cfg.Addresses()) > 0 {
		return DistributedMode
	}
	return LocalMode
}

// Options configures the agents started by Start.
type Options struct {
	Resolver ingest.Resolver
	Store    store.Store
	Checks   contracts.CheckConfiguration
	Depth    int
	Logger   logger.Logger
}

// Start starts the ingest and analyze agents as goroutines. They stop when
// ctx ends.
func Start(ctx context.Context, brk broker.Broker, opts Options) {
	log := opts.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}

	ingestAgent := ingest.NewAgent(brk, opts.Resolver, opts.Checks, opts.Depth, log)
	go func() {
		if err := ingestAgent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("[Pipeline] Ingest agent error: %v", err)
		}
	}()

	evaluator := analyze.NewEvaluator(opts.Store, opts.Checks, opts.Depth, log)
	analyzeAgent := analyze.NewAgent(brk, evaluator, log)
	go func() {
		if err := analyzeAgent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("[Pipeline] Analyze agent error: %v", err)
		}
	}()
}

// Pipeline submits evaluation requests and waits for their verdicts.
type Pipeline struct {
	broker broker.Broker
	store  store.Store
	mode   Mode
	cancel context.CancelFunc
}

// New opens the configured broker and store. In local mode the agents are
// started in this process.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Pipeline, error) {
	brk, err := broker.Open(cfg.Broker, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open broker: %w", err)
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		brk.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	p := &Pipeline{broker: brk, store: st, mode: DetectMode(cfg.Broker)}
	if p.mode == LocalMode {
		p.StartAgents(Options{
			Resolver: ingest.TokenResolver(cfg.ProviderToken),
			Store:    st,
			Checks:   cfg.CheckConfig(),
			Depth:    cfg.History.Depth,
			Logger:   log,
		})
	}
	return p, nil
}

// NewWithBroker wraps an existing broker and store. Agents are not started.
func NewWithBroker(brk broker.Broker, st store.Store) *Pipeline {
	return &Pipeline{broker: brk, store: st, mode: LocalMode}
}

// StartAgents runs both agents until Close.
func (p *Pipeline) StartAgents(opts Options) {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	Start(ctx, p.broker, opts)
}

// Mode reports where the agents run.
func (p *Pipeline) Mode() Mode { return p.mode }

// Store returns the build history store.
func (p *Pipeline) Store() store.Store { return p.store }

func (p *Pipeline) publish(ctx context.Context, requestID, buildURL string, checks *contracts.CheckConfiguration) error {
	request := contracts.EvaluationRequest{
		RequestID: requestID,
		BuildURL:  buildURL,
		Checks:    checks,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := p.broker.Publish(ctx, contracts.TopicRequests, requestID, data); err != nil {
		return fmt.Errorf("failed to publish request: %w", err)
	}
	return nil
}

// Evaluate submits buildURL and blocks until its verdict arrives or ctx ends.
// A nil checks leaves the choice of checks to the ingest agent.
func (p *Pipeline) Evaluate(ctx context.Context, buildURL string, checks *contracts.CheckConfiguration) (*contracts.VerdictMessage, error) {
	requestID := "req-" + uuid.NewString()

	// Subscribe first so the verdict cannot be missed.
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	verdicts, err := p.broker.Subscribe(subCtx, contracts.TopicVerdicts, "regcheck-"+requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicVerdicts, err)
	}

	if err := p.publish(ctx, requestID, buildURL, checks); err != nil {
		return nil, err
	}

	for {
		select {
		case msg, ok := <-verdicts:
			if !ok {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, broker.ErrClosed
			}

			var out contracts.VerdictMessage
			if err := json.Unmarshal(msg.Value, &out); err != nil || out.RequestID != requestID {
				continue
			}
			if out.Error != "" {
				return &out, errors.New(out.Error)
			}
			return &out, nil

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close stops local agents and releases the broker and store.
func (p *Pipeline) Close() error {
	if p.cancel != nil {
		p.cancel()
	}
	err := p.broker.Close()
	if p.store != nil {
		if serr := p.store.Close(); err == nil {
			err = serr
		}
	}
	return err
}
