package analyze

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"regcheck/src/broker"
	"regcheck/src/contracts"
)

func TestAgent_PublishesVerdict(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brk := broker.NewInMemoryBroker()
	defer brk.Close()

	verdicts, err := brk.Subscribe(ctx, contracts.TopicVerdicts, "test-consumer")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	agent := NewAgent(brk, NewEvaluator(nil, contracts.DefaultCheckConfiguration(), 50, nil), nil)
	go agent.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	current := record(3, contracts.OutcomeSuccess, 8)
	current.URL = "https://buildkite.com/acme/api/builds/3"
	data, _ := json.Marshal(contracts.BuildCompleted{
		RequestID: "req-1",
		Build:     current,
		Checks:    pmdOnly(),
		History:   []contracts.BuildRecord{record(2, contracts.OutcomeSuccess, 5)},
	})
	if err := brk.Publish(ctx, contracts.TopicBuildsCompleted, "acme/api", data); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-verdicts:
		var out contracts.VerdictMessage
		if err := json.Unmarshal(msg.Value, &out); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if out.RequestID != "req-1" || out.BuildURL != current.URL {
			t.Errorf("message = %+v", out)
		}
		if !out.Verdict.BuildShouldFail || len(out.Verdict.LogLines) != 1 {
			t.Errorf("verdict = %+v", out.Verdict)
		}
		if _, err := time.Parse(time.RFC3339, out.Timestamp); err != nil {
			t.Errorf("Timestamp %q: %v", out.Timestamp, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for verdict")
	}
}

func TestAgent_InvalidMessage(t *testing.T) {
	agent := NewAgent(broker.NewInMemoryBroker(), NewEvaluator(nil, contracts.CheckConfiguration{}, 50, nil), nil)
	if err := agent.processBuild(context.Background(), broker.Message{Value: []byte("{")}); err == nil {
		t.Error("processBuild() should fail on invalid JSON")
	}
}

func TestAgent_StopsOnCancel(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()

	ctx, cancel := context.WithCancel(context.Background())
	agent := NewAgent(brk, NewEvaluator(nil, contracts.CheckConfiguration{}, 50, nil), nil)

	errc := make(chan error, 1)
	go func() { errc <- agent.Run(ctx) }()
	cancel()

	select {
	case <-errc:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
