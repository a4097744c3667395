package broker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"regcheck/src/config"
)

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed while waiting for message")
		}
		return msg
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for message")
	}
	return Message{}
}

func TestInMemoryBroker_PublishSubscribe(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	msgChan, err := broker.Subscribe(ctx, "test-topic", "test-group")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := broker.Publish(ctx, "test-topic", "test-key", []byte("test message")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	msg := receive(t, msgChan)
	if msg.Topic != "test-topic" || msg.Key != "test-key" || string(msg.Value) != "test message" {
		t.Errorf("received %+v", msg)
	}
}

func TestInMemoryBroker_OffsetsPerTopic(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	ch, _ := broker.Subscribe(ctx, "a", "g")

	for i := 0; i < 3; i++ {
		if err := broker.Publish(ctx, "a", "k", []byte("v")); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}
	for want := int64(0); want < 3; want++ {
		if msg := receive(t, ch); msg.Offset != want {
			t.Errorf("Offset = %d, want %d", msg.Offset, want)
		}
	}
}

func TestInMemoryBroker_MultipleSubscribers(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	sub1, _ := broker.Subscribe(ctx, "test-topic", "group1")
	sub2, _ := broker.Subscribe(ctx, "test-topic", "group2")

	if err := broker.Publish(ctx, "test-topic", "key", []byte("broadcast message")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for i, sub := range []<-chan Message{sub1, sub2} {
		if msg := receive(t, sub); string(msg.Value) != "broadcast message" {
			t.Errorf("Subscriber %d: got %s", i+1, msg.Value)
		}
	}
}

func TestInMemoryBroker_TopicIsolation(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	chA, _ := broker.Subscribe(ctx, "topic-a", "g")
	chB, _ := broker.Subscribe(ctx, "topic-b", "g")

	if err := broker.Publish(ctx, "topic-a", "", []byte("for a")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	receive(t, chA)

	select {
	case msg := <-chB:
		t.Errorf("topic-b should not receive a message, got %q", msg.Value)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestInMemoryBroker_ContextCancelClosesChannel(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := broker.Subscribe(ctx, "topic", "g")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("channel not closed after context cancel")
	}

	// Publishing to a topic without live subscribers still succeeds.
	if err := broker.Publish(context.Background(), "topic", "", []byte("x")); err != nil {
		t.Errorf("Publish failed: %v", err)
	}
}

func TestInMemoryBroker_CloseUnblocksPublisher(t *testing.T) {
	broker := NewInMemoryBroker()

	ctx := context.Background()
	if _, err := broker.Subscribe(ctx, "full", "g"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	for i := 0; i < subscriberBuffer; i++ {
		if err := broker.Publish(ctx, "full", "", []byte("x")); err != nil {
			t.Fatalf("Publish %d failed: %v", i, err)
		}
	}

	errc := make(chan error, 1)
	go func() { errc <- broker.Publish(ctx, "full", "", []byte("blocked")) }()

	time.Sleep(50 * time.Millisecond)
	broker.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("blocked Publish returned %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not unblock publisher")
	}
}

func TestInMemoryBroker_ClosedBroker(t *testing.T) {
	broker := NewInMemoryBroker()
	ch, _ := broker.Subscribe(context.Background(), "test", "group")
	broker.Close()
	broker.Close()

	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed")
	}
	if err := broker.Publish(context.Background(), "test", "key", []byte("value")); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after close = %v, want ErrClosed", err)
	}
	if _, err := broker.Subscribe(context.Background(), "test", "group"); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after close = %v, want ErrClosed", err)
	}
}

func TestInMemoryBroker_ConcurrentPublishSubscribe(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = broker.Publish(ctx, "concurrent-topic", "", []byte("msg"))
			}
		}()
		go func() {
			defer wg.Done()
			subCtx, subCancel := context.WithCancel(ctx)
			ch, err := broker.Subscribe(subCtx, "concurrent-topic", "g")
			if err == nil {
				go func() {
					for range ch {
					}
				}()
			}
			subCancel()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout - possible deadlock in concurrent access")
	}
}

func TestOpen_SelectsBroker(t *testing.T) {
	b, err := Open(config.BrokerConfig{}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()
	if _, ok := b.(*InMemoryBroker); !ok {
		t.Errorf("Open() with no brokers = %T, want *InMemoryBroker", b)
	}
}

func TestNewRedpandaBroker_RequiresAddress(t *testing.T) {
	if _, err := NewRedpandaBroker(nil, nil); err == nil {
		t.Error("NewRedpandaBroker() without addresses should fail")
	}
}
