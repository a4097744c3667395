package broker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by operations on a closed broker.
var ErrClosed = errors.New("broker is closed")

const subscriberBuffer = 100

// InMemoryBroker delivers every published message to every live subscriber
// of the topic. It runs both agents inside one process.
type InMemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	offsets     map[string]int64
	closed      bool
	done        chan struct{}
	closeOnce   sync.Once
}

type subscriber struct {
	ch chan Message
	// gone is closed once the subscriber's context ends, before its channel
	// is removed, so that blocked publishers let go of it.
	gone chan struct{}
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subscribers: make(map[string]map[*subscriber]struct{}),
		offsets:     make(map[string]int64),
		done:        make(chan struct{}),
	}
}

// Publish hands value to every subscriber of topic, waiting while a
// subscriber's buffer is full.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	offset := b.offsets[topic]
	b.offsets[topic]++
	b.mu.Unlock()

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    offset,
		Timestamp: time.Now().UnixMilli(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers[topic] {
		select {
		case sub.ch <- msg:
		case <-sub.gone:
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return ErrClosed
		}
	}
	return nil
}

// Subscribe registers a new subscriber on topic. groupID is ignored: every
// subscriber sees every message.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := &subscriber{
		ch:   make(chan Message, subscriberBuffer),
		gone: make(chan struct{}),
	}
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*subscriber]struct{})
	}
	b.subscribers[topic][sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			close(sub.gone)
			b.unsubscribe(topic, sub)
		case <-b.done:
		}
	}()

	return sub.ch, nil
}

func (b *InMemoryBroker) unsubscribe(topic string, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[topic][sub]; !ok {
		return
	}
	delete(b.subscribers[topic], sub)
	close(sub.ch)
}

// Close closes every subscriber channel. Further calls are no-ops.
func (b *InMemoryBroker) Close() error {
	// Publishers blocked on a full subscriber hold the read lock until done
	// is closed.
	b.closeOnce.Do(func() { close(b.done) })

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	for topic, subs := range b.subscribers {
		for sub := range subs {
			close(sub.ch)
		}
		delete(b.subscribers, topic)
	}
	return nil
}
