// Package broker defines the interface for message brokers and provides implementations.
package broker

import (
	"context"

	"regcheck/src/config"
	"regcheck/src/logger"
)

// Broker abstracts message publishing and consumption.
// This interface supports both in-memory and distributed (Redpanda/Kafka) implementations.
type Broker interface {
	// Publish sends a message to a topic with an optional key for partitioning.
	// For in-memory broker, key is only carried along.
	// For Redpanda/Kafka, key is used for partition assignment.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel for consuming messages from a topic. The
	// channel is closed when ctx ends or the broker closes.
	// groupID is used for consumer group coordination in Kafka.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message represents a consumed message from a broker.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}

// Open returns a Redpanda broker when seed addresses are configured and an
// in-memory broker otherwise.
func Open(cfg config.BrokerConfig, log logger.Logger) (Broker, error) {
	if addrs := cfg.Addresses(); len(addrs) > 0 {
		return NewRedpandaBroker(addrs, log)
	}
	return NewInMemoryBroker(), nil
}
