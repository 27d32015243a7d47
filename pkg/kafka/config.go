package kafka

import (
	"time"
)

// Config holds Kafka producer configuration
type Config struct {
	Brokers  []string
	ClientID string

	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "transfers-order-view",
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
		WriteTimeout: 10 * time.Second,
	}
}

// Topics contains the Kafka topic names used by the service
var Topics = struct {
	ProductRequests string
}{
	ProductRequests: "transfers.product-requests",
}
