package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wms-platform/transfers/pkg/cloudevents"
)

// MessageWriter is the subset of *kafka.Writer the producer needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes CloudEvents to Kafka topics, one writer per topic
type Producer struct {
	mu        sync.Mutex
	writers   map[string]MessageWriter
	config    *Config
	newWriter func(topic string) MessageWriter
}

// NewProducer creates a new Kafka producer
func NewProducer(config *Config) *Producer {
	p := &Producer{
		writers: make(map[string]MessageWriter),
		config:  config,
	}
	p.newWriter = p.kafkaWriter
	return p
}

// NewProducerWithWriter creates a producer that routes every topic to the given writer.
func NewProducerWithWriter(config *Config, writer MessageWriter) *Producer {
	p := NewProducer(config)
	p.newWriter = func(string) MessageWriter { return writer }
	return p
}

func (p *Producer) kafkaWriter(topic string) MessageWriter {
	return &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		WriteTimeout: p.config.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		Async:        false,
	}
}

func (p *Producer) getWriter(topic string) MessageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}
	writer := p.newWriter(topic)
	p.writers[topic] = writer
	return writer
}

// PublishEvent publishes a CloudEvent to the specified topic
func (p *Producer) PublishEvent(ctx context.Context, topic string, event *cloudevents.TransferCloudEvent) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}

	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to topic %s: %w", topic, err)
	}
	return nil
}

func toMessage(event *cloudevents.TransferCloudEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Subject),
		Value: data,
		Headers: []kafka.Header{
			{Key: "ce-specversion", Value: []byte(event.SpecVersion)},
			{Key: "ce-type", Value: []byte(event.Type)},
			{Key: "ce-source", Value: []byte(event.Source)},
			{Key: "ce-id", Value: []byte(event.ID)},
			{Key: "ce-time", Value: []byte(event.Time.Format(time.RFC3339))},
			{Key: "content-type", Value: []byte(event.DataContentType)},
		},
		Time: event.Time,
	}

	optional := []struct{ key, value string }{
		{"ce-transferscorrelationid", event.CorrelationID},
		{"ce-transferssessionid", event.SessionID},
		{"ce-traceparent", event.TraceParent},
		{"ce-tracestate", event.TraceState},
	}
	for _, h := range optional {
		if h.value != "" {
			msg.Headers = append(msg.Headers, kafka.Header{Key: h.key, Value: []byte(h.value)})
		}
	}

	return msg, nil
}

// Close closes all writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close writer for topic %s: %w", topic, err)
		}
	}
	return lastErr
}
