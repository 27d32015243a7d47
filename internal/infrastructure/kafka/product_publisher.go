package kafka

import (
	"context"
	"time"

	"github.com/wms-platform/transfers/pkg/cloudevents"
	"github.com/wms-platform/transfers/pkg/kafka"
)

// EventPublisher publishes CloudEvents to a topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.TransferCloudEvent) error
}

// PublishMetrics records Kafka publish outcomes
type PublishMetrics interface {
	RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration)
}

// ProductRequestPublisher resolves products by emitting one resolution request event per chunk.
type ProductRequestPublisher struct {
	producer EventPublisher
	factory  *cloudevents.EventFactory
	topic    string
	metrics  PublishMetrics
}

// NewProductRequestPublisher creates a new publisher. An empty topic selects the default product requests topic.
func NewProductRequestPublisher(producer EventPublisher, factory *cloudevents.EventFactory, topic string, metrics PublishMetrics) *ProductRequestPublisher {
	if topic == "" {
		topic = kafka.Topics.ProductRequests
	}
	return &ProductRequestPublisher{
		producer: producer,
		factory:  factory,
		topic:    topic,
		metrics:  metrics,
	}
}

// ResolveProducts publishes a ProductResolutionRequested event for the given product ids.
func (p *ProductRequestPublisher) ResolveProducts(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}

	event := p.factory.CreateProductResolutionRequestedEvent(ctx, productIDs)

	start := time.Now()
	err := p.producer.PublishEvent(ctx, p.topic, event)
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(p.topic, event.Type, err == nil, time.Since(start))
	}
	return err
}
