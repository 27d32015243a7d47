package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/transfers/pkg/cloudevents"
	"github.com/wms-platform/transfers/pkg/kafka"
	"github.com/wms-platform/transfers/pkg/logging"
)

type captureWriter struct {
	mu       sync.Mutex
	messages []kafkago.Message
	err      error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

type publishRecord struct {
	topic     string
	eventType string
	success   bool
}

type fakePublishMetrics struct {
	records []publishRecord
}

func (m *fakePublishMetrics) RecordKafkaPublish(topic, eventType string, success bool, _ time.Duration) {
	m.records = append(m.records, publishRecord{topic, eventType, success})
}

func newPublisher(writer *captureWriter, metrics PublishMetrics) *ProductRequestPublisher {
	producer := kafka.NewProducerWithWriter(kafka.DefaultConfig(), writer)
	return NewProductRequestPublisher(producer, cloudevents.NewEventFactory(cloudevents.SourceTransferView), "", metrics)
}

func TestProductRequestPublisher_ResolveProducts(t *testing.T) {
	writer := &captureWriter{}
	metrics := &fakePublishMetrics{}
	publisher := newPublisher(writer, metrics)
	ctx := logging.ContextWithSessionID(context.Background(), "session-1")

	require.NoError(t, publisher.ResolveProducts(ctx, []string{"P1", "P2", "P3"}))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "products/P1", string(msg.Key))

	var event struct {
		Type      string                                     `json:"type"`
		SessionID string                                     `json:"transferssessionid"`
		Data      cloudevents.ProductResolutionRequestedData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, cloudevents.ProductResolutionRequested, event.Type)
	assert.Equal(t, "session-1", event.SessionID)
	assert.Equal(t, []string{"P1", "P2", "P3"}, event.Data.ProductIDs)
	assert.Equal(t, 3, event.Data.ChunkSize)

	assert.Equal(t, []publishRecord{{kafka.Topics.ProductRequests, cloudevents.ProductResolutionRequested, true}}, metrics.records)
}

func TestProductRequestPublisher_WriteFailure(t *testing.T) {
	writer := &captureWriter{err: errors.New("broker unavailable")}
	metrics := &fakePublishMetrics{}
	publisher := newPublisher(writer, metrics)

	err := publisher.ResolveProducts(context.Background(), []string{"P1"})

	assert.ErrorContains(t, err, "broker unavailable")
	require.Len(t, metrics.records, 1)
	assert.False(t, metrics.records[0].success)
}

func TestProductRequestPublisher_EmptyChunk(t *testing.T) {
	writer := &captureWriter{}
	publisher := newPublisher(writer, nil)

	require.NoError(t, publisher.ResolveProducts(context.Background(), nil))
	assert.Empty(t, writer.messages)
}
