package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"

	"github.com/wms-platform/transfers/pkg/logging"
)

// EventFactory creates CloudEvents for a single source
type EventFactory struct {
	source string
	now    func() time.Time
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source, now: time.Now}
}

// CreateEvent creates a new event, copying correlation, session and trace context from ctx
func (f *EventFactory) CreateEvent(ctx context.Context, eventType, subject string, data interface{}) *TransferCloudEvent {
	event := &TransferCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            f.now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}

	if v, ok := ctx.Value(logging.CorrelationIDKey).(string); ok {
		event.CorrelationID = v
	}
	if v, ok := ctx.Value(logging.SessionIDKey).(string); ok {
		event.SessionID = v
	}

	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)
	event.TraceParent = carrier.Get("traceparent")
	event.TraceState = carrier.Get("tracestate")

	return event
}

// CreateProductResolutionRequestedEvent creates the event for one chunk of product ids
func (f *EventFactory) CreateProductResolutionRequestedEvent(ctx context.Context, productIDs []string) *TransferCloudEvent {
	ids := make([]string, len(productIDs))
	copy(ids, productIDs)

	subject := "products"
	if len(ids) > 0 {
		subject = "products/" + ids[0]
	}

	return f.CreateEvent(ctx, ProductResolutionRequested, subject, ProductResolutionRequestedData{
		ProductIDs: ids,
		ChunkSize:  len(ids),
	})
}
