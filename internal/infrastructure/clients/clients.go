package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/resilience"
)

var tracer = otel.Tracer("transfers/clients")

// DownstreamMetrics records downstream call outcomes
type DownstreamMetrics interface {
	RecordDownstream(downstream, operation string, success bool, duration time.Duration)
}

// StatusError is returned when a backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

// PayloadError is an application-level error carried in a 2xx response body.
type PayloadError struct {
	Message string
}

func (e *PayloadError) Error() string {
	return "backend reported error: " + e.Message
}

// ServiceClient provides HTTP client functionality for calling backends
type ServiceClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	metrics    DownstreamMetrics
	breaker    *resilience.CircuitBreaker
	service    string
}

// ClientConfig configures a ServiceClient
type ClientConfig struct {
	BaseURL string
	Service string
	Timeout time.Duration
}

// NewServiceClient creates a new service client. metrics and breaker may be nil.
func NewServiceClient(config ClientConfig, logger *logging.Logger, metrics DownstreamMetrics, breaker *resilience.CircuitBreaker) *ServiceClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServiceClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		logger:     logger,
		metrics:    metrics,
		breaker:    breaker,
		service:    config.Service,
	}
}

func (c *ServiceClient) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	start := time.Now()
	operation := method + " " + path

	ctx, span := tracer.Start(ctx, c.service+"."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", c.baseURL+path),
			attribute.String("service", c.service),
		),
	)
	defer span.End()

	call := func() (interface{}, error) {
		return nil, c.send(ctx, span, method, path, body, result)
	}

	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(ctx, call)
	} else {
		_, err = call()
	}

	if err != nil {
		span.RecordError(err)
	}
	c.record(ctx, operation, start, err)
	return err
}

func (c *ServiceClient) send(ctx context.Context, span trace.Span, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Inject trace context into outgoing request headers
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if err := payloadError(data); err != nil {
		return err
	}

	if result != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// payloadError detects the error envelopes the OMS returns with a 200 status:
// an "_ERROR_MESSAGE_" string, an "_ERROR_MESSAGE_LIST_" array or a non-empty "errors" field.
func payloadError(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var envelope struct {
		ErrorMessage     string            `json:"_ERROR_MESSAGE_"`
		ErrorMessageList []json.RawMessage `json:"_ERROR_MESSAGE_LIST_"`
		Errors           json.RawMessage   `json:"errors"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil
	}

	switch {
	case envelope.ErrorMessage != "":
		return &PayloadError{Message: envelope.ErrorMessage}
	case len(envelope.ErrorMessageList) > 0:
		return &PayloadError{Message: string(envelope.ErrorMessageList[0])}
	case hasErrors(envelope.Errors):
		return &PayloadError{Message: string(envelope.Errors)}
	}
	return nil
}

func hasErrors(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", "[]", "{}", `""`:
		return false
	}
	return true
}

func (c *ServiceClient) record(ctx context.Context, operation string, start time.Time, err error) {
	duration := time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordDownstream(c.service, operation, err == nil, duration)
	}
	if c.logger != nil {
		c.logger.Downstream(ctx, c.service, operation, duration, err)
	}
}
