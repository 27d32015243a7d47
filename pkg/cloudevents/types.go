package cloudevents

import (
	"time"
)

// Event types emitted by the transfer view service
const (
	ProductResolutionRequested = "transfers.product.resolution-requested"
)

// Event sources
const (
	SourceTransferView = "/transfers/order-view"
)

// TransferCloudEvent represents a CloudEvents v1.0 compliant event
type TransferCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	CorrelationID string `json:"transferscorrelationid,omitempty"`
	SessionID     string `json:"transferssessionid,omitempty"`

	// W3C trace context
	TraceParent string `json:"traceparent,omitempty"`
	TraceState  string `json:"tracestate,omitempty"`
}

// ProductResolutionRequestedData is the payload for one chunk of product ids to resolve.
type ProductResolutionRequestedData struct {
	ProductIDs []string `json:"productIds"`
	ChunkSize  int      `json:"chunkSize"`
}
