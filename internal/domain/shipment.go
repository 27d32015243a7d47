package domain

// Shipment status ids used by the order views.
const (
	ShipmentStatusShipped   = "SHIPMENT_SHIPPED"
	ShipmentStatusCancelled = "SHIPMENT_CANCELLED"
)

// ShipmentHeaderViewSize bounds the number of shipment headers fetched per order.
const ShipmentHeaderViewSize = 200

// ShipmentFilter selects shipment headers of an order.
type ShipmentFilter struct {
	PrimaryOrderID string
	// StatusID keeps only shipments in this status.
	StatusID string
	// ExcludeStatusID drops shipments in this status.
	ExcludeStatusID string
	ViewSize        int
	Distinct        bool
}

// ShipmentHeader is the header record of a shipment.
type ShipmentHeader struct {
	ShipmentID           string `json:"shipmentId"`
	ShipmentTypeID       string `json:"shipmentTypeId,omitempty"`
	StatusID             string `json:"statusId,omitempty"`
	CarrierPartyID       string `json:"carrierPartyId,omitempty"`
	ShipmentMethodTypeID string `json:"shipmentMethodTypeId,omitempty"`
}

// ShipmentItem is an item packed into a shipment.
type ShipmentItem struct {
	ShipmentID        string   `json:"shipmentId"`
	ShipmentItemSeqID string   `json:"shipmentItemSeqId,omitempty"`
	ProductID         string   `json:"productId,omitempty"`
	Quantity          *float64 `json:"quantity,omitempty"`
	OrderID           string   `json:"orderId,omitempty"`
	OrderItemSeqID    string   `json:"orderItemSeqId,omitempty"`
}

// ShipmentRoute is a route segment carrying the carrier tracking number.
type ShipmentRoute struct {
	ShipmentID             string `json:"shipmentId"`
	ShipmentRouteSegmentID string `json:"shipmentRouteSegmentId,omitempty"`
	TrackingIDNumber       string `json:"trackingIdNumber,omitempty"`
	CarrierPartyID         string `json:"carrierPartyId,omitempty"`
}

// ShipmentSummary is a shipment header joined with its items, tracking code and shipped date.
type ShipmentSummary struct {
	ShipmentHeader
	Items        []ShipmentItem `json:"items"`
	TrackingCode string         `json:"trackingCode,omitempty"`
	ShippedDate  string         `json:"shippedDate,omitempty"`
}

// JoinShipments builds one summary per header. Items are matched by shipment id with a
// linear scan; every summary gets a non-nil item slice. The tracking code comes from the
// first matching route and the shipped date from statuses. nil sources are skipped.
func JoinShipments(headers []ShipmentHeader, items []ShipmentItem, routes []ShipmentRoute, statuses map[string]string) []ShipmentSummary {
	summaries := make([]ShipmentSummary, 0, len(headers))
	for _, header := range headers {
		summary := ShipmentSummary{ShipmentHeader: header, Items: []ShipmentItem{}}

		for _, item := range items {
			if item.ShipmentID == header.ShipmentID {
				summary.Items = append(summary.Items, item)
			}
		}

		for _, route := range routes {
			if route.ShipmentID == header.ShipmentID {
				summary.TrackingCode = route.TrackingIDNumber
				break
			}
		}

		if date, ok := statuses[header.ShipmentID]; ok {
			summary.ShippedDate = date
		}

		summaries = append(summaries, summary)
	}
	return summaries
}

// ShipmentIDs returns the ids of the headers in order.
func ShipmentIDs(headers []ShipmentHeader) []string {
	ids := make([]string, 0, len(headers))
	for _, h := range headers {
		ids = append(ids, h.ShipmentID)
	}
	return ids
}
