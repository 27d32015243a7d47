package domain

// SearchResponse is a grouped, faceted order search result.
type SearchResponse struct {
	Grouped map[string]*GroupResult `json:"grouped,omitempty"`
	Facets  map[string]Facet        `json:"facets,omitempty"`
}

// GroupResult is the group container for one grouping key.
type GroupResult struct {
	NGroups int           `json:"ngroups"`
	Matches int           `json:"matches"`
	Groups  []SearchGroup `json:"groups"`
}

// SearchGroup is one cluster of documents sharing a group value.
type SearchGroup struct {
	GroupValue string  `json:"groupValue"`
	DocList    DocList `json:"doclist"`
}

// DocList holds the documents of a group.
type DocList struct {
	NumFound int        `json:"numFound"`
	Docs     []OrderDoc `json:"docs"`
}

// OrderDoc is one order item document of the search index.
type OrderDoc struct {
	OrderID              string   `json:"orderId"`
	OrderItemSeqID       string   `json:"orderItemSeqId"`
	OrderName            string   `json:"orderName,omitempty"`
	OrderDate            string   `json:"orderDate,omitempty"`
	OrderStatusID        string   `json:"orderStatusId,omitempty"`
	OrderStatusDesc      string   `json:"orderStatusDesc,omitempty"`
	CustomerPartyName    string   `json:"customerPartyName,omitempty"`
	CustomerEmailID      string   `json:"customerEmailId,omitempty"`
	CustomerPhoneNumber  string   `json:"customerPhoneNumber,omitempty"`
	FacilityID           string   `json:"facilityId,omitempty"`
	FacilityName         string   `json:"facilityName,omitempty"`
	OrderFacilityID      string   `json:"orderFacilityId,omitempty"`
	OrderFacilityName    string   `json:"orderFacilityName,omitempty"`
	ProductID            string   `json:"productId,omitempty"`
	ProductStoreID       string   `json:"productStoreId,omitempty"`
	CarrierPartyID       string   `json:"carrierPartyId,omitempty"`
	ShipmentMethodTypeID string   `json:"shipmentMethodTypeId,omitempty"`
	Quantity             *float64 `json:"quantity,omitempty"`
}

// Facet is a facet result with its buckets.
type Facet struct {
	Buckets []FacetBucket `json:"buckets"`
}

// FacetBucket is one facet value with its document count.
type FacetBucket struct {
	Val   string `json:"val"`
	Count int    `json:"count"`
}

// SummaryFromGroup builds an order summary from a search group. Representative fields come
// from the first document; every document becomes an item row. The product id is only set
// for product-grouped queries.
func SummaryFromGroup(group SearchGroup, productGrouped bool) OrderSummary {
	summary := OrderSummary{
		GroupValue: group.GroupValue,
		Items:      make([]OrderItemRow, 0, len(group.DocList.Docs)),
	}
	if len(group.DocList.Docs) == 0 {
		return summary
	}

	first := group.DocList.Docs[0]
	summary.OrderID = first.OrderID
	summary.OrderName = first.OrderName
	summary.OrderDate = first.OrderDate
	summary.Status = OrderStatus{ID: first.OrderStatusID, Description: first.OrderStatusDesc}
	summary.Customer = Customer{
		Name:        first.CustomerPartyName,
		EmailID:     first.CustomerEmailID,
		PhoneNumber: first.CustomerPhoneNumber,
	}
	summary.OriginFacility = FacilityRef{ID: first.FacilityID, Name: first.FacilityName}
	summary.DestinationFacility = FacilityRef{ID: first.OrderFacilityID, Name: first.OrderFacilityName}
	summary.ShipmentMethodTypeID = first.ShipmentMethodTypeID
	if productGrouped {
		summary.ProductID = first.ProductID
	}

	for _, doc := range group.DocList.Docs {
		summary.Items = append(summary.Items, OrderItemRow{
			OrderID:        doc.OrderID,
			OrderItemSeqID: doc.OrderItemSeqID,
			ProductID:      doc.ProductID,
			Quantity:       doc.Quantity,
		})
	}
	return summary
}
