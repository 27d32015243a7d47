package domain

// Grouping keys understood by the order search index.
const (
	GroupByOrder                      = "orderId"
	GroupByOriginFacilityProduct      = "originFacilityProductId"
	GroupByDestinationFacilityProduct = "destinationFacilityProductId"
)

// DefaultViewSize is the page size used when the stored query has none.
const DefaultViewSize = 20

// AppliedFilters are the user-selected filters of the order list.
type AppliedFilters struct {
	Statuses              []string `json:"statuses,omitempty"`
	OriginFacilities      []string `json:"originFacilities,omitempty"`
	DestinationFacilities []string `json:"destinationFacilities,omitempty"`
	Carriers              []string `json:"carriers,omitempty"`
	ShipmentMethods       []string `json:"shipmentMethods,omitempty"`
	ProductStores         []string `json:"productStores,omitempty"`
	DateFrom              string   `json:"dateFrom,omitempty"`
	DateTo                string   `json:"dateTo,omitempty"`
}

// OrderQuery is the stored search state of an order list session.
type OrderQuery struct {
	AppliedFilters
	QueryString string `json:"queryString,omitempty"`
	Start       int    `json:"start"`
	ViewSize    int    `json:"viewSize"`
	GroupBy     string `json:"groupBy"`
	Sort        string `json:"sort,omitempty"`
	FetchFacets bool   `json:"fetchFacets,omitempty"`
}

// DefaultOrderQuery returns the query a new session starts with.
func DefaultOrderQuery() OrderQuery {
	return OrderQuery{
		ViewSize: DefaultViewSize,
		GroupBy:  GroupByOrder,
		Sort:     "orderDate desc",
	}
}

// IsProductGrouped reports whether groups are keyed by facility and product.
func (q OrderQuery) IsProductGrouped() bool {
	return q.GroupBy == GroupByOriginFacilityProduct || q.GroupBy == GroupByDestinationFacilityProduct
}

// FindOrdersParams are per-call overrides of the stored query.
type FindOrdersParams struct {
	Start           *int    `json:"start,omitempty"`
	ViewSize        *int    `json:"viewSize,omitempty"`
	ViewIndex       *int    `json:"viewIndex,omitempty"`
	QueryString     *string `json:"queryString,omitempty"`
	IsFilterUpdated bool    `json:"isFilterUpdated,omitempty"`
}

// Merge returns a copy of q with the overrides of p applied. An explicit start wins
// over a view index; a view index alone starts at viewIndex*viewSize.
func (q OrderQuery) Merge(p FindOrdersParams) OrderQuery {
	merged := q
	if p.ViewSize != nil {
		merged.ViewSize = *p.ViewSize
	}
	if p.QueryString != nil {
		merged.QueryString = *p.QueryString
	}
	switch {
	case p.Start != nil:
		merged.Start = *p.Start
	case p.ViewIndex != nil:
		merged.Start = *p.ViewIndex * merged.ViewSize
	}
	if merged.Start < 0 {
		merged.Start = 0
	}
	return merged
}

// ViewIndexValue returns the view index, treating absent as 0.
func (p FindOrdersParams) ViewIndexValue() int {
	if p.ViewIndex == nil {
		return 0
	}
	return *p.ViewIndex
}

// OrderStatus is a status id with its display description.
type OrderStatus struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// Customer of an order.
type Customer struct {
	Name        string `json:"name,omitempty"`
	EmailID     string `json:"emailId,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// FacilityRef identifies a facility by id and name.
type FacilityRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// OrderItemRow is one item document of an order group.
type OrderItemRow struct {
	OrderID        string   `json:"orderId"`
	OrderItemSeqID string   `json:"orderItemSeqId"`
	ProductID      string   `json:"productId,omitempty"`
	Quantity       *float64 `json:"quantity,omitempty"`
	ShippedQty     *float64 `json:"shippedQty,omitempty"`
	ReceivedQty    *float64 `json:"receivedQty,omitempty"`
}

// Key returns the item identity key.
func (r OrderItemRow) Key() string {
	return ItemKey(r.OrderID, r.OrderItemSeqID)
}

// ApplyStat copies shipped and received quantities from stats when the item is known.
func (r *OrderItemRow) ApplyStat(stats ItemStats) {
	if stat, ok := stats.Lookup(r.Key()); ok {
		r.ShippedQty = stat.ShippedQty
		r.ReceivedQty = stat.ReceivedQty
	}
}

// OrderSummary is one group of the order list.
type OrderSummary struct {
	GroupValue           string         `json:"groupValue"`
	OrderID              string         `json:"orderId"`
	OrderName            string         `json:"orderName,omitempty"`
	OrderDate            string         `json:"orderDate,omitempty"`
	Status               OrderStatus    `json:"status"`
	Customer             Customer       `json:"customer"`
	OriginFacility       FacilityRef    `json:"originFacility"`
	DestinationFacility  FacilityRef    `json:"destinationFacility"`
	ProductID            string         `json:"productId,omitempty"`
	ShipmentMethodTypeID string         `json:"shipmentMethodTypeId,omitempty"`
	Items                []OrderItemRow `json:"items"`
	TotalOrdered         float64        `json:"totalOrdered"`
	TotalShipped         float64        `json:"totalShipped"`
	TotalReceived        float64        `json:"totalReceived"`
}

// ComputeTotals sets the totals to the field-wise sums over the items. Missing values count as 0.
func (o *OrderSummary) ComputeTotals() {
	o.TotalOrdered, o.TotalShipped, o.TotalReceived = 0, 0, 0
	for _, item := range o.Items {
		o.TotalOrdered += valueOrZero(item.Quantity)
		o.TotalShipped += valueOrZero(item.ShippedQty)
		o.TotalReceived += valueOrZero(item.ReceivedQty)
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// OrderList is the cached result of the order list.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	OrderCount int            `json:"orderCount"`
	ItemCount  int            `json:"itemCount"`
}

// Clone returns a copy whose order slice can be appended to without aliasing l.
func (l OrderList) Clone() OrderList {
	orders := make([]OrderSummary, len(l.Orders))
	copy(orders, l.Orders)
	l.Orders = orders
	return l
}
