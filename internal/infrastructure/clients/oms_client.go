package clients

import (
	"context"
	"net/url"

	"github.com/wms-platform/transfers/internal/domain"
	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/resilience"
)

const (
	entityQueryPath = "/api/oms/entityData"
	itemStatsPath   = "/api/oms/transferOrders/itemStats"

	// entityViewSize bounds id-list lookups against the entity endpoint.
	entityViewSize = 500
)

// entityQuery is a generic OMS entity lookup.
type entityQuery struct {
	EntityName  string         `json:"entityName"`
	InputFields map[string]any `json:"inputFields"`
	FieldList   []string       `json:"fieldList,omitempty"`
	OrderBy     string         `json:"orderBy,omitempty"`
	ViewSize    int            `json:"viewSize"`
	Distinct    string         `json:"distinct,omitempty"`
}

type entityResponse[T any] struct {
	Docs  []T `json:"docs"`
	Count int `json:"count"`
}

// OMSClient calls the order management system
type OMSClient struct {
	client *ServiceClient
}

// NewOMSClient creates an instrumented OMS client
func NewOMSClient(config ClientConfig, logger *logging.Logger, metrics DownstreamMetrics, breaker *resilience.CircuitBreaker) *OMSClient {
	if config.Service == "" {
		config.Service = "oms"
	}
	return &OMSClient{client: NewServiceClient(config, logger, metrics, breaker)}
}

func findEntities[T any](ctx context.Context, c *OMSClient, query entityQuery) ([]T, error) {
	var resp entityResponse[T]
	if err := c.client.doRequest(ctx, "POST", entityQueryPath, query, &resp); err != nil {
		return nil, err
	}
	if resp.Docs == nil {
		return []T{}, nil
	}
	return resp.Docs, nil
}

// FetchItemStats returns shipped and received quantities keyed by item key.
func (c *OMSClient) FetchItemStats(ctx context.Context, keys []string) (domain.ItemStats, error) {
	var resp struct {
		Stats domain.ItemStats `json:"stats"`
	}
	body := map[string][]string{"orderItemKeys": keys}
	if err := c.client.doRequest(ctx, "POST", itemStatsPath, body, &resp); err != nil {
		return nil, err
	}
	if resp.Stats == nil {
		return domain.ItemStats{}, nil
	}
	return resp.Stats, nil
}

// FetchOrderDetail returns the transfer order with its items.
func (c *OMSClient) FetchOrderDetail(ctx context.Context, orderID string) (*domain.OrderDetail, error) {
	var resp struct {
		Order *domain.OrderDetail `json:"order"`
	}
	if err := c.client.doRequest(ctx, "GET", "/api/oms/transferOrders/"+url.PathEscape(orderID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// FetchShipments returns shipment headers of an order.
func (c *OMSClient) FetchShipments(ctx context.Context, filter domain.ShipmentFilter) ([]domain.ShipmentHeader, error) {
	input := map[string]any{"primaryOrderId": filter.PrimaryOrderID}
	switch {
	case filter.StatusID != "":
		input["statusId"] = filter.StatusID
	case filter.ExcludeStatusID != "":
		input["statusId"] = filter.ExcludeStatusID
		input["statusId_op"] = "notEqual"
	}

	viewSize := filter.ViewSize
	if viewSize <= 0 {
		viewSize = domain.ShipmentHeaderViewSize
	}
	query := entityQuery{
		EntityName:  "Shipment",
		InputFields: input,
		FieldList:   []string{"shipmentId", "shipmentTypeId", "statusId", "carrierPartyId", "shipmentMethodTypeId"},
		ViewSize:    viewSize,
	}
	if filter.Distinct {
		query.Distinct = "Y"
	}
	return findEntities[domain.ShipmentHeader](ctx, c, query)
}

// FetchShipmentItems returns the items of the given shipments.
func (c *OMSClient) FetchShipmentItems(ctx context.Context, shipmentIDs []string) ([]domain.ShipmentItem, error) {
	return findEntities[domain.ShipmentItem](ctx, c, entityQuery{
		EntityName:  "ShipmentItemAndOrderItem",
		InputFields: inShipments(shipmentIDs),
		FieldList:   []string{"shipmentId", "shipmentItemSeqId", "productId", "quantity", "orderId", "orderItemSeqId"},
		ViewSize:    entityViewSize,
	})
}

// FetchShipmentTrackingDetails returns the route segments of the given shipments.
func (c *OMSClient) FetchShipmentTrackingDetails(ctx context.Context, shipmentIDs []string) ([]domain.ShipmentRoute, error) {
	return findEntities[domain.ShipmentRoute](ctx, c, entityQuery{
		EntityName:  "ShipmentRouteSegment",
		InputFields: inShipments(shipmentIDs),
		FieldList:   []string{"shipmentId", "shipmentRouteSegmentId", "trackingIdNumber", "carrierPartyId"},
		ViewSize:    entityViewSize,
	})
}

// FetchShipmentStatuses maps shipment id to the date it was shipped.
func (c *OMSClient) FetchShipmentStatuses(ctx context.Context, shipmentIDs []string) (map[string]string, error) {
	input := inShipments(shipmentIDs)
	input["statusId"] = domain.ShipmentStatusShipped

	type shipmentStatus struct {
		ShipmentID string `json:"shipmentId"`
		StatusDate string `json:"statusDate"`
	}
	docs, err := findEntities[shipmentStatus](ctx, c, entityQuery{
		EntityName:  "ShipmentStatus",
		InputFields: input,
		FieldList:   []string{"shipmentId", "statusDate"},
		ViewSize:    entityViewSize,
	})
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]string, len(docs))
	for _, doc := range docs {
		statuses[doc.ShipmentID] = doc.StatusDate
	}
	return statuses, nil
}

// FetchFacilityAddresses returns the primary postal addresses of the given facilities.
func (c *OMSClient) FetchFacilityAddresses(ctx context.Context, facilityIDs []string) ([]domain.FacilityAddress, error) {
	return findEntities[domain.FacilityAddress](ctx, c, entityQuery{
		EntityName: "FacilityContactDetailByPurpose",
		InputFields: map[string]any{
			"facilityId":               facilityIDs,
			"facilityId_op":            "in",
			"contactMechPurposeTypeId": "PRIMARY_LOCATION",
			"contactMechTypeId":        "POSTAL_ADDRESS",
		},
		FieldList: []string{
			"facilityId", "facilityName", "toName", "address1", "address2", "city",
			"stateProvinceGeoId", "postalCode", "countryGeoId", "contactNumber",
		},
		ViewSize: len(facilityIDs),
	})
}

// FetchStoreCarrierAndMethods returns the carriers and shipment methods of a product store.
func (c *OMSClient) FetchStoreCarrierAndMethods(ctx context.Context, productStoreID string) ([]domain.CarrierShipmentMethod, error) {
	return findEntities[domain.CarrierShipmentMethod](ctx, c, entityQuery{
		EntityName:  "ProductStoreShipmentMethView",
		InputFields: map[string]any{"productStoreId": productStoreID, "roleTypeId": "CARRIER"},
		FieldList:   []string{"partyId", "shipmentMethodTypeId", "description", "sequenceNum"},
		OrderBy:     "sequenceNum",
		ViewSize:    entityViewSize,
	})
}

func inShipments(ids []string) map[string]any {
	return map[string]any{"shipmentId": ids, "shipmentId_op": "in"}
}

// ProductClient warms product metadata in the product service
type ProductClient struct {
	client *ServiceClient
}

// NewProductClient creates an instrumented product client
func NewProductClient(config ClientConfig, logger *logging.Logger, metrics DownstreamMetrics, breaker *resilience.CircuitBreaker) *ProductClient {
	if config.Service == "" {
		config.Service = "product"
	}
	return &ProductClient{client: NewServiceClient(config, logger, metrics, breaker)}
}

// ResolveProducts asks the product service to load the given products.
func (c *ProductClient) ResolveProducts(ctx context.Context, productIDs []string) error {
	body := map[string]any{"productIds": productIDs, "viewSize": len(productIDs)}
	return c.client.doRequest(ctx, "POST", "/api/products/resolve", body, nil)
}
