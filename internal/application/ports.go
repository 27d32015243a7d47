package application

import (
	"context"
	"time"

	"github.com/wms-platform/transfers/internal/domain"
)

const tracerScope = "transfers/application"

// SearchClient queries the order search index.
type SearchClient interface {
	FindOrders(ctx context.Context, query domain.OrderQuery) (*domain.SearchResponse, error)
}

// StatsService returns fulfilment statistics keyed by item key.
type StatsService interface {
	FetchItemStats(ctx context.Context, keys []string) (domain.ItemStats, error)
}

// ProductResolver warms product metadata for a batch of product ids.
type ProductResolver interface {
	ResolveProducts(ctx context.Context, productIDs []string) error
}

// ShipmentBackend reads shipments and their details.
type ShipmentBackend interface {
	FetchShipments(ctx context.Context, filter domain.ShipmentFilter) ([]domain.ShipmentHeader, error)
	FetchShipmentItems(ctx context.Context, shipmentIDs []string) ([]domain.ShipmentItem, error)
	FetchShipmentTrackingDetails(ctx context.Context, shipmentIDs []string) ([]domain.ShipmentRoute, error)
	// FetchShipmentStatuses maps shipment id to the date the shipment reached its shipped status.
	FetchShipmentStatuses(ctx context.Context, shipmentIDs []string) (map[string]string, error)
}

// FacilityService resolves facility postal addresses.
type FacilityService interface {
	FetchFacilityAddresses(ctx context.Context, facilityIDs []string) ([]domain.FacilityAddress, error)
}

// StoreConfigService reads product store configuration.
type StoreConfigService interface {
	FetchStoreCarrierAndMethods(ctx context.Context, productStoreID string) ([]domain.CarrierShipmentMethod, error)
}

// OrderBackend reads transfer orders.
type OrderBackend interface {
	FetchOrderDetail(ctx context.Context, orderID string) (*domain.OrderDetail, error)
}

// Metrics records aggregation outcomes.
type Metrics interface {
	RecordJoinFailure(join string)
	RecordListOutcome(outcome string)
	RecordProductDispatch(success bool)
	RecordAggregation(operation string, duration time.Duration)
	SetSessionsCached(count int)
}

type noopMetrics struct{}

func (noopMetrics) RecordJoinFailure(string) {}
func (noopMetrics) RecordListOutcome(string) {}
func (noopMetrics) RecordProductDispatch(bool) {}
func (noopMetrics) RecordAggregation(string, time.Duration) {}
func (noopMetrics) SetSessionsCached(int) {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
