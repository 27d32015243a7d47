package application

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wms-platform/transfers/internal/domain"
	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/tracing"
)

var errOrderNotFound = errors.New("order backend returned no order")

// OrderDetailBackends are the backends the order detail view joins.
type OrderDetailBackends struct {
	Orders     OrderBackend
	Shipments  ShipmentBackend
	Facilities FacilityService
	Stores     StoreConfigService
	Stats      StatsService
}

// OrderDetailService builds the detail view of a single transfer order.
type OrderDetailService struct {
	backends   OrderDetailBackends
	defaults   domain.DetailDefaults
	dispatcher *ProductDispatcher
	states     *StateStore
	logger     *logging.Logger
	metrics    Metrics
}

// NewOrderDetailService creates the order detail service.
func NewOrderDetailService(
	backends OrderDetailBackends,
	defaults domain.DetailDefaults,
	dispatcher *ProductDispatcher,
	states *StateStore,
	logger *logging.Logger,
	metrics Metrics,
) *OrderDetailService {
	return &OrderDetailService{
		backends:   backends,
		defaults:   defaults,
		dispatcher: dispatcher,
		states:     states,
		logger:     logger.WithComponent("order-detail"),
		metrics:    metricsOrNoop(metrics),
	}
}

// FetchOrderDetails loads orderID and joins its shipped shipments, facility addresses,
// store carrier methods and item statistics. When the order itself cannot be loaded the
// query failure is returned and the session's current order is left unchanged. Every
// other join failure only drops that join.
func (s *OrderDetailService) FetchOrderDetails(ctx context.Context, sessionID, orderID string) (*domain.OrderDetail, error) {
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, tracerScope, "OrderDetailService.FetchOrderDetails",
		attribute.String("order.id", orderID),
	)
	defer span.End()

	detail, err := s.backends.Orders.FetchOrderDetail(ctx, orderID)
	if err == nil && detail == nil {
		err = errOrderNotFound
	}
	if err != nil {
		err = domain.QueryFailure("fetchOrderDetails", err)
		s.logger.QueryFailed(ctx, "fetchOrderDetails", err)
		tracing.RecordError(span, err)
		s.metrics.RecordAggregation("fetchOrderDetails", time.Since(start))
		return nil, err
	}

	if detail.OrderID == "" {
		detail.OrderID = orderID
	}
	if detail.Items == nil {
		detail.Items = []domain.OrderDetailItem{}
	}
	detail.ApplyDefaults(s.defaults)
	detail.NormalizeItems()

	var g settleGroup
	shipments := settle(&g, "shipments", func() ([]domain.ShipmentHeader, error) {
		return s.backends.Shipments.FetchShipments(ctx, domain.ShipmentFilter{
			PrimaryOrderID: detail.OrderID,
			StatusID:       domain.ShipmentStatusShipped,
		})
	})
	addresses := settle(&g, "facilityAddresses", func() ([]domain.FacilityAddress, error) {
		ids := detail.AddressFacilityIDs()
		if len(ids) == 0 {
			return nil, nil
		}
		return s.backends.Facilities.FetchFacilityAddresses(ctx, ids)
	})
	carriers := settle(&g, "storeCarrierMethods", func() ([]domain.CarrierShipmentMethod, error) {
		if detail.ProductStoreID == "" {
			return nil, nil
		}
		return s.backends.Stores.FetchStoreCarrierAndMethods(ctx, detail.ProductStoreID)
	})
	stats := settle(&g, "itemStats", func() (domain.ItemStats, error) {
		keys := detail.ItemKeys()
		if len(keys) == 0 {
			return nil, nil
		}
		return s.backends.Stats.FetchItemStats(ctx, keys)
	})
	g.wait()

	detail.Shipments = []domain.ShipmentSummary{}
	if shipments.err != nil {
		s.joinFailed(ctx, "shipments", shipments.err)
	} else {
		detail.Shipments = domain.JoinShipments(shipments.value, nil, nil, nil)
	}

	if addresses.err != nil {
		s.joinFailed(ctx, "facilityAddresses", addresses.err)
	} else {
		detail.AssignFacilityAddresses(addresses.value)
	}

	if carriers.err != nil {
		s.joinFailed(ctx, "storeCarrierMethods", carriers.err)
	} else {
		detail.CarrierMethods = carriers.value
	}

	if stats.err != nil {
		s.joinFailed(ctx, "itemStats", stats.err)
	} else {
		detail.ApplyItemStats(stats.value)
	}

	s.dispatcher.Dispatch(ctx, detail.ProductIDs())
	s.states.Get(sessionID).SetCurrent(detail)

	duration := time.Since(start)
	s.metrics.RecordAggregation("fetchOrderDetails", duration)
	s.logger.Performance(ctx, "fetchOrderDetails", duration, true, map[string]any{
		"orderId":   detail.OrderID,
		"items":     len(detail.Items),
		"shipments": len(detail.Shipments),
	})

	return detail, nil
}

func (s *OrderDetailService) joinFailed(ctx context.Context, join string, err error) {
	s.logger.JoinFailed(ctx, join, domain.JoinFailure(join, err))
	s.metrics.RecordJoinFailure(join)
}

// Current returns the order currently opened in the session, or nil.
func (s *OrderDetailService) Current(sessionID string) *domain.OrderDetail {
	return s.states.Get(sessionID).Current()
}

// UpdateCurrent replaces the order currently opened in the session.
func (s *OrderDetailService) UpdateCurrent(sessionID string, detail *domain.OrderDetail) *domain.OrderDetail {
	state := s.states.Get(sessionID)
	state.SetCurrent(detail)
	return state.Current()
}
