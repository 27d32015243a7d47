package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wms-platform/transfers/internal/domain"
	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/tracing"
)

// ShipmentService builds the shipment list of a transfer order.
type ShipmentService struct {
	backend    ShipmentBackend
	dispatcher *ProductDispatcher
	states     *StateStore
	logger     *logging.Logger
	metrics    Metrics
}

// NewShipmentService creates the shipment service.
func NewShipmentService(backend ShipmentBackend, dispatcher *ProductDispatcher, states *StateStore, logger *logging.Logger, metrics Metrics) *ShipmentService {
	return &ShipmentService{
		backend:    backend,
		dispatcher: dispatcher,
		states:     states,
		logger:     logger.WithComponent("order-shipments"),
		metrics:    metricsOrNoop(metrics),
	}
}

// FetchOrderShipments returns the non-cancelled shipments of orderID joined with their
// items, tracking codes and shipped dates. It never fails: a failed header query yields
// an empty list and a failed join leaves that field unset. The result replaces the
// shipments of the session's current order.
func (s *ShipmentService) FetchOrderShipments(ctx context.Context, sessionID, orderID string) []domain.ShipmentSummary {
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, tracerScope, "ShipmentService.FetchOrderShipments",
		attribute.String("order.id", orderID),
	)
	defer span.End()

	shipments := s.fetch(ctx, orderID)
	span.SetAttributes(attribute.Int("shipments.count", len(shipments)))
	s.states.Get(sessionID).SetCurrentShipments(orderID, shipments)

	duration := time.Since(start)
	s.metrics.RecordAggregation("fetchOrderShipments", duration)
	s.logger.Performance(ctx, "fetchOrderShipments", duration, true, map[string]any{
		"orderId":   orderID,
		"shipments": len(shipments),
	})
	return shipments
}

func (s *ShipmentService) fetch(ctx context.Context, orderID string) []domain.ShipmentSummary {
	headers, err := s.backend.FetchShipments(ctx, domain.ShipmentFilter{
		PrimaryOrderID:  orderID,
		ExcludeStatusID: domain.ShipmentStatusCancelled,
		ViewSize:        domain.ShipmentHeaderViewSize,
		Distinct:        true,
	})
	if err != nil {
		s.logger.QueryFailed(ctx, "fetchOrderShipments", domain.QueryFailure("fetchOrderShipments", err))
		return []domain.ShipmentSummary{}
	}
	if len(headers) == 0 {
		return []domain.ShipmentSummary{}
	}

	ids := domain.ShipmentIDs(headers)
	var g settleGroup
	items := settle(&g, "shipmentItems", func() ([]domain.ShipmentItem, error) {
		return s.backend.FetchShipmentItems(ctx, ids)
	})
	routes := settle(&g, "shipmentRoutes", func() ([]domain.ShipmentRoute, error) {
		return s.backend.FetchShipmentTrackingDetails(ctx, ids)
	})
	statuses := settle(&g, "shipmentStatuses", func() (map[string]string, error) {
		return s.backend.FetchShipmentStatuses(ctx, ids)
	})
	g.wait()

	if items.err != nil {
		s.joinFailed(ctx, "shipmentItems", items.err)
		items.value = nil
	}
	if routes.err != nil {
		s.joinFailed(ctx, "shipmentRoutes", routes.err)
		routes.value = nil
	}
	if statuses.err != nil {
		s.joinFailed(ctx, "shipmentStatuses", statuses.err)
		statuses.value = nil
	}

	productIDs := make([]string, 0, len(items.value))
	for _, item := range items.value {
		if item.ProductID != "" {
			productIDs = append(productIDs, item.ProductID)
		}
	}
	s.dispatcher.Dispatch(ctx, productIDs)

	return domain.JoinShipments(headers, items.value, routes.value, statuses.value)
}

func (s *ShipmentService) joinFailed(ctx context.Context, join string, err error) {
	s.logger.JoinFailed(ctx, join, domain.JoinFailure(join, err))
	s.metrics.RecordJoinFailure(join)
}
