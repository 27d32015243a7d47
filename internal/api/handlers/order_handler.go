package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/transfers/internal/api/dto"
	"github.com/wms-platform/transfers/internal/application"
	"github.com/wms-platform/transfers/internal/domain"
	"github.com/wms-platform/transfers/pkg/errors"
	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/middleware"
)

// OrderListService is the order list use case set
type OrderListService interface {
	FindOrders(ctx context.Context, sessionID string, params domain.FindOrdersParams) *application.FindOrdersResult
	FetchOrderFilters(ctx context.Context, sessionID string) (domain.FilterOptions, error)
	UpdateAppliedFilters(ctx context.Context, sessionID string, filters domain.AppliedFilters) *application.FindOrdersResult
	UpdateOrdersList(sessionID string, list domain.OrderList) domain.OrderList
	ClearOrderState(sessionID string)
	Query(sessionID string) domain.OrderQuery
}

// OrderDetailService is the order detail use case set
type OrderDetailService interface {
	FetchOrderDetails(ctx context.Context, sessionID, orderID string) (*domain.OrderDetail, error)
	Current(sessionID string) *domain.OrderDetail
	UpdateCurrent(sessionID string, detail *domain.OrderDetail) *domain.OrderDetail
}

// ShipmentService is the shipment use case set
type ShipmentService interface {
	FetchOrderShipments(ctx context.Context, sessionID, orderID string) []domain.ShipmentSummary
}

// OrderHandler handles HTTP requests for the transfer order views
type OrderHandler struct {
	list      OrderListService
	detail    OrderDetailService
	shipments ShipmentService
	logger    *logging.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(list OrderListService, detail OrderDetailService, shipments ShipmentService, logger *logging.Logger) *OrderHandler {
	return &OrderHandler{
		list:      list,
		detail:    detail,
		shipments: shipments,
		logger:    logger.WithComponent("order-handler"),
	}
}

// RegisterRoutes registers the order routes under /api/v1/orders
func (h *OrderHandler) RegisterRoutes(api *gin.RouterGroup) {
	orders := api.Group("/orders")
	{
		orders.GET("", h.FindOrders)
		orders.GET("/:orderId", h.FetchOrderDetails)
		orders.GET("/:orderId/shipments", h.FetchOrderShipments)
	}

	// Session state lives under /orders/state so "state" is the only order id the routes reserve.
	state := orders.Group("/state")
	{
		state.DELETE("", h.ClearOrderState)
		state.GET("/filters", h.FetchOrderFilters)
		state.PUT("/filters", h.UpdateAppliedFilters)
		state.PUT("/list", h.UpdateOrdersList)
		state.GET("/current", h.GetCurrent)
		state.PUT("/current", h.UpdateCurrent)
	}
}

// FindOrders handles GET /api/v1/orders
func (h *OrderHandler) FindOrders(c *gin.Context) {
	var req dto.FindOrdersRequest
	if appErr := middleware.BindQueryAndValidate(c, &req); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	result := h.list.FindOrders(c.Request.Context(), middleware.GetSessionID(c), req.ToParams())
	c.JSON(http.StatusOK, gin.H{"data": dto.NewOrderListResponse(result.List, result.Query, result.Outcome, result.Err)})
}

// FetchOrderFilters handles GET /api/v1/orders/state/filters
func (h *OrderHandler) FetchOrderFilters(c *gin.Context) {
	options, err := h.list.FetchOrderFilters(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		middleware.AbortWithAppError(c, upstreamError("fetchOrderFilters", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": options})
}

// UpdateAppliedFilters handles PUT /api/v1/orders/state/filters
func (h *OrderHandler) UpdateAppliedFilters(c *gin.Context) {
	var req dto.UpdateFiltersRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	result := h.list.UpdateAppliedFilters(c.Request.Context(), middleware.GetSessionID(c), req.ToAppliedFilters())
	c.JSON(http.StatusOK, gin.H{"data": dto.NewOrderListResponse(result.List, result.Query, result.Outcome, result.Err)})
}

// UpdateOrdersList handles PUT /api/v1/orders/state/list
func (h *OrderHandler) UpdateOrdersList(c *gin.Context) {
	var req dto.UpdateListRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}

	session := middleware.GetSessionID(c)
	list := h.list.UpdateOrdersList(session, req.ToOrderList())
	c.JSON(http.StatusOK, gin.H{"data": dto.NewOrderListResponse(list, h.list.Query(session), "", nil)})
}

// ClearOrderState handles DELETE /api/v1/orders/state
func (h *OrderHandler) ClearOrderState(c *gin.Context) {
	h.list.ClearOrderState(middleware.GetSessionID(c))
	c.Status(http.StatusNoContent)
}

// GetCurrent handles GET /api/v1/orders/state/current
func (h *OrderHandler) GetCurrent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.detail.Current(middleware.GetSessionID(c))})
}

// UpdateCurrent handles PUT /api/v1/orders/state/current
func (h *OrderHandler) UpdateCurrent(c *gin.Context) {
	var detail domain.OrderDetail
	if appErr := middleware.BindAndValidate(c, &detail); appErr != nil {
		middleware.AbortWithAppError(c, appErr)
		return
	}
	if detail.OrderID == "" {
		middleware.AbortWithAppError(c, errors.ErrValidation("validation failed").WithDetail("orderId", "is required"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": h.detail.UpdateCurrent(middleware.GetSessionID(c), &detail)})
}

// FetchOrderDetails handles GET /api/v1/orders/:orderId
func (h *OrderHandler) FetchOrderDetails(c *gin.Context) {
	orderID := c.Param("orderId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"order.id": orderID,
	})

	detail, err := h.detail.FetchOrderDetails(c.Request.Context(), middleware.GetSessionID(c), orderID)
	if err != nil {
		middleware.AbortWithAppError(c, upstreamError("fetchOrderDetails", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

// FetchOrderShipments handles GET /api/v1/orders/:orderId/shipments
func (h *OrderHandler) FetchOrderShipments(c *gin.Context) {
	orderID := c.Param("orderId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"order.id": orderID,
	})

	shipments := h.shipments.FetchOrderShipments(c.Request.Context(), middleware.GetSessionID(c), orderID)
	c.JSON(http.StatusOK, gin.H{"data": shipments})
}

// upstreamError maps a failed primary query to 502; an open circuit keeps its 503.
func upstreamError(operation string, err error) *errors.AppError {
	if domain.IsQueryFailure(err) {
		if appErr := errors.MapDomainError(err); appErr.HTTPStatus == http.StatusServiceUnavailable {
			return appErr
		}
		return errors.ErrUpstream(operation).Wrap(err)
	}
	return errors.MapDomainError(err)
}
