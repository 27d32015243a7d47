package dto

import (
	"github.com/wms-platform/transfers/internal/domain"
)

// FindOrdersRequest holds the query parameters of GET /api/v1/orders
type FindOrdersRequest struct {
	Start           *int    `form:"start" binding:"omitempty,gte=0"`
	ViewSize        *int    `form:"viewSize" binding:"omitempty,gte=1,lte=250"`
	ViewIndex       *int    `form:"viewIndex" binding:"omitempty,gte=0"`
	QueryString     *string `form:"q" binding:"omitempty,max=256"`
	IsFilterUpdated bool    `form:"isFilterUpdated"`
}

// ToParams converts the request to search overrides
func (r FindOrdersRequest) ToParams() domain.FindOrdersParams {
	return domain.FindOrdersParams{
		Start:           r.Start,
		ViewSize:        r.ViewSize,
		ViewIndex:       r.ViewIndex,
		QueryString:     r.QueryString,
		IsFilterUpdated: r.IsFilterUpdated,
	}
}

// UpdateFiltersRequest is the body of PUT /api/v1/orders/state/filters
type UpdateFiltersRequest struct {
	Statuses              []string `json:"statuses" binding:"omitempty,dive,required"`
	OriginFacilities      []string `json:"originFacilities" binding:"omitempty,dive,required"`
	DestinationFacilities []string `json:"destinationFacilities" binding:"omitempty,dive,required"`
	Carriers              []string `json:"carriers" binding:"omitempty,dive,required"`
	ShipmentMethods       []string `json:"shipmentMethods" binding:"omitempty,dive,required"`
	ProductStores         []string `json:"productStores" binding:"omitempty,dive,required"`
	DateFrom              string   `json:"dateFrom"`
	DateTo                string   `json:"dateTo"`
}

// ToAppliedFilters converts the request to applied filters
func (r UpdateFiltersRequest) ToAppliedFilters() domain.AppliedFilters {
	return domain.AppliedFilters{
		Statuses:              r.Statuses,
		OriginFacilities:      r.OriginFacilities,
		DestinationFacilities: r.DestinationFacilities,
		Carriers:              r.Carriers,
		ShipmentMethods:       r.ShipmentMethods,
		ProductStores:         r.ProductStores,
		DateFrom:              r.DateFrom,
		DateTo:                r.DateTo,
	}
}

// UpdateListRequest is the body of PUT /api/v1/orders/state/list
type UpdateListRequest struct {
	Orders     []domain.OrderSummary `json:"orders" binding:"required"`
	OrderCount int                   `json:"orderCount" binding:"gte=0"`
	ItemCount  int                   `json:"itemCount" binding:"gte=0"`
}

// ToOrderList converts the request to an order list
func (r UpdateListRequest) ToOrderList() domain.OrderList {
	return domain.OrderList{Orders: r.Orders, OrderCount: r.OrderCount, ItemCount: r.ItemCount}
}

// OrderListResponse is returned by the list endpoints. QueryError is set when the
// search failed and the list shown is the retained or reset one.
type OrderListResponse struct {
	Orders     []domain.OrderSummary `json:"orders"`
	OrderCount int                   `json:"orderCount"`
	ItemCount  int                   `json:"itemCount"`
	Query      domain.OrderQuery     `json:"query"`
	Outcome    domain.ListOutcome    `json:"outcome,omitempty"`
	QueryError string                `json:"queryError,omitempty"`
}

// NewOrderListResponse builds the response of a committed list
func NewOrderListResponse(list domain.OrderList, query domain.OrderQuery, outcome domain.ListOutcome, err error) OrderListResponse {
	orders := list.Orders
	if orders == nil {
		orders = []domain.OrderSummary{}
	}
	resp := OrderListResponse{
		Orders:     orders,
		OrderCount: list.OrderCount,
		ItemCount:  list.ItemCount,
		Query:      query,
		Outcome:    outcome,
	}
	if err != nil {
		resp.QueryError = err.Error()
	}
	return resp
}
