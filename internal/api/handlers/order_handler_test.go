package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/transfers/internal/application"
	"github.com/wms-platform/transfers/internal/domain"
	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/middleware"
	"github.com/wms-platform/transfers/pkg/resilience"
)

type fakeListService struct {
	findOrders    func(ctx context.Context, sessionID string, params domain.FindOrdersParams) *application.FindOrdersResult
	fetchFilters  func(ctx context.Context, sessionID string) (domain.FilterOptions, error)
	updateFilters func(ctx context.Context, sessionID string, filters domain.AppliedFilters) *application.FindOrdersResult
	updateList    func(sessionID string, list domain.OrderList) domain.OrderList
	cleared       []string
}

func (f *fakeListService) FindOrders(ctx context.Context, sessionID string, params domain.FindOrdersParams) *application.FindOrdersResult {
	return f.findOrders(ctx, sessionID, params)
}

func (f *fakeListService) FetchOrderFilters(ctx context.Context, sessionID string) (domain.FilterOptions, error) {
	return f.fetchFilters(ctx, sessionID)
}

func (f *fakeListService) UpdateAppliedFilters(ctx context.Context, sessionID string, filters domain.AppliedFilters) *application.FindOrdersResult {
	return f.updateFilters(ctx, sessionID, filters)
}

func (f *fakeListService) UpdateOrdersList(sessionID string, list domain.OrderList) domain.OrderList {
	return f.updateList(sessionID, list)
}

func (f *fakeListService) ClearOrderState(sessionID string) {
	f.cleared = append(f.cleared, sessionID)
}

func (f *fakeListService) Query(string) domain.OrderQuery {
	return domain.DefaultOrderQuery()
}

type fakeDetailService struct {
	fetch   func(ctx context.Context, sessionID, orderID string) (*domain.OrderDetail, error)
	current *domain.OrderDetail
}

func (f *fakeDetailService) FetchOrderDetails(ctx context.Context, sessionID, orderID string) (*domain.OrderDetail, error) {
	return f.fetch(ctx, sessionID, orderID)
}

func (f *fakeDetailService) Current(string) *domain.OrderDetail {
	return f.current
}

func (f *fakeDetailService) UpdateCurrent(_ string, detail *domain.OrderDetail) *domain.OrderDetail {
	f.current = detail
	return detail
}

type fakeShipmentService struct {
	fetch func(ctx context.Context, sessionID, orderID string) []domain.ShipmentSummary
}

func (f *fakeShipmentService) FetchOrderShipments(ctx context.Context, sessionID, orderID string) []domain.ShipmentSummary {
	return f.fetch(ctx, sessionID, orderID)
}

func setupRouter(list *fakeListService, detail *fakeDetailService, shipments *fakeShipmentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig("transfers-test", slog.New(slog.NewTextHandler(io.Discard, nil))))
	NewOrderHandler(list, detail, shipments, logging.Discard()).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func perform(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderSessionID, "session-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestOrderHandler_FindOrders(t *testing.T) {
	var gotSession string
	var gotParams domain.FindOrdersParams
	list := &fakeListService{
		findOrders: func(_ context.Context, sessionID string, params domain.FindOrdersParams) *application.FindOrdersResult {
			gotSession, gotParams = sessionID, params
			return &application.FindOrdersResult{
				Query:   domain.DefaultOrderQuery(),
				List:    domain.OrderList{Orders: []domain.OrderSummary{{OrderID: "TO1"}}, OrderCount: 1, ItemCount: 2},
				Outcome: domain.FreshFirstPage,
			}
		},
	}
	router := setupRouter(list, &fakeDetailService{}, &fakeShipmentService{})

	w := perform(router, http.MethodGet, "/api/v1/orders?viewIndex=2&q=TO1&isFilterUpdated=true", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session-1", gotSession)
	require.NotNil(t, gotParams.ViewIndex)
	assert.Equal(t, 2, *gotParams.ViewIndex)
	require.NotNil(t, gotParams.QueryString)
	assert.Equal(t, "TO1", *gotParams.QueryString)
	assert.Nil(t, gotParams.Start)
	assert.True(t, gotParams.IsFilterUpdated)

	var resp struct {
		Orders     []domain.OrderSummary `json:"orders"`
		OrderCount int                   `json:"orderCount"`
		Outcome    string                `json:"outcome"`
		QueryError string                `json:"queryError"`
	}
	decodeData(t, w, &resp)
	assert.Len(t, resp.Orders, 1)
	assert.Equal(t, 1, resp.OrderCount)
	assert.Equal(t, string(domain.FreshFirstPage), resp.Outcome)
	assert.Empty(t, resp.QueryError)
}

func TestOrderHandler_FindOrdersQueryFailureKeepsList(t *testing.T) {
	list := &fakeListService{
		findOrders: func(context.Context, string, domain.FindOrdersParams) *application.FindOrdersResult {
			return &application.FindOrdersResult{
				Err:     domain.QueryFailure("findOrders", errors.New("search down")),
				Query:   domain.DefaultOrderQuery(),
				List:    domain.OrderList{Orders: []domain.OrderSummary{{OrderID: "TO1"}}, OrderCount: 1},
				Outcome: domain.ErrorRetain,
			}
		},
	}
	router := setupRouter(list, &fakeDetailService{}, &fakeShipmentService{})

	w := perform(router, http.MethodGet, "/api/v1/orders", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Orders     []domain.OrderSummary `json:"orders"`
		QueryError string                `json:"queryError"`
		Outcome    string                `json:"outcome"`
	}
	decodeData(t, w, &resp)
	assert.Len(t, resp.Orders, 1)
	assert.Contains(t, resp.QueryError, "search down")
	assert.Equal(t, string(domain.ErrorRetain), resp.Outcome)
}

func TestOrderHandler_FindOrdersRejectsInvalidQuery(t *testing.T) {
	router := setupRouter(&fakeListService{}, &fakeDetailService{}, &fakeShipmentService{})

	w := perform(router, http.MethodGet, "/api/v1/orders?start=-1", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestOrderHandler_UpdateAppliedFilters(t *testing.T) {
	var got domain.AppliedFilters
	list := &fakeListService{
		updateFilters: func(_ context.Context, _ string, filters domain.AppliedFilters) *application.FindOrdersResult {
			got = filters
			return &application.FindOrdersResult{Query: domain.DefaultOrderQuery(), Outcome: domain.FreshFirstPage}
		},
	}
	router := setupRouter(list, &fakeDetailService{}, &fakeShipmentService{})

	w := perform(router, http.MethodPut, "/api/v1/orders/state/filters", map[string]any{
		"statuses": []string{"Approved"},
		"carriers": []string{"UPS"},
		"dateFrom": "2024-01-01",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Approved"}, got.Statuses)
	assert.Equal(t, []string{"UPS"}, got.Carriers)
	assert.Equal(t, "2024-01-01", got.DateFrom)

	w = perform(router, http.MethodPut, "/api/v1/orders/state/filters", map[string]any{"statuses": []string{""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_FetchOrderFilters(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"search failure", domain.QueryFailure("fetchOrderFilters", errors.New("boom")), http.StatusBadGateway},
		{"circuit open", domain.QueryFailure("fetchOrderFilters", fmt.Errorf("search: %w", resilience.ErrCircuitOpen)), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := &fakeListService{
				fetchFilters: func(context.Context, string) (domain.FilterOptions, error) {
					return domain.FilterOptions{Carriers: []string{"UPS"}}, tt.err
				},
			}
			router := setupRouter(list, &fakeDetailService{}, &fakeShipmentService{})

			w := perform(router, http.MethodGet, "/api/v1/orders/state/filters", nil)

			assert.Equal(t, tt.status, w.Code)
			if tt.err == nil {
				var options domain.FilterOptions
				decodeData(t, w, &options)
				assert.Equal(t, []string{"UPS"}, options.Carriers)
			}
		})
	}
}

func TestOrderHandler_UpdateOrdersListAndClear(t *testing.T) {
	list := &fakeListService{
		updateList: func(_ string, l domain.OrderList) domain.OrderList { return l },
	}
	router := setupRouter(list, &fakeDetailService{}, &fakeShipmentService{})

	w := perform(router, http.MethodPut, "/api/v1/orders/state/list", map[string]any{
		"orders":     []map[string]any{{"orderId": "TO9"}},
		"orderCount": 1,
		"itemCount":  3,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Orders    []domain.OrderSummary `json:"orders"`
		ItemCount int                   `json:"itemCount"`
	}
	decodeData(t, w, &resp)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "TO9", resp.Orders[0].OrderID)
	assert.Equal(t, 3, resp.ItemCount)

	w = perform(router, http.MethodPut, "/api/v1/orders/state/list", map[string]any{"orderCount": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodDelete, "/api/v1/orders/state", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"session-1"}, list.cleared)
}

func TestOrderHandler_FetchOrderDetails(t *testing.T) {
	detail := &fakeDetailService{
		fetch: func(_ context.Context, _ string, orderID string) (*domain.OrderDetail, error) {
			if orderID == "missing" {
				return nil, domain.QueryFailure("fetchOrderDetails", errors.New("no order"))
			}
			return &domain.OrderDetail{OrderID: orderID, Items: []domain.OrderDetailItem{}}, nil
		},
	}
	router := setupRouter(&fakeListService{}, detail, &fakeShipmentService{})

	w := perform(router, http.MethodGet, "/api/v1/orders/TO1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.OrderDetail
	decodeData(t, w, &got)
	assert.Equal(t, "TO1", got.OrderID)

	w = perform(router, http.MethodGet, "/api/v1/orders/missing", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "UPSTREAM_QUERY_FAILED")
}

func TestOrderHandler_Current(t *testing.T) {
	detail := &fakeDetailService{}
	router := setupRouter(&fakeListService{}, detail, &fakeShipmentService{})

	w := perform(router, http.MethodGet, "/api/v1/orders/state/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":null}`, w.Body.String())

	w = perform(router, http.MethodPut, "/api/v1/orders/state/current", map[string]any{"orderId": "TO2", "items": []any{}})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, detail.current)
	assert.Equal(t, "TO2", detail.current.OrderID)

	w = perform(router, http.MethodPut, "/api/v1/orders/state/current", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"orderId":"is required"`)
}

func TestOrderHandler_OrderIDsMatchingStateNames(t *testing.T) {
	var requested []string
	detail := &fakeDetailService{
		fetch: func(_ context.Context, _ string, orderID string) (*domain.OrderDetail, error) {
			requested = append(requested, orderID)
			return &domain.OrderDetail{OrderID: orderID, Items: []domain.OrderDetailItem{}}, nil
		},
	}
	router := setupRouter(&fakeListService{}, detail, &fakeShipmentService{})

	for _, orderID := range []string{"current", "filters", "list"} {
		w := perform(router, http.MethodGet, "/api/v1/orders/"+orderID, nil)
		require.Equal(t, http.StatusOK, w.Code, orderID)
		var got domain.OrderDetail
		decodeData(t, w, &got)
		assert.Equal(t, orderID, got.OrderID)
	}
	assert.Equal(t, []string{"current", "filters", "list"}, requested)
}

func TestOrderHandler_FetchOrderShipments(t *testing.T) {
	shipments := &fakeShipmentService{
		fetch: func(_ context.Context, sessionID, orderID string) []domain.ShipmentSummary {
			assert.Equal(t, "session-1", sessionID)
			assert.Equal(t, "TO1", orderID)
			return []domain.ShipmentSummary{}
		},
	}
	router := setupRouter(&fakeListService{}, &fakeDetailService{}, shipments)

	w := perform(router, http.MethodGet, "/api/v1/orders/TO1/shipments", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}
