package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wms-platform/transfers/internal/domain"
)

type mockSearchClient struct {
	findOrdersFunc func(ctx context.Context, query domain.OrderQuery) (*domain.SearchResponse, error)

	mu      sync.Mutex
	queries []domain.OrderQuery
}

func (m *mockSearchClient) FindOrders(ctx context.Context, query domain.OrderQuery) (*domain.SearchResponse, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	return m.findOrdersFunc(ctx, query)
}

func (m *mockSearchClient) lastQuery() domain.OrderQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[len(m.queries)-1]
}

type mockStatsService struct {
	fetchItemStatsFunc func(ctx context.Context, keys []string) (domain.ItemStats, error)
}

func (m *mockStatsService) FetchItemStats(ctx context.Context, keys []string) (domain.ItemStats, error) {
	return m.fetchItemStatsFunc(ctx, keys)
}

type mockProductResolver struct {
	resolveFunc func(ctx context.Context, ids []string) error

	mu      sync.Mutex
	batches [][]string
}

func (m *mockProductResolver) ResolveProducts(ctx context.Context, ids []string) error {
	m.mu.Lock()
	m.batches = append(m.batches, ids)
	m.mu.Unlock()
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, ids)
	}
	return nil
}

func (m *mockProductResolver) batchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := make([]int, 0, len(m.batches))
	for _, b := range m.batches {
		sizes = append(sizes, len(b))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}

func (m *mockProductResolver) resolved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, b := range m.batches {
		ids = append(ids, b...)
	}
	sort.Strings(ids)
	return ids
}

type mockShipmentBackend struct {
	fetchShipmentsFunc func(ctx context.Context, filter domain.ShipmentFilter) ([]domain.ShipmentHeader, error)
	fetchItemsFunc     func(ctx context.Context, ids []string) ([]domain.ShipmentItem, error)
	fetchRoutesFunc    func(ctx context.Context, ids []string) ([]domain.ShipmentRoute, error)
	fetchStatusesFunc  func(ctx context.Context, ids []string) (map[string]string, error)
}

func (m *mockShipmentBackend) FetchShipments(ctx context.Context, filter domain.ShipmentFilter) ([]domain.ShipmentHeader, error) {
	return m.fetchShipmentsFunc(ctx, filter)
}

func (m *mockShipmentBackend) FetchShipmentItems(ctx context.Context, ids []string) ([]domain.ShipmentItem, error) {
	return m.fetchItemsFunc(ctx, ids)
}

func (m *mockShipmentBackend) FetchShipmentTrackingDetails(ctx context.Context, ids []string) ([]domain.ShipmentRoute, error) {
	return m.fetchRoutesFunc(ctx, ids)
}

func (m *mockShipmentBackend) FetchShipmentStatuses(ctx context.Context, ids []string) (map[string]string, error) {
	return m.fetchStatusesFunc(ctx, ids)
}

type mockFacilityService struct {
	fetchAddressesFunc func(ctx context.Context, ids []string) ([]domain.FacilityAddress, error)
}

func (m *mockFacilityService) FetchFacilityAddresses(ctx context.Context, ids []string) ([]domain.FacilityAddress, error) {
	return m.fetchAddressesFunc(ctx, ids)
}

type mockStoreConfigService struct {
	fetchCarriersFunc func(ctx context.Context, storeID string) ([]domain.CarrierShipmentMethod, error)
}

func (m *mockStoreConfigService) FetchStoreCarrierAndMethods(ctx context.Context, storeID string) ([]domain.CarrierShipmentMethod, error) {
	return m.fetchCarriersFunc(ctx, storeID)
}

type mockOrderBackend struct {
	fetchOrderDetailFunc func(ctx context.Context, orderID string) (*domain.OrderDetail, error)
}

func (m *mockOrderBackend) FetchOrderDetail(ctx context.Context, orderID string) (*domain.OrderDetail, error) {
	return m.fetchOrderDetailFunc(ctx, orderID)
}

type recordingMetrics struct {
	mu           sync.Mutex
	joinFailures []string
	outcomes     []string
	dispatches   map[bool]int
	sessions     int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{dispatches: map[bool]int{}}
}

func (m *recordingMetrics) RecordJoinFailure(join string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joinFailures = append(m.joinFailures, join)
}

func (m *recordingMetrics) RecordListOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) RecordProductDispatch(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatches[success]++
}

func (m *recordingMetrics) RecordAggregation(string, time.Duration) {}

func (m *recordingMetrics) SetSessionsCached(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = count
}

func (m *recordingMetrics) joins() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.joinFailures...)
	sort.Strings(out)
	return out
}

func qty(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}
