package application

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/wms-platform/transfers/internal/domain"
)

// OrderState is the view state of one session: the stored query, the cached order
// list, the order currently opened and the filter options.
//
// Every accessor is safe for concurrent use. Two FindOrders calls racing on the same
// session each commit a complete list; the later commit wins.
type OrderState struct {
	mu            sync.RWMutex
	query         domain.OrderQuery
	list          domain.OrderList
	current       *domain.OrderDetail
	filterOptions domain.FilterOptions
}

// NewOrderState returns the state of a fresh session.
func NewOrderState() *OrderState {
	return &OrderState{
		query: domain.DefaultOrderQuery(),
		list:  domain.OrderList{Orders: []domain.OrderSummary{}},
	}
}

func (s *OrderState) Query() domain.OrderQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetAppliedFilters replaces the filters of the stored query.
func (s *OrderState) SetAppliedFilters(filters domain.AppliedFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.AppliedFilters = filters
}

// List returns a copy of the cached list.
func (s *OrderState) List() domain.OrderList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.Clone()
}

func (s *OrderState) SetList(list domain.OrderList) {
	if list.Orders == nil {
		list.Orders = []domain.OrderSummary{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = list
}

// Current returns a copy of the order currently opened, or nil.
func (s *OrderState) Current() *domain.OrderDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	current := *s.current
	return &current
}

func (s *OrderState) SetCurrent(detail *domain.OrderDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = detail
}

// SetCurrentShipments replaces the shipments of the current order. When another
// order (or none) is current, the current order becomes orderID with only its shipments.
func (s *OrderState) SetCurrentShipments(orderID string, shipments []domain.ShipmentSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current domain.OrderDetail
	if s.current != nil && s.current.OrderID == orderID {
		current = *s.current
	} else {
		current = domain.OrderDetail{OrderID: orderID, Items: []domain.OrderDetailItem{}}
	}
	current.Shipments = shipments
	s.current = &current
}

func (s *OrderState) FilterOptions() domain.FilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterOptions
}

func (s *OrderState) SetFilterOptions(options domain.FilterOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterOptions = options
}

// Reset returns the session to its initial state.
func (s *OrderState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = domain.DefaultOrderQuery()
	s.list = domain.OrderList{Orders: []domain.OrderSummary{}}
	s.current = nil
	s.filterOptions = domain.FilterOptions{}
}

// StateStore keeps the OrderState of the most recently used sessions.
type StateStore struct {
	mu      sync.Mutex
	cache   *lru.Cache
	metrics Metrics
}

// NewStateStore creates a store holding at most size sessions.
func NewStateStore(size int, metrics Metrics) (*StateStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &StateStore{cache: cache, metrics: metricsOrNoop(metrics)}, nil
}

// Get returns the state of sessionID, creating it on first use.
func (s *StateStore) Get(sessionID string) *OrderState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.cache.Get(sessionID); ok {
		return value.(*OrderState)
	}
	state := NewOrderState()
	s.cache.Add(sessionID, state)
	s.metrics.SetSessionsCached(s.cache.Len())
	return state
}

// Delete forgets sessionID.
func (s *StateStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(sessionID)
	s.metrics.SetSessionsCached(s.cache.Len())
}

func (s *StateStore) Len() int {
	return s.cache.Len()
}
