package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wms-platform/transfers/internal/domain"
	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/tracing"
)

// errNoGroups is returned when the search response carries no group for the query's grouping key.
var errNoGroups = errors.New("search response has no order groups")

// FindOrdersResult is the outcome of FindOrders. Err is a query failure, or nil.
// List is the list committed to the session in either case.
type FindOrdersResult struct {
	Response *domain.SearchResponse
	Err      error
	Query    domain.OrderQuery
	List     domain.OrderList
	Outcome  domain.ListOutcome
}

// OrderListService builds the paginated order list of a session.
type OrderListService struct {
	search     SearchClient
	stats      StatsService
	dispatcher *ProductDispatcher
	states     *StateStore
	logger     *logging.Logger
	metrics    Metrics
}

// NewOrderListService creates the order list service.
func NewOrderListService(
	search SearchClient,
	stats StatsService,
	dispatcher *ProductDispatcher,
	states *StateStore,
	logger *logging.Logger,
	metrics Metrics,
) *OrderListService {
	return &OrderListService{
		search:     search,
		stats:      stats,
		dispatcher: dispatcher,
		states:     states,
		logger:     logger.WithComponent("order-list"),
		metrics:    metricsOrNoop(metrics),
	}
}

// FindOrders runs the session query merged with params, enriches the page with item
// statistics and commits the page to the session list. A failed search keeps or
// clears the cached list and is reported in the result, never as a panic or lost list.
func (s *OrderListService) FindOrders(ctx context.Context, sessionID string, params domain.FindOrdersParams) *FindOrdersResult {
	start := time.Now()
	state := s.states.Get(sessionID)
	query := state.Query().Merge(params)

	ctx, span := tracing.StartSpan(ctx, tracerScope, "OrderListService.FindOrders",
		attribute.Int("query.start", query.Start),
		attribute.Int("query.view_size", query.ViewSize),
	)
	defer span.End()

	resp, err := s.search.FindOrders(ctx, query)
	var page *domain.PageResult
	var productIDs []string
	if err == nil {
		page, productIDs, err = s.buildPage(ctx, query, resp)
	}
	if err != nil {
		err = domain.QueryFailure("findOrders", err)
		s.logger.QueryFailed(ctx, "findOrders", err)
		tracing.RecordError(span, err)
	}

	decision := domain.DecideListOutcome(state.List(), page, params.IsFilterUpdated, params.ViewIndexValue())
	state.SetList(decision.List)
	span.SetAttributes(attribute.String("list.outcome", string(decision.Outcome)))
	s.metrics.RecordListOutcome(string(decision.Outcome))

	if page != nil {
		s.dispatcher.Dispatch(ctx, productIDs)
	}

	duration := time.Since(start)
	s.metrics.RecordAggregation("findOrders", duration)
	s.logger.Performance(ctx, "findOrders", duration, err == nil, map[string]any{
		"outcome": string(decision.Outcome),
		"start":   query.Start,
		"orders":  len(decision.List.Orders),
	})

	return &FindOrdersResult{
		Response: resp,
		Err:      err,
		Query:    query,
		List:     decision.List,
		Outcome:  decision.Outcome,
	}
}

// buildPage turns the grouped response into order summaries joined with item statistics.
// The product ids and item keys of the page are collected before any call is made.
func (s *OrderListService) buildPage(ctx context.Context, query domain.OrderQuery, resp *domain.SearchResponse) (*domain.PageResult, []string, error) {
	if resp == nil {
		return nil, nil, errNoGroups
	}
	container, ok := resp.Grouped[query.GroupBy]
	if !ok || container == nil || len(container.Groups) == 0 {
		return nil, nil, fmt.Errorf("%w for %q", errNoGroups, query.GroupBy)
	}

	productGrouped := query.IsProductGrouped()
	orders := make([]domain.OrderSummary, 0, len(container.Groups))
	var itemKeys, productIDs []string
	for _, group := range container.Groups {
		summary := domain.SummaryFromGroup(group, productGrouped)
		for _, item := range summary.Items {
			itemKeys = append(itemKeys, item.Key())
			if item.ProductID != "" {
				productIDs = append(productIDs, item.ProductID)
			}
		}
		orders = append(orders, summary)
	}

	stats := s.fetchItemStats(ctx, itemKeys)
	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].ApplyStat(stats)
		}
		orders[i].ComputeTotals()
	}

	return &domain.PageResult{
		Start:      query.Start,
		Orders:     orders,
		OrderCount: container.NGroups,
		ItemCount:  container.Matches,
	}, productIDs, nil
}

func (s *OrderListService) fetchItemStats(ctx context.Context, keys []string) domain.ItemStats {
	if s.stats == nil || len(keys) == 0 {
		return nil
	}
	stats, err := s.stats.FetchItemStats(ctx, keys)
	if err != nil {
		s.joinFailed(ctx, "itemStats", err)
		return nil
	}
	return stats
}

func (s *OrderListService) joinFailed(ctx context.Context, join string, err error) {
	s.logger.JoinFailed(ctx, join, domain.JoinFailure(join, err))
	s.metrics.RecordJoinFailure(join)
}

// FetchOrderFilters loads the facet values offered for each filter. A failed search is
// logged and leaves the stored options unchanged.
func (s *OrderListService) FetchOrderFilters(ctx context.Context, sessionID string) (domain.FilterOptions, error) {
	state := s.states.Get(sessionID)
	query := state.Query()
	query.Start = 0
	query.ViewSize = 0
	query.FetchFacets = true

	resp, err := s.search.FindOrders(ctx, query)
	if err != nil {
		err = domain.QueryFailure("fetchOrderFilters", err)
		s.logger.QueryFailed(ctx, "fetchOrderFilters", err)
		return state.FilterOptions(), err
	}

	var facets map[string]domain.Facet
	if resp != nil {
		facets = resp.Facets
	}
	options := domain.FilterOptionsFromFacets(facets)
	state.SetFilterOptions(options)
	return options, nil
}

// UpdateAppliedFilters stores filters on the session query and reloads the first page.
func (s *OrderListService) UpdateAppliedFilters(ctx context.Context, sessionID string, filters domain.AppliedFilters) *FindOrdersResult {
	s.states.Get(sessionID).SetAppliedFilters(filters)
	first := 0
	return s.FindOrders(ctx, sessionID, domain.FindOrdersParams{Start: &first, IsFilterUpdated: true})
}

// UpdateOrdersList replaces the cached list of the session.
func (s *OrderListService) UpdateOrdersList(sessionID string, list domain.OrderList) domain.OrderList {
	state := s.states.Get(sessionID)
	state.SetList(list)
	return state.List()
}

// ClearOrderState resets the session to its initial state.
func (s *OrderListService) ClearOrderState(sessionID string) {
	s.states.Get(sessionID).Reset()
}

// OrdersList returns the cached list of the session.
func (s *OrderListService) OrdersList(sessionID string) domain.OrderList {
	return s.states.Get(sessionID).List()
}

// FilterOptions returns the stored filter options of the session.
func (s *OrderListService) FilterOptions(sessionID string) domain.FilterOptions {
	return s.states.Get(sessionID).FilterOptions()
}

// Query returns the stored query of the session.
func (s *OrderListService) Query(sessionID string) domain.OrderQuery {
	return s.states.Get(sessionID).Query()
}
