package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/wms-platform/transfers/internal/domain"
	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/resilience"
)

const (
	searchPath = "/api/search/query"

	// groupLimit caps the documents returned per group; a transfer order rarely has more items.
	groupLimit = 10000

	transferOrderFilter = "docType:ORDER AND orderTypeId:TRANSFER_ORDER"
)

var searchFields = []string{
	"orderId", "orderName", "productId", "customerPartyName", "facilityName", "orderFacilityName",
}

type searchEnvelope struct {
	JSON searchRequest `json:"json"`
}

type searchRequest struct {
	Query  string                  `json:"query"`
	Filter []string                `json:"filter,omitempty"`
	Params searchParams            `json:"params"`
	Facet  map[string]facetRequest `json:"facet,omitempty"`
}

type searchParams struct {
	DefType      string `json:"defType,omitempty"`
	QueryFields  string `json:"qf,omitempty"`
	Rows         int    `json:"rows"`
	Start        int    `json:"start"`
	Sort         string `json:"sort,omitempty"`
	Group        bool   `json:"group,omitempty"`
	GroupField   string `json:"group.field,omitempty"`
	GroupLimit   int    `json:"group.limit,omitempty"`
	GroupNGroups bool   `json:"group.ngroups,omitempty"`
}

type facetRequest struct {
	Type     string `json:"type"`
	Field    string `json:"field"`
	MinCount int    `json:"mincount"`
	Limit    int    `json:"limit"`
}

// searchResponse keeps facets raw: the facet block also carries scalar entries such as "count".
type searchResponse struct {
	Grouped map[string]*domain.GroupResult `json:"grouped"`
	Facets  map[string]json.RawMessage     `json:"facets"`
	Error   *searchError                   `json:"error,omitempty"`
}

type searchError struct {
	Msg  string `json:"msg"`
	Code int    `json:"code"`
}

// SearchClient queries the order search index
type SearchClient struct {
	client *ServiceClient
}

// NewSearchClient creates an instrumented search client
func NewSearchClient(config ClientConfig, logger *logging.Logger, metrics DownstreamMetrics, breaker *resilience.CircuitBreaker) *SearchClient {
	if config.Service == "" {
		config.Service = "search"
	}
	return &SearchClient{client: NewServiceClient(config, logger, metrics, breaker)}
}

// FindOrders runs a grouped, optionally faceted, order query.
func (c *SearchClient) FindOrders(ctx context.Context, query domain.OrderQuery) (*domain.SearchResponse, error) {
	var resp searchResponse
	if err := c.client.doRequest(ctx, "POST", searchPath, searchEnvelope{JSON: buildOrderQuery(query)}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, &PayloadError{Message: fmt.Sprintf("%s (code %d)", resp.Error.Msg, resp.Error.Code)}
	}
	return &domain.SearchResponse{Grouped: resp.Grouped, Facets: decodeFacets(resp.Facets)}, nil
}

func decodeFacets(raw map[string]json.RawMessage) map[string]domain.Facet {
	if len(raw) == 0 {
		return nil
	}
	facets := make(map[string]domain.Facet, len(raw))
	for name, data := range raw {
		if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			continue
		}
		var facet domain.Facet
		if err := json.Unmarshal(data, &facet); err != nil {
			continue
		}
		facets[name] = facet
	}
	return facets
}

// buildOrderQuery translates an order query into the search request body.
func buildOrderQuery(query domain.OrderQuery) searchRequest {
	req := searchRequest{
		Query:  "*:*",
		Filter: orderFilters(query.AppliedFilters),
		Params: searchParams{
			Rows:         query.ViewSize,
			Start:        query.Start,
			Sort:         query.Sort,
			Group:        true,
			GroupField:   query.GroupBy,
			GroupLimit:   groupLimit,
			GroupNGroups: true,
		},
	}

	if q := strings.TrimSpace(query.QueryString); q != "" {
		req.Query = q
		req.Params.DefType = "edismax"
		req.Params.QueryFields = strings.Join(searchFields, " ")
	}

	if query.FetchFacets {
		req.Facet = make(map[string]facetRequest, len(domain.FilterFacets))
		for name, field := range domain.FilterFacets {
			req.Facet[name] = facetRequest{Type: "terms", Field: field, MinCount: 1, Limit: -1}
		}
	}
	return req
}

func orderFilters(f domain.AppliedFilters) []string {
	filters := []string{transferOrderFilter}
	add := func(field string, values []string) {
		if len(values) == 0 {
			return
		}
		quoted := make([]string, 0, len(values))
		for _, v := range values {
			quoted = append(quoted, quote(v))
		}
		sort.Strings(quoted)
		filters = append(filters, fmt.Sprintf("%s:(%s)", field, strings.Join(quoted, " OR ")))
	}

	add("orderStatusDesc", f.Statuses)
	add("facilityName", f.OriginFacilities)
	add("orderFacilityName", f.DestinationFacilities)
	add("carrierPartyId", f.Carriers)
	add("shipmentMethodTypeId", f.ShipmentMethods)
	add("productStoreId", f.ProductStores)

	if f.DateFrom != "" || f.DateTo != "" {
		filters = append(filters, fmt.Sprintf("orderDate:[%s TO %s]", dateBound(f.DateFrom), dateBound(f.DateTo)))
	}
	return filters
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `"`, `\"`) + `"`
}

func dateBound(v string) string {
	if v == "" {
		return "*"
	}
	return quote(v)
}
