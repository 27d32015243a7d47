package domain

// ListOutcome names the decision taken for the cached order list after a search.
type ListOutcome string

const (
	// FreshFirstPage replaces the cached list with the first page.
	FreshFirstPage ListOutcome = "fresh-first-page"
	// Paginating appends a later page to the cached list.
	Paginating ListOutcome = "paginating"
	// ErrorReset empties the list after a failed search on changed filters.
	ErrorReset ListOutcome = "error-reset"
	// ErrorRetain keeps the cached list after a failed search.
	ErrorRetain ListOutcome = "error-retain"
)

// ListDecision is the outcome together with the list to commit.
type ListDecision struct {
	Outcome ListOutcome
	List    OrderList
}

// PageResult is a successfully fetched page of the order list.
type PageResult struct {
	Start      int
	Orders     []OrderSummary
	OrderCount int
	ItemCount  int
}

// DecideListOutcome chooses the list to commit. page is nil when the search failed.
// The prior list is never modified.
func DecideListOutcome(prior OrderList, page *PageResult, isFilterUpdated bool, viewIndex int) ListDecision {
	if page == nil {
		if isFilterUpdated && viewIndex == 0 {
			return ListDecision{Outcome: ErrorReset, List: OrderList{Orders: []OrderSummary{}}}
		}
		return ListDecision{Outcome: ErrorRetain, List: prior.Clone()}
	}

	if page.Start > 0 {
		list := prior.Clone()
		list.Orders = append(list.Orders, page.Orders...)
		list.OrderCount = page.OrderCount
		list.ItemCount = page.ItemCount
		return ListDecision{Outcome: Paginating, List: list}
	}

	orders := page.Orders
	if orders == nil {
		orders = []OrderSummary{}
	}
	return ListDecision{
		Outcome: FreshFirstPage,
		List:    OrderList{Orders: orders, OrderCount: page.OrderCount, ItemCount: page.ItemCount},
	}
}
