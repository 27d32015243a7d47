package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func TestItemKey_Format(t *testing.T) {
	assert.Equal(t, "TO10001_00101", ItemKey("TO10001", "00101"))
	assert.Equal(t, "A_B_C", ItemKey("A_B", "C"))
	assert.Equal(t, "_", ItemKey("", ""))
}

func TestItemStats_UnknownKeyLeavesRowUnset(t *testing.T) {
	stats := ItemStats{
		ItemKey("TO1", "01"): {ShippedQty: qty(3), ReceivedQty: qty(2)},
	}
	known := OrderItemRow{OrderID: "TO1", OrderItemSeqID: "01", Quantity: qty(5)}
	unknown := OrderItemRow{OrderID: "TO1", OrderItemSeqID: "02", Quantity: qty(5)}

	known.ApplyStat(stats)
	unknown.ApplyStat(stats)

	require.NotNil(t, known.ShippedQty)
	assert.Equal(t, 3.0, *known.ShippedQty)
	assert.Equal(t, 2.0, *known.ReceivedQty)
	assert.Nil(t, unknown.ShippedQty)
	assert.Nil(t, unknown.ReceivedQty)

	var nilStats ItemStats
	_, ok := nilStats.Lookup("TO1_01")
	assert.False(t, ok)
}

func TestOrderSummary_ComputeTotalsWithMissingFields(t *testing.T) {
	tests := []struct {
		name                               string
		items                              []OrderItemRow
		wantOrdered, wantShipped, wantRecv float64
	}{
		{
			name:  "no items",
			items: nil,
		},
		{
			name: "all fields present",
			items: []OrderItemRow{
				{Quantity: qty(5), ShippedQty: qty(3), ReceivedQty: qty(1)},
				{Quantity: qty(2), ShippedQty: qty(2), ReceivedQty: qty(2)},
			},
			wantOrdered: 7, wantShipped: 5, wantRecv: 3,
		},
		{
			name: "missing fields contribute zero",
			items: []OrderItemRow{
				{Quantity: qty(4)},
				{ShippedQty: qty(1)},
				{ReceivedQty: qty(6)},
				{},
			},
			wantOrdered: 4, wantShipped: 1, wantRecv: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := OrderSummary{Items: tt.items, TotalOrdered: 99}
			summary.ComputeTotals()

			assert.Equal(t, tt.wantOrdered, summary.TotalOrdered)
			assert.Equal(t, tt.wantShipped, summary.TotalShipped)
			assert.Equal(t, tt.wantRecv, summary.TotalReceived)
		})
	}
}

func TestOrderQuery_Merge(t *testing.T) {
	base := DefaultOrderQuery()
	base.Start = 40
	base.QueryString = "stored"

	t.Run("no overrides", func(t *testing.T) {
		assert.Equal(t, base, base.Merge(FindOrdersParams{}))
	})

	t.Run("explicit start and view size", func(t *testing.T) {
		q := "TO1"
		merged := base.Merge(FindOrdersParams{Start: intPtr(0), ViewSize: intPtr(50), QueryString: &q})
		assert.Equal(t, 0, merged.Start)
		assert.Equal(t, 50, merged.ViewSize)
		assert.Equal(t, "TO1", merged.QueryString)
		assert.Equal(t, 40, base.Start, "base query must not change")
	})

	t.Run("view index derives start", func(t *testing.T) {
		merged := base.Merge(FindOrdersParams{ViewIndex: intPtr(3)})
		assert.Equal(t, 3*DefaultViewSize, merged.Start)
	})

	t.Run("start wins over view index", func(t *testing.T) {
		merged := base.Merge(FindOrdersParams{ViewIndex: intPtr(3), Start: intPtr(10)})
		assert.Equal(t, 10, merged.Start)
	})
}

func TestSummaryFromGroup(t *testing.T) {
	group := SearchGroup{
		GroupValue: "BROOKLYN_P1",
		DocList: DocList{Docs: []OrderDoc{
			{
				OrderID: "TO1", OrderItemSeqID: "01", OrderName: "Restock", OrderDate: "2024-05-01",
				OrderStatusID: "ORDER_APPROVED", OrderStatusDesc: "Approved",
				CustomerPartyName: "Jane", CustomerEmailID: "jane@example.com",
				FacilityID: "BROOKLYN", FacilityName: "Brooklyn", OrderFacilityID: "QUEENS", OrderFacilityName: "Queens",
				ProductID: "P1", Quantity: qty(2),
			},
			{OrderID: "TO1", OrderItemSeqID: "02", ProductID: "P2"},
		}},
	}

	byOrder := SummaryFromGroup(group, false)
	assert.Equal(t, "TO1", byOrder.OrderID)
	assert.Equal(t, OrderStatus{ID: "ORDER_APPROVED", Description: "Approved"}, byOrder.Status)
	assert.Equal(t, "jane@example.com", byOrder.Customer.EmailID)
	assert.Equal(t, FacilityRef{ID: "BROOKLYN", Name: "Brooklyn"}, byOrder.OriginFacility)
	assert.Equal(t, FacilityRef{ID: "QUEENS", Name: "Queens"}, byOrder.DestinationFacility)
	assert.Empty(t, byOrder.ProductID)
	require.Len(t, byOrder.Items, 2)
	assert.Equal(t, "TO1_02", byOrder.Items[1].Key())

	byProduct := SummaryFromGroup(group, true)
	assert.Equal(t, "P1", byProduct.ProductID)

	empty := SummaryFromGroup(SearchGroup{GroupValue: "x"}, false)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.OrderID)
}
