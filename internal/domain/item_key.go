package domain

// ItemKeySeparator joins the order id and the item sequence id of an item key.
const ItemKeySeparator = "_"

// ItemKey builds the identity key of an order item, used verbatim to join item statistics.
func ItemKey(orderID, orderItemSeqID string) string {
	return orderID + ItemKeySeparator + orderItemSeqID
}

// ItemStat carries fulfilment statistics of one order item.
type ItemStat struct {
	ShippedQty  *float64 `json:"shippedQty,omitempty" bson:"shippedQty,omitempty"`
	ReceivedQty *float64 `json:"receivedQty,omitempty" bson:"receivedQty,omitempty"`
}

// ItemStats maps item keys to their statistics.
type ItemStats map[string]ItemStat

// Lookup returns the statistics for key. A nil map behaves as empty.
func (s ItemStats) Lookup(key string) (ItemStat, bool) {
	stat, ok := s[key]
	return stat, ok
}
