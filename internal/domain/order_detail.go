package domain

// FacilityAddress is the postal address of a facility.
type FacilityAddress struct {
	FacilityID      string `json:"facilityId"`
	FacilityName    string `json:"facilityName,omitempty"`
	ToName          string `json:"toName,omitempty"`
	Address1        string `json:"address1,omitempty"`
	Address2        string `json:"address2,omitempty"`
	City            string `json:"city,omitempty"`
	StateProvinceID string `json:"stateProvinceGeoId,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	CountryGeoID    string `json:"countryGeoId,omitempty"`
	ContactNumber   string `json:"contactNumber,omitempty"`
}

// CarrierShipmentMethod is a carrier and shipment method enabled for a product store.
type CarrierShipmentMethod struct {
	PartyID              string `json:"partyId"`
	ShipmentMethodTypeID string `json:"shipmentMethodTypeId"`
	Description          string `json:"description,omitempty"`
	SequenceNum          int    `json:"sequenceNum,omitempty"`
}

// OrderDetailItem is an item of a single transfer order.
type OrderDetailItem struct {
	OrderItemSeqID      string   `json:"orderItemSeqId"`
	ProductID           string   `json:"productId,omitempty"`
	StatusID            string   `json:"statusId,omitempty"`
	Quantity            float64  `json:"quantity"`
	TotalIssuedQuantity *float64 `json:"totalIssuedQuantity,omitempty"`
	ShipGroupFacilityID string   `json:"oisgFacilityId,omitempty"`
	FacilityID          string   `json:"facilityId,omitempty"`
	OrderedQuantity     float64  `json:"orderedQuantity"`
	ShippedQuantity     float64  `json:"shippedQuantity"`
	PickedQuantity      float64  `json:"pickedQuantity"`
	ShippedQty          *float64 `json:"shippedQty,omitempty"`
	ReceivedQty         *float64 `json:"receivedQty,omitempty"`
}

// Normalize derives the quantity fields shown in the detail view.
func (i *OrderDetailItem) Normalize() {
	i.OrderedQuantity = i.Quantity
	i.ShippedQuantity = valueOrZero(i.TotalIssuedQuantity)
	i.PickedQuantity = 0
	i.FacilityID = i.ShipGroupFacilityID
}

// ApplyStat copies shipped and received quantities for the item of orderID, when known.
func (i *OrderDetailItem) ApplyStat(orderID string, stats ItemStats) {
	if stat, ok := stats.Lookup(ItemKey(orderID, i.OrderItemSeqID)); ok {
		i.ShippedQty = stat.ShippedQty
		i.ReceivedQty = stat.ReceivedQty
	}
}

// OrderDetail is the full view of one transfer order.
type OrderDetail struct {
	OrderID              string                  `json:"orderId"`
	OrderName            string                  `json:"orderName,omitempty"`
	OrderDate            string                  `json:"orderDate,omitempty"`
	StatusID             string                  `json:"statusId,omitempty"`
	ProductStoreID       string                  `json:"productStoreId,omitempty"`
	FacilityID           string                  `json:"facilityId,omitempty"`
	OrderFacilityID      string                  `json:"orderFacilityId,omitempty"`
	CarrierPartyID       string                  `json:"carrierPartyId,omitempty"`
	ShipmentMethodTypeID string                  `json:"shipmentMethodTypeId,omitempty"`
	ShipGroupSeqID       string                  `json:"shipGroupSeqId,omitempty"`
	CurrencyUom          string                  `json:"currencyUom,omitempty"`
	StatusFlowID         string                  `json:"statusFlowId,omitempty"`
	Items                []OrderDetailItem       `json:"items"`
	Shipments            []ShipmentSummary       `json:"shipments"`
	OriginFacility       *FacilityAddress        `json:"originFacility,omitempty"`
	DestinationFacility  *FacilityAddress        `json:"destinationFacility,omitempty"`
	CarrierMethods       []CarrierShipmentMethod `json:"carrierMethods,omitempty"`
}

// DetailDefaults are configured values for header fields the order backend may omit.
type DetailDefaults struct {
	FacilityID           string `yaml:"facility_id" json:"facilityId,omitempty"`
	OrderFacilityID      string `yaml:"order_facility_id" json:"orderFacilityId,omitempty"`
	CarrierPartyID       string `yaml:"carrier_party_id" json:"carrierPartyId,omitempty"`
	ShipmentMethodTypeID string `yaml:"shipment_method_type_id" json:"shipmentMethodTypeId,omitempty"`
	ShipGroupSeqID       string `yaml:"ship_group_seq_id" json:"shipGroupSeqId,omitempty"`
	CurrencyUom          string `yaml:"currency_uom" json:"currencyUom,omitempty"`
	StatusFlowID         string `yaml:"status_flow_id" json:"statusFlowId,omitempty"`
}

// ApplyDefaults fills empty header fields from d. Values sent by the backend are kept.
func (o *OrderDetail) ApplyDefaults(d DetailDefaults) {
	fill := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	fill(&o.FacilityID, d.FacilityID)
	fill(&o.OrderFacilityID, d.OrderFacilityID)
	fill(&o.CarrierPartyID, d.CarrierPartyID)
	fill(&o.ShipmentMethodTypeID, d.ShipmentMethodTypeID)
	fill(&o.ShipGroupSeqID, d.ShipGroupSeqID)
	fill(&o.CurrencyUom, d.CurrencyUom)
	fill(&o.StatusFlowID, d.StatusFlowID)
}

// NormalizeItems normalizes the quantity fields of every item.
func (o *OrderDetail) NormalizeItems() {
	for i := range o.Items {
		o.Items[i].Normalize()
	}
}

// ApplyItemStats joins item statistics into every item.
func (o *OrderDetail) ApplyItemStats(stats ItemStats) {
	for i := range o.Items {
		o.Items[i].ApplyStat(o.OrderID, stats)
	}
}

// ItemKeys returns the identity keys of the order's items.
func (o *OrderDetail) ItemKeys() []string {
	keys := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		keys = append(keys, ItemKey(o.OrderID, item.OrderItemSeqID))
	}
	return keys
}

// ProductIDs returns the product ids of the order's items in item order.
func (o *OrderDetail) ProductIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if item.ProductID != "" {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// AddressFacilityIDs returns the facility ids whose addresses the detail view shows.
func (o *OrderDetail) AddressFacilityIDs() []string {
	ids := make([]string, 0, 2)
	for _, id := range []string{o.FacilityID, o.OrderFacilityID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// AssignFacilityAddresses sets the origin and destination addresses by facility id.
// The order facility or any item ship-group facility is the origin; the order's
// destination facility is the destination. An address matching both ends sets both.
// Other addresses are ignored.
func (o *OrderDetail) AssignFacilityAddresses(addresses []FacilityAddress) {
	origins := map[string]bool{}
	if o.FacilityID != "" {
		origins[o.FacilityID] = true
	}
	for _, item := range o.Items {
		if item.FacilityID != "" {
			origins[item.FacilityID] = true
		}
	}

	for i := range addresses {
		address := addresses[i]
		if address.FacilityID == "" {
			continue
		}
		if address.FacilityID == o.OrderFacilityID {
			o.DestinationFacility = &address
		}
		if origins[address.FacilityID] {
			o.OriginFacility = &address
		}
	}
}
