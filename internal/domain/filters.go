package domain

// Facet names requested for the filter dropdowns.
const (
	FacetOriginFacilityName      = "facilityNameFacet"
	FacetDestinationFacilityName = "orderFacilityNameFacet"
	FacetProductStoreID          = "productStoreIdFacet"
	FacetCarrierPartyID          = "carrierPartyIdFacet"
	FacetShipmentMethodTypeID    = "shipmentMethodTypeIdFacet"
	FacetOrderStatusDesc         = "orderStatusDescFacet"
)

// FilterFacets lists every facet field by facet name.
var FilterFacets = map[string]string{
	FacetOriginFacilityName:      "facilityName",
	FacetDestinationFacilityName: "orderFacilityName",
	FacetProductStoreID:          "productStoreId",
	FacetCarrierPartyID:          "carrierPartyId",
	FacetShipmentMethodTypeID:    "shipmentMethodTypeId",
	FacetOrderStatusDesc:         "orderStatusDesc",
}

// FilterOptions are the values offered for each filter.
type FilterOptions struct {
	OriginFacilities      []string `json:"originFacilities"`
	DestinationFacilities []string `json:"destinationFacilities"`
	ProductStores         []string `json:"productStores"`
	Carriers              []string `json:"carriers"`
	ShipmentMethods       []string `json:"shipmentMethods"`
	Statuses              []string `json:"statuses"`
}

// FilterOptionsFromFacets projects facet bucket values into filter options.
func FilterOptionsFromFacets(facets map[string]Facet) FilterOptions {
	values := func(name string) []string {
		buckets := facets[name].Buckets
		out := make([]string, 0, len(buckets))
		for _, b := range buckets {
			out = append(out, b.Val)
		}
		return out
	}

	return FilterOptions{
		OriginFacilities:      values(FacetOriginFacilityName),
		DestinationFacilities: values(FacetDestinationFacilityName),
		ProductStores:         values(FacetProductStoreID),
		Carriers:              values(FacetCarrierPartyID),
		ShipmentMethods:       values(FacetShipmentMethodTypeID),
		Statuses:              values(FacetOrderStatusDesc),
	}
}
