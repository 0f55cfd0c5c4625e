package entities

// MethodType classifies how an offer puts the parcel into the customer's hands.
type MethodType string

const (
	MethodPickup  MethodType = "pickup"
	MethodHome    MethodType = "home"
	MethodExpress MethodType = "express"
)

// ShippingOffer is computed per checkout request and never persisted on its
// own; the chosen offer is copied onto the order as a ShippingMethod.
type ShippingOffer struct {
	ServiceCode string
	Name        string
	Description string
	Type        MethodType
	PriceCents  int64
	// Estimated delivery window in business days.
	DeliveryDaysMin int
	DeliveryDaysMax int
}

// ShippingQuote is the engine result. Available=false is the explicit degraded
// outcome when the carrier is unreachable or misconfigured; it is not an error.
type ShippingQuote struct {
	Available bool
	Offers    []ShippingOffer
}
