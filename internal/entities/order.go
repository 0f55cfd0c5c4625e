package entities

import (
	"errors"
	"time"
)

type Address struct {
	ZIP     string
	City    string
	Street  string
	Country string
}

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address Address
}

type OrderItem struct {
	ProductID       string
	VariantID       string
	Name            string
	Quantity        int
	UnitPriceCents  int64
	UnitWeightGrams int
}

// ShippingMethod is the snapshot of the offer chosen at checkout. Later edits
// to the carrier table never alter a placed order.
type ShippingMethod struct {
	ServiceCode string
	Name        string
	Type        MethodType
	PriceCents  int64
}

type Order struct {
	OrderUID string
	// Number is the human-facing order reference, distinct from the storage key.
	Number string

	Customer Customer
	Items    []OrderItem

	Shipping      ShippingMethod
	SubtotalCents int64
	ShippingCents int64
	TotalCents    int64

	Status           OrderStatus
	PaymentConfirmed bool
	AuthorizationID  string

	Shipment *Shipment

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubtotalOf aggregates unit prices captured at purchase time.
func SubtotalOf(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitPriceCents * int64(it.Quantity)
	}
	return total
}

// WeightOf aggregates line item weights for carrier rating.
func WeightOf(items []OrderItem) int {
	var grams int
	for _, it := range items {
		grams += it.UnitWeightGrams * it.Quantity
	}
	return grams
}

type Shipment struct {
	OrderUID       string
	Status         ShipmentStatus
	TrackingNumber string
	FailureReason  string
	PickupPoint    string
	UpdatedAt      time.Time
}

// ShipmentUpdate carries the optional fields a carrier event may attach to a
// shipment transition.
type ShipmentUpdate struct {
	TrackingNumber string
	FailureReason  string
	PickupPoint    string
}

// Cart is the validated checkout input handed to the orchestrator.
type Cart struct {
	Customer           Customer
	Items              []OrderItem
	ShippingMethodCode string
}

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrShipmentNotFound = errors.New("shipment not found")

	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrStatusConflict means a concurrent transition won the compare-and-swap.
	ErrStatusConflict = errors.New("status conflict")

	ErrShippingUnavailable   = errors.New("shipping rates unavailable")
	ErrUnknownShippingMethod = errors.New("unknown shipping method")

	ErrPaymentUnavailable = errors.New("payment authorization unavailable")
	ErrPaymentDeclined    = errors.New("payment declined")
	// ErrPaymentUnconfirmed marks an authorization that came back neither
	// authorized nor declined; it requires operator reconciliation.
	ErrPaymentUnconfirmed = errors.New("payment authorization unconfirmed")
)
