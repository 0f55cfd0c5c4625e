package handler

import (
	"time"

	"github.com/avdeev-dev/fulfillment-service/internal/entities"
)

// CheckoutRequest is the validated cart payload.
type CheckoutRequest struct {
	Customer           CustomerPayload `json:"customer" validate:"required"`
	Items              []CartItem      `json:"items" validate:"required,min=1,dive"`
	ShippingMethodCode string          `json:"shipping_method_code" validate:"required"`
}

type CustomerPayload struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,e164"`
	ZIP     string `json:"zip" validate:"required"`
	City    string `json:"city,omitempty"`
	Street  string `json:"street,omitempty"`
	Country string `json:"country" validate:"required,iso3166_1_alpha2"`
}

type CartItem struct {
	ProductID       string `json:"product_id" validate:"required"`
	VariantID       string `json:"variant_id,omitempty"`
	Name            string `json:"name" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	UnitPriceCents  int64  `json:"unit_price_cents" validate:"required,gt=0"`
	UnitWeightGrams int    `json:"unit_weight_grams" validate:"gte=0"`
}

// Order is the API representation of an order.
type Order struct {
	OrderUID string          `json:"order_uid"`
	Number   string          `json:"number"`
	Customer CustomerPayload `json:"customer"`
	Items    []CartItem      `json:"items"`

	ShippingMethod string `json:"shipping_method"`
	ShippingType   string `json:"shipping_type"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	ShippingCents  int64  `json:"shipping_cents"`
	TotalCents     int64  `json:"total_cents"`

	Status   string    `json:"status"`
	Shipment *Shipment `json:"shipment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Shipment struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	FailureReason  string `json:"failure_reason,omitempty"`
	PickupPoint    string `json:"pickup_point,omitempty"`
}

// StatusUpdateRequest drives an order status transition. Override is the
// documented operator escape hatch for completing without a delivered
// shipment.
type StatusUpdateRequest struct {
	Status   string `json:"status" validate:"required"`
	Override bool   `json:"override,omitempty"`
}

// ShipmentUpdateRequest is the carrier webhook payload.
type ShipmentUpdateRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	FailureReason  string `json:"failure_reason,omitempty"`
	PickupPoint    string `json:"pickup_point,omitempty"`
}

type QuoteRequest struct {
	DestinationZIP string `json:"destination_zip" validate:"required"`
	Country        string `json:"country" validate:"required,iso3166_1_alpha2"`
	WeightGrams    int    `json:"weight_grams" validate:"required,gt=0"`
}

type QuoteResponse struct {
	Available bool    `json:"available"`
	Offers    []Offer `json:"offers,omitempty"`
}

type Offer struct {
	ServiceCode     string `json:"service_code"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Type            string `json:"type"`
	PriceCents      int64  `json:"price_cents"`
	DeliveryDaysMin int    `json:"delivery_days_min,omitempty"`
	DeliveryDaysMax int    `json:"delivery_days_max,omitempty"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AdminAccountRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

type RateLimitStatus struct {
	Action     string `json:"action"`
	Identifier string `json:"identifier"`
	Count      int64  `json:"count"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

type IntegrationStatus struct {
	Configured   bool   `json:"configured"`
	BaseURL      string `json:"base_url,omitempty"`
	APIKeyLength int    `json:"api_key_length"`
}

func CartToEntity(req CheckoutRequest) entities.Cart {
	items := make([]entities.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, entities.OrderItem{
			ProductID:       it.ProductID,
			VariantID:       it.VariantID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			UnitPriceCents:  it.UnitPriceCents,
			UnitWeightGrams: it.UnitWeightGrams,
		})
	}

	return entities.Cart{
		Customer: entities.Customer{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
			Address: entities.Address{
				ZIP:     req.Customer.ZIP,
				City:    req.Customer.City,
				Street:  req.Customer.Street,
				Country: req.Customer.Country,
			},
		},
		Items:              items,
		ShippingMethodCode: req.ShippingMethodCode,
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]CartItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, CartItem{
			ProductID:       it.ProductID,
			VariantID:       it.VariantID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			UnitPriceCents:  it.UnitPriceCents,
			UnitWeightGrams: it.UnitWeightGrams,
		})
	}

	order := Order{
		OrderUID: o.OrderUID,
		Number:   o.Number,
		Customer: CustomerPayload{
			Name:    o.Customer.Name,
			Email:   o.Customer.Email,
			Phone:   o.Customer.Phone,
			ZIP:     o.Customer.Address.ZIP,
			City:    o.Customer.Address.City,
			Street:  o.Customer.Address.Street,
			Country: o.Customer.Address.Country,
		},
		Items:          items,
		ShippingMethod: o.Shipping.Name,
		ShippingType:   string(o.Shipping.Type),
		SubtotalCents:  o.SubtotalCents,
		ShippingCents:  o.ShippingCents,
		TotalCents:     o.TotalCents,
		Status:         o.Status.String(),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	if o.Shipment != nil {
		order.Shipment = &Shipment{
			Status:         o.Shipment.Status.String(),
			TrackingNumber: o.Shipment.TrackingNumber,
			FailureReason:  o.Shipment.FailureReason,
			PickupPoint:    o.Shipment.PickupPoint,
		}
	}

	return order
}

func QuoteEntityToJSON(q entities.ShippingQuote) QuoteResponse {
	res := QuoteResponse{Available: q.Available}
	if len(q.Offers) > 0 {
		res.Offers = make([]Offer, 0, len(q.Offers))
		for _, o := range q.Offers {
			res.Offers = append(res.Offers, Offer{
				ServiceCode:     o.ServiceCode,
				Name:            o.Name,
				Description:     o.Description,
				Type:            string(o.Type),
				PriceCents:      o.PriceCents,
				DeliveryDaysMin: o.DeliveryDaysMin,
				DeliveryDaysMax: o.DeliveryDaysMax,
			})
		}
	}
	return res
}
