package repo

import (
	"database/sql"
	"time"

	"github.com/avdeev-dev/fulfillment-service/internal/entities"
)

type Order struct {
	OrderUID      string `db:"order_uid"`
	Number        string `db:"number"`
	CustomerName  string `db:"customer_name"`
	CustomerEmail string `db:"customer_email"`
	CustomerPhone sql.NullString `db:"customer_phone"`
	ZIP           string         `db:"zip"`
	City          sql.NullString `db:"city"`
	Street        sql.NullString `db:"street"`
	Country       string         `db:"country"`

	ShippingCode string `db:"shipping_code"`
	ShippingName string `db:"shipping_name"`
	ShippingType string `db:"shipping_type"`

	SubtotalCents int64 `db:"subtotal_cents"`
	ShippingCents int64 `db:"shipping_cents"`
	TotalCents    int64 `db:"total_cents"`

	Status           string         `db:"status"`
	PaymentConfirmed bool           `db:"payment_confirmed"`
	AuthorizationID  sql.NullString `db:"authorization_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type OrderItem struct {
	OrderUID        string         `db:"order_uid"`
	ProductID       string         `db:"product_id"`
	VariantID       sql.NullString `db:"variant_id"`
	Name            string         `db:"name"`
	Quantity        int            `db:"quantity"`
	UnitPriceCents  int64          `db:"unit_price_cents"`
	UnitWeightGrams int            `db:"unit_weight_grams"`
}

type Shipment struct {
	OrderUID       string         `db:"order_uid"`
	Status         string         `db:"status"`
	TrackingNumber sql.NullString `db:"tracking_number"`
	FailureReason  sql.NullString `db:"failure_reason"`
	PickupPoint    sql.NullString `db:"pickup_point"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func OrderToEntity(o Order, items []OrderItem, shipment *Shipment) entities.Order {
	order := entities.Order{
		OrderUID: o.OrderUID,
		Number:   o.Number,
		Customer: entities.Customer{
			Name:  o.CustomerName,
			Email: o.CustomerEmail,
			Phone: nullStringToString(o.CustomerPhone),
			Address: entities.Address{
				ZIP:     o.ZIP,
				City:    nullStringToString(o.City),
				Street:  nullStringToString(o.Street),
				Country: o.Country,
			},
		},
		Shipping: entities.ShippingMethod{
			ServiceCode: o.ShippingCode,
			Name:        o.ShippingName,
			Type:        entities.MethodType(o.ShippingType),
			PriceCents:  o.ShippingCents,
		},
		SubtotalCents:    o.SubtotalCents,
		ShippingCents:    o.ShippingCents,
		TotalCents:       o.TotalCents,
		Status:           entities.OrderStatus(o.Status),
		PaymentConfirmed: o.PaymentConfirmed,
		AuthorizationID:  nullStringToString(o.AuthorizationID),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	if shipment != nil {
		s := ShipmentToEntity(*shipment)
		order.Shipment = &s
	}

	return order
}

func ItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		ProductID:       i.ProductID,
		VariantID:       nullStringToString(i.VariantID),
		Name:            i.Name,
		Quantity:        i.Quantity,
		UnitPriceCents:  i.UnitPriceCents,
		UnitWeightGrams: i.UnitWeightGrams,
	}
}

func ShipmentToEntity(s Shipment) entities.Shipment {
	return entities.Shipment{
		OrderUID:       s.OrderUID,
		Status:         entities.ShipmentStatus(s.Status),
		TrackingNumber: nullStringToString(s.TrackingNumber),
		FailureReason:  nullStringToString(s.FailureReason),
		PickupPoint:    nullStringToString(s.PickupPoint),
		UpdatedAt:      s.UpdatedAt,
	}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
