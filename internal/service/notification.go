package service

import (
	"context"
	"log/slog"

	"github.com/avdeev-dev/fulfillment-service/internal/entities"
)

// NotificationStore records dispatched (order, kind) pairs. CreateNotification
// reports whether the pair was recorded for the first time; the insert is the
// check-and-set behind the at-most-once guarantee.
type NotificationStore interface {
	CreateNotification(ctx context.Context, orderUID string, kind entities.TransitionKind) (bool, error)
}

// Sender is the external notification capability.
type Sender interface {
	Send(ctx context.Context, templateID, recipient string, data map[string]any) error
}

type notificationDispatcher struct {
	logger         *slog.Logger
	store          NotificationStore
	sender         Sender
	notifyOnCancel bool
}

func NewNotificationDispatcher(logger *slog.Logger, store NotificationStore, sender Sender, notifyOnCancel bool) *notificationDispatcher {
	return &notificationDispatcher{
		logger:         logger.With(slog.String("service", "notifications")),
		store:          store,
		sender:         sender,
		notifyOnCancel: notifyOnCancel,
	}
}

// OnTransition dispatches at most one notification per (order, transition
// kind). Failures are logged and never propagate: the order state is the
// source of truth and email is best-effort.
func (d *notificationDispatcher) OnTransition(ctx context.Context, order entities.Order, kind entities.TransitionKind) {
	templateID, ok := d.templateFor(order, kind)
	if !ok {
		// Transition kinds without a template deliberately stay silent.
		return
	}

	created, err := d.store.CreateNotification(ctx, order.OrderUID, kind)
	if err != nil {
		// Without the record a send could duplicate on replay; skip instead.
		d.logger.WarnContext(ctx, "notification record unavailable, skipping dispatch",
			slog.String("order_uid", order.OrderUID),
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
		notificationFailures.Inc()
		return
	}
	if !created {
		d.logger.DebugContext(ctx, "notification already dispatched",
			slog.String("order_uid", order.OrderUID),
			slog.String("kind", string(kind)),
		)
		return
	}

	if err := d.sender.Send(ctx, templateID, order.Customer.Email, contextData(order)); err != nil {
		d.logger.WarnContext(ctx, "failed to send notification",
			slog.String("order_uid", order.OrderUID),
			slog.String("template_id", templateID),
			slog.Any("error", err),
		)
		notificationFailures.Inc()
		return
	}

	notificationsSent.WithLabelValues(string(kind)).Inc()
}

func (d *notificationDispatcher) templateFor(order entities.Order, kind entities.TransitionKind) (string, bool) {
	switch kind {
	case entities.TransitionConfirmed:
		return "order-confirmation", true
	case entities.TransitionShipped:
		return "order-shipped", true
	case entities.TransitionDelivered:
		if order.Shipment != nil && order.Shipment.PickupPoint != "" {
			return "order-ready-for-pickup", true
		}
		return "order-delivered", true
	case entities.TransitionDeliveryFailed:
		return "delivery-failed", true
	case entities.TransitionCancelled:
		if d.notifyOnCancel {
			return "order-cancelled", true
		}
		return "", false
	default:
		return "", false
	}
}

func contextData(order entities.Order) map[string]any {
	items := make([]map[string]any, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, map[string]any{
			"name":             it.Name,
			"quantity":         it.Quantity,
			"unit_price_cents": it.UnitPriceCents,
		})
	}

	data := map[string]any{
		"order_number":    order.Number,
		"customer_name":   order.Customer.Name,
		"items":           items,
		"subtotal_cents":  order.SubtotalCents,
		"shipping_cents":  order.ShippingCents,
		"total_cents":     order.TotalCents,
		"shipping_method": order.Shipping.Name,
	}

	if order.Shipment != nil {
		if order.Shipment.TrackingNumber != "" {
			data["tracking_number"] = order.Shipment.TrackingNumber
		}
		if order.Shipment.PickupPoint != "" {
			data["pickup_point"] = order.Shipment.PickupPoint
		}
		if order.Shipment.FailureReason != "" {
			data["failure_reason"] = order.Shipment.FailureReason
		}
	}

	return data
}
