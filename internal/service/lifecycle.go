package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avdeev-dev/fulfillment-service/internal/entities"
	"github.com/avdeev-dev/fulfillment-service/pkg/keylock"
	"github.com/avdeev-dev/fulfillment-service/pkg/utils"
)

type LifecycleRepo interface {
	GetOrderByID(ctx context.Context, orderUID string) (entities.Order, error)

	// UpdateOrderStatus and UpdateShipment are compare-and-swap operations:
	// they return entities.ErrStatusConflict when expected no longer matches.
	UpdateOrderStatus(ctx context.Context, orderUID string, expected, next entities.OrderStatus) error
	CreateShipment(ctx context.Context, orderUID string) error
	GetShipment(ctx context.Context, orderUID string) (entities.Shipment, error)
	UpdateShipment(ctx context.Context, orderUID string, expected, next entities.ShipmentStatus, upd entities.ShipmentUpdate) error
}

// Subscriber consumes lifecycle transition events. Subscribers are invoked
// after the transition is committed and outside the per-order lock; they must
// never fail the transition.
type Subscriber interface {
	OnTransition(ctx context.Context, order entities.Order, kind entities.TransitionKind)
}

type lifecycleService struct {
	logger *slog.Logger
	repo   LifecycleRepo
	locks  *keylock.KeyLock
	subs   []Subscriber
}

func NewLifecycleService(logger *slog.Logger, repo LifecycleRepo, subs ...Subscriber) *lifecycleService {
	return &lifecycleService{
		logger: logger.With(slog.String("service", "lifecycle")),
		repo:   repo,
		locks:  keylock.New(),
		subs:   subs,
	}
}

func (s *lifecycleService) GetOrderByID(ctx context.Context, orderUID string) (entities.Order, error) {
	var order entities.Order
	fn := func() error {
		var err error
		order, err = s.repo.GetOrderByID(ctx, orderUID)
		return err
	}
	cfg := utils.RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxAttempts:  3,
		Multiplier:   2,
	}
	if err := utils.Retry(cfg, fn, entities.ErrOrderNotFound); err != nil {
		return entities.Order{}, err
	}
	return order, nil
}

// UpdateOrderStatus applies an order transition. Cancelling an already
// cancelled order is a no-op; override skips the delivered-shipment
// precondition of COMPLETED (operator escape hatch). A lost compare-and-swap
// race is retried once against the re-read state before the conflict
// surfaces.
func (s *lifecycleService) UpdateOrderStatus(ctx context.Context, orderUID string, next entities.OrderStatus, override bool) (entities.Order, error) {
	order, kind, applied, err := s.applyOrderTransition(ctx, orderUID, next, override)
	if errors.Is(err, entities.ErrStatusConflict) {
		order, kind, applied, err = s.applyOrderTransition(ctx, orderUID, next, override)
	}
	if err != nil {
		return entities.Order{}, err
	}

	if applied {
		s.emit(ctx, order, kind)
	}
	return order, nil
}

func (s *lifecycleService) applyOrderTransition(ctx context.Context, orderUID string, next entities.OrderStatus, override bool) (entities.Order, entities.TransitionKind, bool, error) {
	s.locks.Lock(orderUID)
	defer s.locks.Unlock(orderUID)

	order, err := s.repo.GetOrderByID(ctx, orderUID)
	if err != nil {
		return entities.Order{}, "", false, err
	}

	if order.Status == entities.OrderStatusCancelled && next == entities.OrderStatusCancelled {
		// Idempotent cancel.
		return order, "", false, nil
	}

	if !order.Status.CanTransitionTo(next) {
		return entities.Order{}, "", false,
			fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, order.Status, next)
	}

	switch next {
	case entities.OrderStatusProcessing:
		if !order.PaymentConfirmed {
			return entities.Order{}, "", false,
				fmt.Errorf("%w: payment not confirmed", entities.ErrInvalidTransition)
		}
	case entities.OrderStatusCompleted:
		if !override && (order.Shipment == nil || order.Shipment.Status != entities.ShipmentStatusDelivered) {
			return entities.Order{}, "", false,
				fmt.Errorf("%w: shipment not delivered", entities.ErrInvalidTransition)
		}
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderUID, order.Status, next); err != nil {
		return entities.Order{}, "", false, err
	}

	if next == entities.OrderStatusProcessing {
		// The shipment record is born with the first PROCESSING transition.
		if err := s.repo.CreateShipment(ctx, orderUID); err != nil {
			return entities.Order{}, "", false, err
		}
	}

	prev := order.Status
	order.Status = next
	kind := orderTransitionKind(next)

	s.logger.InfoContext(ctx, "order transition applied",
		slog.String("order_uid", orderUID),
		slog.String("from", prev.String()),
		slog.String("to", next.String()),
	)
	orderTransitions.WithLabelValues(string(kind)).Inc()

	return order, kind, true, nil
}

// UpdateShipmentStatus applies a shipment transition driven by a carrier
// webhook or tracking event. Out-of-order events are rejected as invalid
// transitions rather than queued.
func (s *lifecycleService) UpdateShipmentStatus(ctx context.Context, orderUID string, next entities.ShipmentStatus, upd entities.ShipmentUpdate) (entities.Order, error) {
	order, kind, applied, err := s.applyShipmentTransition(ctx, orderUID, next, upd)
	if errors.Is(err, entities.ErrStatusConflict) {
		order, kind, applied, err = s.applyShipmentTransition(ctx, orderUID, next, upd)
	}
	if err != nil {
		return entities.Order{}, err
	}

	if applied {
		s.emit(ctx, order, kind)
	}
	return order, nil
}

func (s *lifecycleService) applyShipmentTransition(ctx context.Context, orderUID string, next entities.ShipmentStatus, upd entities.ShipmentUpdate) (entities.Order, entities.TransitionKind, bool, error) {
	s.locks.Lock(orderUID)
	defer s.locks.Unlock(orderUID)

	order, err := s.repo.GetOrderByID(ctx, orderUID)
	if err != nil {
		return entities.Order{}, "", false, err
	}

	if order.Shipment == nil {
		return entities.Order{}, "", false,
			fmt.Errorf("%w: order has no shipment", entities.ErrInvalidTransition)
	}

	shipment := *order.Shipment
	if !shipment.Status.CanTransitionTo(next) {
		return entities.Order{}, "", false,
			fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, shipment.Status, next)
	}

	if err := s.repo.UpdateShipment(ctx, orderUID, shipment.Status, next, upd); err != nil {
		return entities.Order{}, "", false, err
	}

	shipment.Status = next
	if upd.TrackingNumber != "" {
		shipment.TrackingNumber = upd.TrackingNumber
	}
	if upd.FailureReason != "" {
		shipment.FailureReason = upd.FailureReason
	}
	if upd.PickupPoint != "" {
		shipment.PickupPoint = upd.PickupPoint
	}
	order.Shipment = &shipment

	kind := shipmentTransitionKind(next)

	s.logger.InfoContext(ctx, "shipment transition applied",
		slog.String("order_uid", orderUID),
		slog.String("to", next.String()),
	)
	orderTransitions.WithLabelValues(string(kind)).Inc()

	return order, kind, true, nil
}

// emit fans the event out to subscribers. Exactly one event per applied
// transition; delivery is best-effort by contract.
func (s *lifecycleService) emit(ctx context.Context, order entities.Order, kind entities.TransitionKind) {
	for _, sub := range s.subs {
		sub.OnTransition(ctx, order, kind)
	}
}

func orderTransitionKind(next entities.OrderStatus) entities.TransitionKind {
	switch next {
	case entities.OrderStatusProcessing:
		return entities.TransitionProcessing
	case entities.OrderStatusCompleted:
		return entities.TransitionCompleted
	case entities.OrderStatusCancelled:
		return entities.TransitionCancelled
	default:
		return entities.TransitionConfirmed
	}
}

func shipmentTransitionKind(next entities.ShipmentStatus) entities.TransitionKind {
	switch next {
	case entities.ShipmentStatusShipped:
		return entities.TransitionShipped
	case entities.ShipmentStatusDelivered:
		return entities.TransitionDelivered
	default:
		return entities.TransitionDeliveryFailed
	}
}
