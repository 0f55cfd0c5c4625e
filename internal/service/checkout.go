package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avdeev-dev/fulfillment-service/internal/config"
	"github.com/avdeev-dev/fulfillment-service/internal/entities"
	"github.com/avdeev-dev/fulfillment-service/internal/payment"
	"github.com/avdeev-dev/fulfillment-service/pkg/trm"

	"github.com/google/uuid"
)

type ShippingQuoter interface {
	Quote(ctx context.Context, destinationZIP, country string, weightGrams int) entities.ShippingQuote
}

type PaymentAuthorizer interface {
	Authorize(ctx context.Context, req payment.AuthorizationRequest) (payment.Authorization, error)
}

type CheckoutRepo interface {
	CreateOrder(ctx context.Context, o entities.Order) error
	CreateOrderItems(ctx context.Context, orderUID string, items []entities.OrderItem) error
}

type checkoutService struct {
	logger    *slog.Logger
	txManager trm.Manager
	repo      CheckoutRepo
	shipping  ShippingQuoter
	payments  PaymentAuthorizer
	subs      []Subscriber

	currency       string
	returnURL      string
	cancelURL      string
	paymentTimeout time.Duration
	flatRateCents  int64
}

func NewCheckoutService(
	logger *slog.Logger,
	txManager trm.Manager,
	repo CheckoutRepo,
	shipping ShippingQuoter,
	payments PaymentAuthorizer,
	paymentCfg config.Payment,
	shippingCfg config.Shipping,
	subs ...Subscriber,
) *checkoutService {
	return &checkoutService{
		logger:         logger.With(slog.String("service", "checkout")),
		txManager:      txManager,
		repo:           repo,
		shipping:       shipping,
		payments:       payments,
		subs:           subs,
		currency:       paymentCfg.Currency,
		returnURL:      paymentCfg.ReturnURL,
		cancelURL:      paymentCfg.CancelURL,
		paymentTimeout: paymentCfg.Timeout,
		flatRateCents:  shippingCfg.FlatRateCents,
	}
}

// Checkout prices the cart, authorizes payment and creates the order in
// PENDING. The money snapshot (subtotal, shipping, total) is captured here and
// never recomputed. No order exists until authorization is confirmed.
func (s *checkoutService) Checkout(ctx context.Context, cart entities.Cart) (entities.Order, error) {
	method, err := s.priceShipping(ctx, cart)
	if err != nil {
		checkouts.WithLabelValues("rejected").Inc()
		return entities.Order{}, err
	}

	subtotal := entities.SubtotalOf(cart.Items)
	total := subtotal + method.PriceCents

	orderUID := uuid.NewString()
	number := newOrderNumber(orderUID)

	// The authorization call is the blocking point; it runs under its own
	// timeout and holds no locks.
	authCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	auth, err := s.payments.Authorize(authCtx, payment.AuthorizationRequest{
		AmountCents:    total,
		Currency:       s.currency,
		OrderReference: number,
		ReturnURL:      s.returnURL,
		CancelURL:      s.cancelURL,
	})
	if err != nil {
		checkouts.WithLabelValues("payment_unavailable").Inc()
		return entities.Order{}, fmt.Errorf("%w: %w", entities.ErrPaymentUnavailable, err)
	}

	switch auth.Status {
	case payment.StatusAuthorized:
	case payment.StatusDeclined:
		checkouts.WithLabelValues("declined").Inc()
		return entities.Order{}, entities.ErrPaymentDeclined
	default:
		// Partially authorized but unconfirmed: operator reconciliation, not
		// an automatic retry.
		checkouts.WithLabelValues("unconfirmed").Inc()
		return entities.Order{}, fmt.Errorf("%w: status %q", entities.ErrPaymentUnconfirmed, auth.Status)
	}

	now := time.Now().UTC()
	order := entities.Order{
		OrderUID:         orderUID,
		Number:           number,
		Customer:         cart.Customer,
		Items:            cart.Items,
		Shipping:         method,
		SubtotalCents:    subtotal,
		ShippingCents:    method.PriceCents,
		TotalCents:       total,
		Status:           entities.OrderStatusPending,
		PaymentConfirmed: true,
		AuthorizationID:  auth.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		return s.repo.CreateOrderItems(ctx, order.OrderUID, order.Items)
	})
	if err != nil {
		checkouts.WithLabelValues("error").Inc()
		return entities.Order{}, fmt.Errorf("failed to persist order: %w", err)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_uid", order.OrderUID),
		slog.String("number", order.Number),
		slog.Int64("total_cents", order.TotalCents),
	)
	checkouts.WithLabelValues("created").Inc()

	for _, sub := range s.subs {
		sub.OnTransition(ctx, order, entities.TransitionConfirmed)
	}

	return order, nil
}

// priceShipping resolves the chosen method against live offers, or the
// configured flat rate when the carrier is down. There is no path that
// charges zero shipping silently.
func (s *checkoutService) priceShipping(ctx context.Context, cart entities.Cart) (entities.ShippingMethod, error) {
	quote := s.shipping.Quote(ctx, cart.Customer.Address.ZIP, cart.Customer.Address.Country, entities.WeightOf(cart.Items))

	if quote.Available {
		for _, offer := range quote.Offers {
			if offer.ServiceCode == cart.ShippingMethodCode {
				return entities.ShippingMethod{
					ServiceCode: offer.ServiceCode,
					Name:        offer.Name,
					Type:        offer.Type,
					PriceCents:  offer.PriceCents,
				}, nil
			}
		}
		return entities.ShippingMethod{},
			fmt.Errorf("%w: %q", entities.ErrUnknownShippingMethod, cart.ShippingMethodCode)
	}

	if s.flatRateCents > 0 {
		s.logger.WarnContext(ctx, "carrier unavailable, falling back to flat rate",
			slog.Int64("flat_rate_cents", s.flatRateCents))
		return entities.ShippingMethod{
			ServiceCode: "FLAT",
			Name:        "Standard Shipping",
			Type:        entities.MethodHome,
			PriceCents:  s.flatRateCents,
		}, nil
	}

	return entities.ShippingMethod{}, entities.ErrShippingUnavailable
}

func newOrderNumber(orderUID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(orderUID, "-", ""))[:8]
	return fmt.Sprintf("FS-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
