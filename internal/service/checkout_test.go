package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avdeev-dev/fulfillment-service/internal/config"
	"github.com/avdeev-dev/fulfillment-service/internal/entities"
	"github.com/avdeev-dev/fulfillment-service/internal/payment"
	"github.com/avdeev-dev/fulfillment-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCart() entities.Cart {
	return entities.Cart{
		Customer: entities.Customer{
			Name:  "Kari Nordmann",
			Email: "kari@example.com",
			Address: entities.Address{
				ZIP:     "5003",
				City:    "Bergen",
				Street:  "Strandgaten 1",
				Country: "NO",
			},
		},
		Items: []entities.OrderItem{
			{ProductID: "p1", Name: "Wool Sweater", Quantity: 2, UnitPriceCents: 129900, UnitWeightGrams: 400},
			{ProductID: "p2", Name: "Beanie", Quantity: 1, UnitPriceCents: 34900, UnitWeightGrams: 100},
		},
		ShippingMethodCode: "20",
	}
}

func paymentConfig() config.Payment {
	return config.Payment{
		Currency:  "NOK",
		ReturnURL: "https://shop.example.com/return",
		CancelURL: "https://shop.example.com/cancel",
		Timeout:   time.Second,
	}
}

func availableQuote() entities.ShippingQuote {
	return entities.ShippingQuote{
		Available: true,
		Offers: []entities.ShippingOffer{
			{ServiceCode: "10", Name: "Parcel Shop Pickup", Type: entities.MethodPickup, PriceCents: 4900},
			{ServiceCode: "20", Name: "Home Delivery", Type: entities.MethodHome, PriceCents: 9900},
		},
	}
}

func TestCheckoutService_Checkout(t *testing.T) {
	t.Run("creates the order with a money snapshot", func(t *testing.T) {
		cart := testCart()
		shipping := new(mockShippingQuoter)
		payments := new(mockPaymentAuthorizer)
		repo := new(mockCheckoutRepo)
		sub := new(mockSubscriber)

		// Weight is the sum of line weights: 2*400 + 1*100.
		shipping.On("Quote", mock.Anything, "5003", "NO", 900).
			Return(availableQuote()).Once()

		payments.On("Authorize", mock.Anything, mock.MatchedBy(func(req payment.AuthorizationRequest) bool {
			return req.AmountCents == 2*129900+34900+9900 && req.Currency == "NOK"
		})).Return(payment.Authorization{ID: "auth-1", Status: payment.StatusAuthorized}, nil).Once()

		repo.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("CreateOrderItems", mock.Anything, mock.Anything, cart.Items).Return(nil).Once()
		sub.On("OnTransition", mock.Anything, mock.Anything, entities.TransitionConfirmed).
			Return().Once()

		svc := service.NewCheckoutService(discardLogger(), passthroughTxManager{}, repo,
			shipping, payments, paymentConfig(), config.Shipping{}, sub)

		order, err := svc.Checkout(context.Background(), cart)

		require.NoError(t, err)
		assert.NotEmpty(t, order.OrderUID)
		assert.NotEmpty(t, order.Number)
		assert.Equal(t, int64(2*129900+34900), order.SubtotalCents)
		assert.Equal(t, int64(9900), order.ShippingCents)
		assert.Equal(t, order.SubtotalCents+order.ShippingCents, order.TotalCents)
		assert.Equal(t, entities.OrderStatusPending, order.Status)
		assert.True(t, order.PaymentConfirmed)
		assert.Equal(t, "auth-1", order.AuthorizationID)
		assert.Equal(t, "20", order.Shipping.ServiceCode)

		repo.AssertExpectations(t)
		sub.AssertExpectations(t)
	})

	t.Run("unknown shipping method", func(t *testing.T) {
		cart := testCart()
		cart.ShippingMethodCode = "99"

		shipping := new(mockShippingQuoter)
		shipping.On("Quote", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(availableQuote()).Once()

		payments := new(mockPaymentAuthorizer)
		repo := new(mockCheckoutRepo)

		svc := service.NewCheckoutService(discardLogger(), passthroughTxManager{}, repo,
			shipping, payments, paymentConfig(), config.Shipping{})

		_, err := svc.Checkout(context.Background(), cart)

		assert.ErrorIs(t, err, entities.ErrUnknownShippingMethod)
		payments.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("declined payment creates no order", func(t *testing.T) {
		shipping := new(mockShippingQuoter)
		shipping.On("Quote", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(availableQuote()).Once()

		payments := new(mockPaymentAuthorizer)
		payments.On("Authorize", mock.Anything, mock.Anything).
			Return(payment.Authorization{Status: payment.StatusDeclined}, nil).Once()

		repo := new(mockCheckoutRepo)

		svc := service.NewCheckoutService(discardLogger(), passthroughTxManager{}, repo,
			shipping, payments, paymentConfig(), config.Shipping{})

		_, err := svc.Checkout(context.Background(), testCart())

		assert.ErrorIs(t, err, entities.ErrPaymentDeclined)
		repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("payment provider outage creates no order", func(t *testing.T) {
		shipping := new(mockShippingQuoter)
		shipping.On("Quote", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(availableQuote()).Once()

		payments := new(mockPaymentAuthorizer)
		payments.On("Authorize", mock.Anything, mock.Anything).
			Return(payment.Authorization{}, errors.New("connection refused")).Once()

		repo := new(mockCheckoutRepo)

		svc := service.NewCheckoutService(discardLogger(), passthroughTxManager{}, repo,
			shipping, payments, paymentConfig(), config.Shipping{})

		_, err := svc.Checkout(context.Background(), testCart())

		assert.ErrorIs(t, err, entities.ErrPaymentUnavailable)
		repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("pending authorization requires reconciliation", func(t *testing.T) {
		shipping := new(mockShippingQuoter)
		shipping.On("Quote", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(availableQuote()).Once()

		payments := new(mockPaymentAuthorizer)
		payments.On("Authorize", mock.Anything, mock.Anything).
			Return(payment.Authorization{ID: "auth-2", Status: payment.StatusPending}, nil).Once()

		repo := new(mockCheckoutRepo)

		svc := service.NewCheckoutService(discardLogger(), passthroughTxManager{}, repo,
			shipping, payments, paymentConfig(), config.Shipping{})

		_, err := svc.Checkout(context.Background(), testCart())

		assert.ErrorIs(t, err, entities.ErrPaymentUnconfirmed)
		repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("carrier outage falls back to the flat rate", func(t *testing.T) {
		shipping := new(mockShippingQuoter)
		shipping.On("Quote", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(entities.ShippingQuote{}).Once()

		payments := new(mockPaymentAuthorizer)
		payments.On("Authorize", mock.Anything, mock.Anything).
			Return(payment.Authorization{ID: "auth-3", Status: payment.StatusAuthorized}, nil).Once()

		repo := new(mockCheckoutRepo)
		repo.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("CreateOrderItems", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		svc := service.NewCheckoutService(discardLogger(), passthroughTxManager{}, repo,
			shipping, payments, paymentConfig(), config.Shipping{FlatRateCents: 9900})

		order, err := svc.Checkout(context.Background(), testCart())

		require.NoError(t, err)
		assert.Equal(t, "FLAT", order.Shipping.ServiceCode)
		assert.Equal(t, int64(9900), order.ShippingCents)
	})

	t.Run("carrier outage without flat rate fails the checkout", func(t *testing.T) {
		shipping := new(mockShippingQuoter)
		shipping.On("Quote", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(entities.ShippingQuote{}).Once()

		payments := new(mockPaymentAuthorizer)
		repo := new(mockCheckoutRepo)

		svc := service.NewCheckoutService(discardLogger(), passthroughTxManager{}, repo,
			shipping, payments, paymentConfig(), config.Shipping{})

		_, err := svc.Checkout(context.Background(), testCart())

		assert.ErrorIs(t, err, entities.ErrShippingUnavailable)
		payments.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
	})

	t.Run("persistence failure surfaces after authorization", func(t *testing.T) {
		shipping := new(mockShippingQuoter)
		shipping.On("Quote", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(availableQuote()).Once()

		payments := new(mockPaymentAuthorizer)
		payments.On("Authorize", mock.Anything, mock.Anything).
			Return(payment.Authorization{ID: "auth-4", Status: payment.StatusAuthorized}, nil).Once()

		repo := new(mockCheckoutRepo)
		repo.On("CreateOrder", mock.Anything, mock.Anything).
			Return(errors.New("db down")).Once()

		sub := new(mockSubscriber)

		svc := service.NewCheckoutService(discardLogger(), passthroughTxManager{}, repo,
			shipping, payments, paymentConfig(), config.Shipping{}, sub)

		_, err := svc.Checkout(context.Background(), testCart())

		assert.Error(t, err)
		sub.AssertNotCalled(t, "OnTransition", mock.Anything, mock.Anything, mock.Anything)
	})
}
