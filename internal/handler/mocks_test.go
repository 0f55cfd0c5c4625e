package handler_test

import (
	"context"
	"time"

	"github.com/avdeev-dev/fulfillment-service/internal/entities"

	"github.com/stretchr/testify/mock"
)

type mockCheckoutService struct {
	mock.Mock
}

func (m *mockCheckoutService) Checkout(ctx context.Context, cart entities.Cart) (entities.Order, error) {
	args := m.Called(ctx, cart)
	return args.Get(0).(entities.Order), args.Error(1)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) GetOrderByID(ctx context.Context, orderUID string) (entities.Order, error) {
	args := m.Called(ctx, orderUID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, orderUID string, next entities.OrderStatus, override bool) (entities.Order, error) {
	args := m.Called(ctx, orderUID, next, override)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderService) UpdateShipmentStatus(ctx context.Context, orderUID string, next entities.ShipmentStatus, upd entities.ShipmentUpdate) (entities.Order, error) {
	args := m.Called(ctx, orderUID, next, upd)
	return args.Get(0).(entities.Order), args.Error(1)
}

type mockShippingService struct {
	mock.Mock
}

func (m *mockShippingService) Quote(ctx context.Context, destinationZIP, country string, weightGrams int) entities.ShippingQuote {
	args := m.Called(ctx, destinationZIP, country, weightGrams)
	return args.Get(0).(entities.ShippingQuote)
}

type mockRateLimiter struct {
	mock.Mock
}

func (m *mockRateLimiter) Allow(ctx context.Context, action, identifier string) bool {
	args := m.Called(ctx, action, identifier)
	return args.Bool(0)
}

func (m *mockRateLimiter) Inspect(ctx context.Context, action, identifier string) (int64, time.Duration, error) {
	args := m.Called(ctx, action, identifier)
	return args.Get(0).(int64), args.Get(1).(time.Duration), args.Error(2)
}

type staticIntegration struct {
	configured bool
	baseURL    string
	keyLength  int
}

func (s staticIntegration) Configured() bool  { return s.configured }
func (s staticIntegration) BaseURL() string   { return s.baseURL }
func (s staticIntegration) APIKeyLength() int { return s.keyLength }
