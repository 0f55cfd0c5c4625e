package service_test

import (
	"context"

	"github.com/avdeev-dev/fulfillment-service/internal/carrier"
	"github.com/avdeev-dev/fulfillment-service/internal/entities"
	"github.com/avdeev-dev/fulfillment-service/internal/payment"
	"github.com/avdeev-dev/fulfillment-service/pkg/trm"

	"github.com/stretchr/testify/mock"
)

type mockLifecycleRepo struct {
	mock.Mock
}

func (m *mockLifecycleRepo) GetOrderByID(ctx context.Context, orderUID string) (entities.Order, error) {
	args := m.Called(ctx, orderUID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockLifecycleRepo) UpdateOrderStatus(ctx context.Context, orderUID string, expected, next entities.OrderStatus) error {
	args := m.Called(ctx, orderUID, expected, next)
	return args.Error(0)
}

func (m *mockLifecycleRepo) CreateShipment(ctx context.Context, orderUID string) error {
	args := m.Called(ctx, orderUID)
	return args.Error(0)
}

func (m *mockLifecycleRepo) GetShipment(ctx context.Context, orderUID string) (entities.Shipment, error) {
	args := m.Called(ctx, orderUID)
	return args.Get(0).(entities.Shipment), args.Error(1)
}

func (m *mockLifecycleRepo) UpdateShipment(ctx context.Context, orderUID string, expected, next entities.ShipmentStatus, upd entities.ShipmentUpdate) error {
	args := m.Called(ctx, orderUID, expected, next, upd)
	return args.Error(0)
}

type mockSubscriber struct {
	mock.Mock
}

func (m *mockSubscriber) OnTransition(ctx context.Context, order entities.Order, kind entities.TransitionKind) {
	m.Called(ctx, order, kind)
}

type mockNotificationStore struct {
	mock.Mock
}

func (m *mockNotificationStore) CreateNotification(ctx context.Context, orderUID string, kind entities.TransitionKind) (bool, error) {
	args := m.Called(ctx, orderUID, kind)
	return args.Bool(0), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, templateID, recipient string, data map[string]any) error {
	args := m.Called(ctx, templateID, recipient, data)
	return args.Error(0)
}

type mockCarrierAPI struct {
	mock.Mock
}

func (m *mockCarrierAPI) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockCarrierAPI) Rates(ctx context.Context, req carrier.RateRequest) ([]carrier.Rate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]carrier.Rate), args.Error(1)
}

type mockShippingQuoter struct {
	mock.Mock
}

func (m *mockShippingQuoter) Quote(ctx context.Context, destinationZIP, country string, weightGrams int) entities.ShippingQuote {
	args := m.Called(ctx, destinationZIP, country, weightGrams)
	return args.Get(0).(entities.ShippingQuote)
}

type mockPaymentAuthorizer struct {
	mock.Mock
}

func (m *mockPaymentAuthorizer) Authorize(ctx context.Context, req payment.AuthorizationRequest) (payment.Authorization, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payment.Authorization), args.Error(1)
}

type mockCheckoutRepo struct {
	mock.Mock
}

func (m *mockCheckoutRepo) CreateOrder(ctx context.Context, o entities.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockCheckoutRepo) CreateOrderItems(ctx context.Context, orderUID string, items []entities.OrderItem) error {
	args := m.Called(ctx, orderUID, items)
	return args.Error(0)
}

// passthroughTxManager runs the callback without a database.
type passthroughTxManager struct{}

func (passthroughTxManager) BeginTx(ctx context.Context) (context.Context, trm.Transaction, error) {
	panic("not used in tests")
}

func (passthroughTxManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	return callback(ctx)
}
