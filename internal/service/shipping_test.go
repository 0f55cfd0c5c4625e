package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/avdeev-dev/fulfillment-service/internal/carrier"
	"github.com/avdeev-dev/fulfillment-service/internal/config"
	"github.com/avdeev-dev/fulfillment-service/internal/entities"
	"github.com/avdeev-dev/fulfillment-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func carrierConfig() config.Carrier {
	return config.Carrier{OriginZIP: "0150", OriginCountry: "NO"}
}

func TestShippingService_Quote(t *testing.T) {
	t.Run("offers are sorted cheapest first", func(t *testing.T) {
		client := new(mockCarrierAPI)
		client.On("Configured").Return(true)
		client.On("Rates", mock.Anything, carrier.RateRequest{
			OriginZIP:      "0150",
			DestinationZIP: "5003",
			Country:        "NO",
			WeightGrams:    1200,
		}).Return([]carrier.Rate{
			{ServiceCode: "30", PriceCents: 19900, DeliveryDaysMin: 1, DeliveryDaysMax: 1},
			{ServiceCode: "10", PriceCents: 4900, DeliveryDaysMin: 2, DeliveryDaysMax: 4},
			{ServiceCode: "20", PriceCents: 9900, DeliveryDaysMin: 2, DeliveryDaysMax: 5},
		}, nil)

		svc := service.NewShippingService(discardLogger(), client, carrierConfig())

		quote := svc.Quote(context.Background(), "5003", "NO", 1200)

		require.True(t, quote.Available)
		require.Len(t, quote.Offers, 3)
		assert.Equal(t, "10", quote.Offers[0].ServiceCode)
		assert.Equal(t, "20", quote.Offers[1].ServiceCode)
		assert.Equal(t, "30", quote.Offers[2].ServiceCode)
		assert.Equal(t, "Parcel Shop Pickup", quote.Offers[0].Name)
		assert.Equal(t, entities.MethodPickup, quote.Offers[0].Type)
	})

	t.Run("unmapped service code keeps the carrier wording", func(t *testing.T) {
		client := new(mockCarrierAPI)
		client.On("Configured").Return(true)
		client.On("Rates", mock.Anything, mock.Anything).Return([]carrier.Rate{
			{ServiceCode: "9999", Description: "Drone Delivery", PriceCents: 29900},
		}, nil)

		svc := service.NewShippingService(discardLogger(), client, carrierConfig())

		quote := svc.Quote(context.Background(), "5003", "NO", 100)

		require.True(t, quote.Available)
		require.Len(t, quote.Offers, 1)
		assert.Equal(t, "9999", quote.Offers[0].ServiceCode)
		assert.Equal(t, "Drone Delivery", quote.Offers[0].Name)
		assert.Equal(t, entities.MethodHome, quote.Offers[0].Type)
	})

	t.Run("unmapped code without description falls back to the code", func(t *testing.T) {
		client := new(mockCarrierAPI)
		client.On("Configured").Return(true)
		client.On("Rates", mock.Anything, mock.Anything).Return([]carrier.Rate{
			{ServiceCode: "9999", PriceCents: 29900},
		}, nil)

		svc := service.NewShippingService(discardLogger(), client, carrierConfig())

		quote := svc.Quote(context.Background(), "5003", "NO", 100)

		require.Len(t, quote.Offers, 1)
		assert.Equal(t, "9999", quote.Offers[0].Name)
	})

	t.Run("carrier error yields unavailable", func(t *testing.T) {
		client := new(mockCarrierAPI)
		client.On("Configured").Return(true)
		client.On("Rates", mock.Anything, mock.Anything).
			Return(nil, errors.New("timeout"))

		svc := service.NewShippingService(discardLogger(), client, carrierConfig())

		quote := svc.Quote(context.Background(), "5003", "NO", 100)

		assert.False(t, quote.Available)
		assert.Empty(t, quote.Offers)
	})

	t.Run("unconfigured carrier yields unavailable without a call", func(t *testing.T) {
		client := new(mockCarrierAPI)
		client.On("Configured").Return(false)

		svc := service.NewShippingService(discardLogger(), client, carrierConfig())

		quote := svc.Quote(context.Background(), "5003", "NO", 100)

		assert.False(t, quote.Available)
		client.AssertNotCalled(t, "Rates", mock.Anything, mock.Anything)
	})

	t.Run("empty rate list is still available", func(t *testing.T) {
		client := new(mockCarrierAPI)
		client.On("Configured").Return(true)
		client.On("Rates", mock.Anything, mock.Anything).Return([]carrier.Rate{}, nil)

		svc := service.NewShippingService(discardLogger(), client, carrierConfig())

		quote := svc.Quote(context.Background(), "9999", "NO", 100)

		assert.True(t, quote.Available)
		assert.Empty(t, quote.Offers)
	})
}
