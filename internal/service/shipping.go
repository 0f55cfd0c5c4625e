package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/avdeev-dev/fulfillment-service/internal/carrier"
	"github.com/avdeev-dev/fulfillment-service/internal/config"
	"github.com/avdeev-dev/fulfillment-service/internal/entities"
)

// CarrierAPI is the external rate API collaborator.
type CarrierAPI interface {
	Configured() bool
	Rates(ctx context.Context, req carrier.RateRequest) ([]carrier.Rate, error)
}

type methodDescriptor struct {
	name        string
	description string
	typ         entities.MethodType
}

// serviceMethods maps carrier service codes to user-facing shipping methods.
// Codes missing from the table fall back to the carrier's raw description so
// new services never silently disappear from checkout.
var serviceMethods = map[string]methodDescriptor{
	"10": {"Parcel Shop Pickup", "Collect at the nearest parcel shop", entities.MethodPickup},
	"11": {"Parcel Locker", "Collect from a 24/7 parcel locker", entities.MethodPickup},
	"20": {"Home Delivery", "Delivered to your door", entities.MethodHome},
	"21": {"Evening Home Delivery", "Delivered to your door between 17:00 and 21:00", entities.MethodHome},
	"30": {"Express Overnight", "Next business day delivery", entities.MethodExpress},
}

type shippingService struct {
	logger        *slog.Logger
	client        CarrierAPI
	originZIP     string
	originCountry string
}

func NewShippingService(logger *slog.Logger, client CarrierAPI, cfg config.Carrier) *shippingService {
	return &shippingService{
		logger:        logger.With(slog.String("service", "shipping")),
		client:        client,
		originZIP:     cfg.OriginZIP,
		originCountry: cfg.OriginCountry,
	}
}

// Quote returns priced offers for the destination, cheapest first. A
// misconfigured or unreachable carrier yields the explicit unavailable result;
// callers decide between a flat-rate fallback and failing the checkout.
func (s *shippingService) Quote(ctx context.Context, destinationZIP, country string, weightGrams int) entities.ShippingQuote {
	if !s.client.Configured() {
		s.logger.WarnContext(ctx, "carrier not configured, returning unavailable quote")
		return entities.ShippingQuote{}
	}

	rates, err := s.client.Rates(ctx, carrier.RateRequest{
		OriginZIP:      s.originZIP,
		DestinationZIP: destinationZIP,
		Country:        country,
		WeightGrams:    weightGrams,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "carrier rate request failed",
			slog.String("destination_zip", destinationZIP),
			slog.Any("error", err),
		)
		return entities.ShippingQuote{}
	}

	offers := make([]entities.ShippingOffer, 0, len(rates))
	for _, rate := range rates {
		offers = append(offers, offerFromRate(rate))
	}

	sort.Slice(offers, func(i, j int) bool {
		return offers[i].PriceCents < offers[j].PriceCents
	})

	return entities.ShippingQuote{Available: true, Offers: offers}
}

func offerFromRate(rate carrier.Rate) entities.ShippingOffer {
	offer := entities.ShippingOffer{
		ServiceCode:     rate.ServiceCode,
		PriceCents:      rate.PriceCents,
		DeliveryDaysMin: rate.DeliveryDaysMin,
		DeliveryDaysMax: rate.DeliveryDaysMax,
	}

	if desc, ok := serviceMethods[rate.ServiceCode]; ok {
		offer.Name = desc.name
		offer.Description = desc.description
		offer.Type = desc.typ
		return offer
	}

	// Unmapped service code: keep the offer with the carrier's own wording.
	offer.Name = rate.Description
	if offer.Name == "" {
		offer.Name = rate.ServiceCode
	}
	offer.Description = rate.Description
	offer.Type = entities.MethodHome
	return offer
}
