package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/avdeev-dev/fulfillment-service/internal/config"
	"github.com/avdeev-dev/fulfillment-service/internal/entities"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
)

type ShipmentUpdater interface {
	UpdateShipmentStatus(ctx context.Context, orderUID string, next entities.ShipmentStatus, upd entities.ShipmentUpdate) (entities.Order, error)
}

// TrackingEvent is the carrier feed message driving shipment transitions.
type TrackingEvent struct {
	OrderUID       string `json:"order_uid" validate:"required"`
	Status         string `json:"status" validate:"required,oneof=SHIPPED DELIVERED FAILED_DELIVERY"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Reason         string `json:"reason,omitempty"`
	PickupPoint    string `json:"pickup_point,omitempty"`
}

type kafkaHandler struct {
	dlq       *kafka.Writer
	reader    *kafka.Reader
	logger    *slog.Logger
	validate  *validator.Validate
	lifecycle ShipmentUpdater
}

func NewKafkaHandler(logger *slog.Logger, cfg config.Kafka, lifecycle ShipmentUpdater) *kafkaHandler {
	return &kafkaHandler{
		logger: logger.With(slog.String("handler", "kafka")),
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   cfg.Topic,
			MaxWait: cfg.ReaderMaxWait,
		}),
		dlq: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		validate:  validator.New(),
		lifecycle: lifecycle,
	}
}

func (h *kafkaHandler) Consume(ctx context.Context) {
	for {
		m, err := h.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				break
			} else {
				h.logger.Error("failed to fetch message", slog.Any("error", err))
				continue
			}
		}

		if err := h.handleTrackingEvent(ctx, m); err != nil {
			h.logger.Error("failed to handle tracking event", slog.Any("error", err))
			eventsFailed.Inc()

			// Out-of-order or malformed events are parked for the operator,
			// never retried in place.
			if err := h.writeToDLQ(ctx, m); err != nil {
				h.logger.Error("failed to write message to DLQ", slog.Any("error", err))
				continue
			}
			eventsDLQ.Inc()
		}

		if err := h.reader.CommitMessages(ctx, m); err != nil {
			h.logger.Error("failed to commit message", slog.Any("error", err))
			commitErrors.Inc()
		}
	}
}

func (h *kafkaHandler) handleTrackingEvent(ctx context.Context, m kafka.Message) error {
	start := time.Now()
	eventsInProgress.Inc()
	defer func() {
		eventsInProgress.Dec()
		eventProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	var event TrackingEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal tracking event: %w", err)
	}

	if err := h.validate.Struct(event); err != nil {
		return fmt.Errorf("invalid tracking event: %w", err)
	}

	status, err := entities.ParseShipmentStatus(event.Status)
	if err != nil {
		return err
	}

	_, err = h.lifecycle.UpdateShipmentStatus(ctx, event.OrderUID, status, entities.ShipmentUpdate{
		TrackingNumber: event.TrackingNumber,
		FailureReason:  event.Reason,
		PickupPoint:    event.PickupPoint,
	})
	if err != nil {
		return fmt.Errorf("failed to apply tracking event: %w", err)
	}

	eventsProcessed.Inc()
	return nil
}

func (h *kafkaHandler) writeToDLQ(ctx context.Context, m kafka.Message) error {
	m.Topic = fmt.Sprintf("%s-dlq", m.Topic)
	return h.dlq.WriteMessages(ctx, m)
}

func (h *kafkaHandler) Close() error {
	if err := h.reader.Close(); err != nil {
		return err
	}
	return h.dlq.Close()
}
