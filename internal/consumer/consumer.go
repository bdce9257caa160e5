package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
)

// StatusEvent is published by the fulfillment side when an order moves on,
// e.g. {"orderId": 12, "status": "shipped"}.
type StatusEvent struct {
	OrderID int64              `json:"orderId"`
	Status  entity.OrderStatus `json:"status"`
}

// MessageReader is the part of *kafka.Reader the consumer needs. Offsets are
// committed explicitly, so an event is only skipped once it was applied or
// deliberately dropped.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error)
}

type Consumer struct {
	reader  MessageReader
	orders  StatusUpdater
	backoff time.Duration
}

func NewConsumer(reader MessageReader, orders StatusUpdater) *Consumer {
	return &Consumer{reader: reader, orders: orders, backoff: time.Second}
}

// Start reads fulfillment events until ctx is cancelled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Fulfillment consumer stopped")
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			if !c.wait(ctx) {
				return
			}
			continue
		}

		// Retry transient failures on the same message; its offset stays
		// uncommitted until it is applied.
		for {
			err := c.processMessage(ctx, msg)
			if err == nil {
				break
			}
			log.Error().Err(err).Msgf("Error processing message at offset %d, retrying", msg.Offset)
			if !c.wait(ctx) {
				return
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msgf("Error committing offset %d", msg.Offset)
		}
	}
}

// wait sleeps for the backoff and reports false when ctx ended first.
func (c *Consumer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.backoff):
		return true
	}
}

// processMessage applies one status event. Malformed events, events for
// unknown orders and events with an unknown status are dropped.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event StatusEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error().Msgf("Error unmarshalling message: %v", err)
		return nil
	}
	if event.OrderID <= 0 {
		log.Warn().Msgf("Dropping status event with invalid order id %d", event.OrderID)
		return nil
	}

	_, err := c.orders.UpdateOrderStatus(ctx, event.OrderID, event.Status)
	switch {
	case err == nil:
		log.Info().Msgf("Order %d is now %s", event.OrderID, event.Status)
		return nil
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrValidation):
		log.Warn().Msgf("Dropping status event for order %d: %v", event.OrderID, err)
		return nil
	default:
		return err
	}
}
